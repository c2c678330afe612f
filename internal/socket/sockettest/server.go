package sockettest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// Server is a minimal Engine.IO v4 / Socket.IO v5 websocket server.
type Server struct {
	*httptest.Server

	upgrader websocket.Upgrader
	received chan Emitted

	mu       sync.Mutex
	conns    map[*websocket.Conn]*sync.Mutex
	accepted int
	pongs    int
	// Reject makes the namespace handshake fail with this message.
	Reject string
}

func NewServer() *Server {
	s := &Server{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		received: make(chan Emitted, 64),
		conns:    make(map[*websocket.Conn]*sync.Mutex),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/socket.io/", s.serve)
	s.Server = httptest.NewServer(mux)
	return s
}

// Received yields client events in arrival order.
func (s *Server) Received() <-chan Emitted { return s.received }

// Accepted counts completed namespace handshakes.
func (s *Server) Accepted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accepted
}

// Pongs counts pong packets received from clients.
func (s *Server) Pongs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pongs
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("EIO") != "4" || r.URL.Query().Get("transport") != "websocket" {
		http.Error(w, "bad transport", http.StatusBadRequest)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	open := `0{"sid":"eio-1","upgrades":[],"pingInterval":25000,"pingTimeout":20000,"maxPayload":1000000}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(open)); err != nil {
		return
	}
	_, frame, err := conn.ReadMessage()
	if err != nil || !strings.HasPrefix(string(frame), "40") {
		return
	}
	if s.Reject != "" {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(fmt.Sprintf(`44{"message":%q}`, s.Reject)))
		return
	}
	wmu := &sync.Mutex{}
	s.mu.Lock()
	s.conns[conn] = wmu
	s.accepted++
	wmu.Lock()
	s.mu.Unlock()
	err = conn.WriteMessage(websocket.TextMessage, []byte(`40{"sid":"sio-1"}`))
	wmu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()
	if err != nil {
		return
	}

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return
		}
		text := string(frame)
		if text == "3" {
			s.mu.Lock()
			s.pongs++
			s.mu.Unlock()
			continue
		}
		if !strings.HasPrefix(text, "42") {
			continue
		}
		var args []json.RawMessage
		if err := json.Unmarshal(frame[2:], &args); err != nil || len(args) == 0 {
			continue
		}
		var name string
		_ = json.Unmarshal(args[0], &name)
		ev := Emitted{Event: name}
		if len(args) > 1 {
			ev.Payload = args[1]
		}
		s.received <- ev
	}
}

// Broadcast sends an event to every connected client.
func (s *Server) Broadcast(event string, payload any) error {
	raw, err := json.Marshal([]any{event, payload})
	if err != nil {
		return err
	}
	return s.writeAll(append([]byte("42"), raw...))
}

// Ping sends an Engine.IO ping; clients must answer with a pong.
func (s *Server) Ping() error {
	return s.writeAll([]byte("2"))
}

// Kick sends a Socket.IO disconnect to every client, the way a server ends a
// session on purpose.
func (s *Server) Kick() error {
	return s.writeAll([]byte("41"))
}

// DropAll closes every connection without a close packet.
func (s *Server) DropAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}

func (s *Server) writeAll(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn, wmu := range s.conns {
		wmu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, frame)
		wmu.Unlock()
		if err != nil {
			return err
		}
	}
	return nil
}
