package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type fakeScreen struct {
	mu      sync.Mutex
	state   map[string]any
	watches []chan any
}

func (f *fakeScreen) Current() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeScreen) Watch() (<-chan any, func()) {
	ch := make(chan any, 4)
	f.mu.Lock()
	ch <- f.state
	f.watches = append(f.watches, ch)
	f.mu.Unlock()
	return ch, func() {}
}

func (f *fakeScreen) push(state map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = state
	for _, ch := range f.watches {
		ch <- state
	}
}

func TestRouterServesScreens(t *testing.T) {
	reg := NewRegistry()
	reg.Register("battle", &fakeScreen{state: map[string]any{"phase": "QUESTION"}})
	server := httptest.NewServer(NewRouter(reg, nil))
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: status=%v err=%v", resp, err)
	}
	resp.Body.Close()

	resp, err = http.Get(server.URL + "/screens/battle")
	if err != nil {
		t.Fatalf("get screen: %v", err)
	}
	var body map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if body["phase"] != "QUESTION" {
		t.Fatalf("unexpected screen body %v", body)
	}

	resp, err = http.Get(server.URL + "/screens/nope")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	reg.Unregister("battle")
	if names := reg.Names(); len(names) != 0 {
		t.Fatalf("expected empty registry, got %v", names)
	}
}

func TestWatchStreamsStates(t *testing.T) {
	reg := NewRegistry()
	screen := &fakeScreen{state: map[string]any{"phase": "LOBBY"}}
	reg.Register("control", screen)
	server := httptest.NewServer(NewRouter(reg, nil))
	defer server.Close()

	u := "ws" + strings.TrimPrefix(server.URL, "http") + "/screens/control/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if phase := readState(t, conn); phase != "LOBBY" {
		t.Fatalf("expected initial LOBBY, got %s", phase)
	}
	screen.push(map[string]any{"phase": "QUESTION"})
	if phase := readState(t, conn); phase != "QUESTION" {
		t.Fatalf("expected QUESTION, got %s", phase)
	}
}

func readState(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "state" {
		t.Fatalf("expected state message, got %s", msg.Type)
	}
	phase, _ := msg.Payload["phase"].(string)
	return phase
}
