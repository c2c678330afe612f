package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WatchHandler streams a screen's state changes over a websocket.
type WatchHandler struct {
	reg      *Registry
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWatchHandler(reg *Registry, logger *zap.Logger) *WatchHandler {
	return &WatchHandler{
		reg:    reg,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request and sends a "state" message per change until
// the viewer disconnects or the session ends.
func (h *WatchHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	screen, ok := h.reg.Get(name)
	if !ok {
		http.Error(w, "screen not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	updates, cancel := screen.Watch()
	defer cancel()

	// The viewer never sends anything useful; reading only detects the close.
	viewerGone := make(chan struct{})
	go func() {
		defer close(viewerGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case st, ok := <-updates:
			if !ok {
				_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "closed", Payload: errorPayload{Message: "session ended"}})
				return
			}
			if err := conn.WriteJSON(outboundMessage[any]{Type: "state", Payload: st}); err != nil {
				h.logger.Debug("ws write error", zap.String("screen", name), zap.Error(err))
				return
			}
		case <-viewerGone:
			return
		}
	}
}
