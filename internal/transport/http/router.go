package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter exposes the running sessions for debugging and for companion
// displays (a projector showing the controller screen, for example).
func NewRouter(reg *Registry, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	watch := NewWatchHandler(reg, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/screens", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"screens": reg.Names()})
	})
	r.Get("/screens/{name}", func(w http.ResponseWriter, r *http.Request) {
		screen, ok := reg.Get(chi.URLParam(r, "name"))
		if !ok {
			writeJSON(w, http.StatusNotFound, errorPayload{Message: "screen not found"})
			return
		}
		writeJSON(w, http.StatusOK, screen.Current())
	})
	r.Get("/screens/{name}/ws", watch.ServeWS)
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
