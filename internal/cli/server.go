package cli

import (
	"context"
	"net/http"
	"time"

	transport "classbattle-client/internal/transport/http"
	"go.uber.org/zap"
)

// startStatus serves the live screens on addr. An empty addr disables the
// server; the returned stop function is always safe to call.
func startStatus(addr string, reg *transport.Registry, logger *zap.Logger) func() {
	if addr == "" {
		return func() {}
	}
	server := &http.Server{
		Addr:        addr,
		Handler:     transport.NewRouter(reg, logger),
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("status server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("status server failed", zap.Error(err))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("status server shutdown", zap.Error(err))
		}
	}
}
