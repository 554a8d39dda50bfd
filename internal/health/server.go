package health

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server is a minimal keep-alive HTTP endpoint. Hosting platforms that put
// web services to sleep ping it to keep the bot process alive.
type Server struct {
	addr   string
	logger *zap.Logger
}

func New(addr string, logger *zap.Logger) *Server {
	return &Server{
		addr:   addr,
		logger: logger,
	}
}

// Start serves until the context is cancelled.
func (s *Server) Start(ctx context.Context) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("health server shutdown", zap.Error(err))
		}
	}()

	s.logger.Info("health server started", zap.String("addr", s.addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("health server failed", zap.Error(err))
	}
}
