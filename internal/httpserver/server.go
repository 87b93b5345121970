// Package httpserver поднимает служебный HTTP-сервер: /metrics для Prometheus
// и /healthz для проверки живости контейнера.
package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// Pinger проверяет доступность базы. *pgxpool.Pool подходит.
type Pinger interface {
	Ping(ctx context.Context) error
}

const (
	pingTimeout     = 2 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Server — служебный HTTP-сервер.
type Server struct {
	srv *http.Server
}

// New создаёт сервер на addr.
func New(addr string, metrics http.Handler, db Pinger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           Routes(metrics, db),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Routes собирает роутер. Вынесен отдельно для тестов.
func Routes(metrics http.Handler, db Pinger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", metrics)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			log.WithError(err).Warn("healthz: база недоступна")
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}

// Start слушает порт до отмены ctx, затем плавно останавливается.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.srv.Addr).Info("HTTP-сервер метрик запущен")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("HTTP-сервер метрик остановлен")
	return nil
}
