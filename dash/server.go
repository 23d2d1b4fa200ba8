// Package dash serves the healing history and the latest visual report
// as read-only JSON. It feeds external dashboards; no rendering happens
// here.
package dash

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/selmend/report"
	"github.com/hazyhaar/selmend/visual"
)

// Server is the dashboard feed.
type Server struct {
	store            *report.Store
	visualReportPath string
	logger           *slog.Logger
	httpServer       *http.Server
}

// New creates a Server over the healing history store and the visual
// report file. Either may be absent; the corresponding endpoints then
// answer 404.
func New(store *report.Store, visualReportPath string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: store, visualReportPath: visualReportPath, logger: logger}
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/api/heals", s.handleHeals)
	r.Get("/api/heals/stats", s.handleStats)
	r.Get("/api/visual", s.handleVisual)
	return r
}

// ListenAndServe runs the feed until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.Router()}

	errCh := make(chan error, 1)
	go func() { errCh <- s.httpServer.ListenAndServe() }()
	s.logger.Info("dash: listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHeals(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.NotFound(w, r)
		return
	}
	limit := 100
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}
	rows, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("dash: recent heals", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []report.HealRow{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.NotFound(w, r)
		return
	}
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("dash: stats", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleVisual(w http.ResponseWriter, r *http.Request) {
	if s.visualReportPath == "" {
		http.NotFound(w, r)
		return
	}
	rep, err := visual.LoadReport(s.visualReportPath)
	if err != nil {
		if os.IsNotExist(errors.Unwrap(err)) {
			http.NotFound(w, r)
			return
		}
		s.logger.Error("dash: visual report", "error", err)
		http.Error(w, "report unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
