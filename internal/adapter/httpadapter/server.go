package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/radar-rain-labeler/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReportSource exposes the most recently completed report.
type ReportSource interface {
	Latest() (domain.Report, bool)
}

// Server exposes health, readiness, metrics and report summary endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// /report routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, reports ReportSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /report", reportHandler(reports))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type reportSummary struct {
	RunID       string        `json:"run_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Files       int           `json:"files"`
	Rainy       int           `json:"rainy"`
	Dry         int           `json:"dry"`
	Unknown     int           `json:"unknown"`
	Failures    []fileFailure `json:"failures"`
}

type fileFailure struct {
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

func reportHandler(reports ReportSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		r, ok := reports.Latest()
		if !ok {
			sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "no completed report"})
			return
		}

		rainy, dry, unknown := r.Counts()
		summary := reportSummary{
			RunID:       r.RunID,
			GeneratedAt: r.GeneratedAt,
			Files:       len(r.Labels),
			Rainy:       rainy,
			Dry:         dry,
			Unknown:     unknown,
			Failures:    []fileFailure{},
		}
		for _, l := range r.Labels {
			if l.Err != nil {
				summary.Failures = append(summary.Failures, fileFailure{Filename: l.Filename, Error: l.Err.Error()})
			}
		}
		sharedobs.WriteJSON(w, http.StatusOK, summary)
	}
}

// Readiness reports ready only when every checker does.
type Readiness []sharedobs.ReadinessChecker

// CheckReadiness runs every checker and joins their failures.
func (rs Readiness) CheckReadiness(ctx context.Context) error {
	var errs []error
	for _, c := range rs {
		if err := c.CheckReadiness(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
