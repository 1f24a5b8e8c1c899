package httpadapter

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/threat-level-monitor/internal/domain"
	"github.com/couchcryptid/threat-level-monitor/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadingProvider exposes the scheduler's last known good reading.
type ReadingProvider interface {
	sharedobs.ReadinessChecker
	Snapshot() pipeline.Snapshot
}

// Server exposes health, readiness, metrics and the current threat level.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// /api/v1/threat-level routes.
func NewServer(addr string, readings ReadingProvider, logger *slog.Logger) *Server {
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
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(readings))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/v1/threat-level", handleThreatLevel(readings))

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

type threatLevelResponse struct {
	Level     domain.Level     `json:"level"`
	Ordinal   int              `json:"ordinal"`
	Source    string           `json:"source"`
	Match     domain.MatchKind `json:"match"`
	FetchedAt time.Time        `json:"fetched_at"`
	Stale     bool             `json:"stale"`
	LastError string           `json:"last_error,omitempty"`
	Sensors   []domain.Sensor  `json:"sensors"`
}

func handleThreatLevel(readings ReadingProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		snap := readings.Snapshot()
		if !snap.HasReading {
			body := map[string]string{"status": "no reading"}
			if snap.LastError != "" {
				body["error"] = snap.LastError
			}
			writeJSON(w, http.StatusServiceUnavailable, body)
			return
		}

		r := snap.Reading
		writeJSON(w, http.StatusOK, threatLevelResponse{
			Level:     r.Level,
			Ordinal:   r.Ordinal,
			Source:    r.Source,
			Match:     r.Match,
			FetchedAt: r.FetchedAt,
			Stale:     snap.Stale(),
			LastError: snap.LastError,
			Sensors:   domain.Sensors(r),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
