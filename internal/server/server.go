// Package server provides the HTTP and WebSocket API for case projections.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/jansen-zhang20/covid-dashy-personal/core"
	"github.com/jansen-zhang20/covid-dashy-personal/internal/contract"
	"github.com/jansen-zhang20/covid-dashy-personal/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Dataset metrics.
var (
	datasetRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "casetrack_dataset_refresh_total",
			Help: "Dataset refresh attempts by result.",
		},
		[]string{"result"},
	)
	datasetRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "casetrack_dataset_records",
		Help: "Number of raw records in the served dataset.",
	})
	pipelineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "casetrack_pipeline_duration_seconds",
			Help:    "Time spent evaluating the projection pipeline.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

func init() {
	prometheus.MustRegister(datasetRefreshTotal, datasetRecords, pipelineDuration)
}

// refreshTimeout bounds a single scheduled reload.
const refreshTimeout = 2 * time.Minute

// Dataset is an immutable snapshot of the upstream table.
type Dataset struct {
	Records   []schema.RawRecord
	Locations []schema.LocationSummary
	LoadedAt  time.Time
}

// Server serves projections over the loaded dataset.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *zap.Logger
	cfg        *contract.Config
	src        contract.RecordSource

	mu   sync.RWMutex
	data *Dataset

	scheduler *gocron.Scheduler
}

// New creates a Server with middleware and routes. The dataset is loaded lazily
// on first use, or eagerly by Start.
func New(cfg *contract.Config, src contract.RecordSource, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	mux := http.NewServeMux()
	s := &Server{
		mux:    mux,
		logger: logger,
		cfg:    cfg.Clone(),
		src:    src,
	}
	s.registerRoutes()

	opsPaths := []string{"/healthz", "/readyz", "/metrics"}
	handler := Chain(mux,
		RecoveryMiddleware(logger),
		RequestIDMiddleware,
		LoggingMiddleware(logger, opsPaths),
		SecurityHeadersMiddleware,
		RateLimitMiddleware(cfg.RateLimit, cfg.RateBurst, opsPaths),
	)

	addr := cfg.Addr
	if addr == "" {
		addr = contract.DefaultAddr
	}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// registerRoutes sets up all routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("GET /readyz", s.handleReadyz)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	s.mux.HandleFunc("GET /api/v1/locations", s.handleLocations)
	s.mux.HandleFunc("GET /api/v1/scenarios", s.handleScenarios)
	s.mux.HandleFunc("GET /api/v1/records", s.handleRecords)
	s.mux.HandleFunc("GET /api/v1/projection", s.handleProjection)
	s.mux.HandleFunc("GET /api/v1/ws", s.handleWS)
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Refresh fetches the upstream table and swaps it in as the served snapshot.
// The previous snapshot is kept when the fetch fails.
func (s *Server) Refresh(ctx context.Context) error {
	start := time.Now()
	records, err := s.src.Fetch(ctx)
	if err != nil {
		datasetRefreshTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("refresh dataset: %w", err)
	}

	data := &Dataset{
		Records:   records,
		Locations: core.Locations(records),
		LoadedAt:  time.Now(),
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()

	datasetRefreshTotal.WithLabelValues("ok").Inc()
	datasetRecords.Set(float64(len(records)))
	s.logger.Info("dataset refreshed",
		zap.Int("records", len(records)),
		zap.Int("locations", len(data.Locations)),
		zap.Duration("took", time.Since(start)))
	return nil
}

// snapshot returns the current dataset, or nil before the first load.
func (s *Server) snapshot() *Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// dataset returns the current snapshot, loading it if nothing has been loaded yet.
func (s *Server) dataset(ctx context.Context) (*Dataset, error) {
	if data := s.snapshot(); data != nil {
		return data, nil
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s.snapshot(), nil
}

// startScheduler registers the periodic refresh job. A zero interval disables it.
func (s *Server) startScheduler() error {
	if s.cfg.Refresh <= 0 {
		return nil
	}
	s.scheduler = gocron.NewScheduler(time.UTC)
	_, err := s.scheduler.Every(s.cfg.Refresh).WaitForSchedule().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if err := s.Refresh(ctx); err != nil {
			s.logger.Warn("scheduled refresh failed, serving previous dataset", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule dataset refresh: %w", err)
	}
	s.scheduler.StartAsync()
	s.logger.Info("dataset refresh scheduled", zap.Duration("interval", s.cfg.Refresh))
	return nil
}

// Start loads the dataset, schedules refreshes and begins serving HTTP requests.
// A failed initial load is logged and retried on the next request.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("initial dataset load failed", zap.Error(err))
	}
	if err := s.startScheduler(); err != nil {
		return err
	}

	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown stops the refresh job and gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}

// handleHealthz is a liveness probe.
func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleReadyz returns 200 once a dataset has been loaded.
func (s *Server) handleReadyz(w http.ResponseWriter, _ *http.Request) {
	data := s.snapshot()
	if data == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "dataset not loaded",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ready",
		"records":   len(data.Records),
		"loaded_at": data.LoadedAt.UTC().Format(time.RFC3339),
	})
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
