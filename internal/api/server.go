// Package api exposes prediction, backtest and league metric endpoints over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/rugby-predictor/internal/backtest"
	"github.com/yourusername/rugby-predictor/internal/config"
	"github.com/yourusername/rugby-predictor/internal/docstore"
	"github.com/yourusername/rugby-predictor/internal/health"
	"github.com/yourusername/rugby-predictor/internal/metrics"
	"github.com/yourusername/rugby-predictor/internal/models"
	"github.com/yourusername/rugby-predictor/internal/predictor"
)

// Predictor scores a single fixture
type Predictor interface {
	Predict(ctx context.Context, req predictor.Request) (*models.Prediction, error)
}

// Backtester runs a walk-forward backtest
type Backtester interface {
	Backtest(ctx context.Context, req backtest.Request) (*models.BacktestResult, error)
}

// Dependencies are the services behind the endpoints
type Dependencies struct {
	Predictor  Predictor
	Backtester Backtester
	Documents  docstore.Store
	Health     *health.Checker
	Logger     *logrus.Logger
}

// Server serves the HTTP API
type Server struct {
	cfg        *config.Config
	deps       Dependencies
	validate   *validator.Validate
	logger     *logrus.Entry
	router     *mux.Router
	httpServer *http.Server
}

// NewServer creates the server and its routes
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}
	if deps.Health == nil {
		deps.Health = health.NewChecker(health.Config{ServiceName: cfg.App.Name, Logger: deps.Logger})
	}

	s := &Server{
		cfg:      cfg,
		deps:     deps,
		validate: validator.New(),
		logger:   deps.Logger.WithField("component", "api"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.loggingMiddleware)

	router.HandleFunc("/health", s.deps.Health.HandleHealth).Methods(http.MethodGet)
	router.HandleFunc("/live", s.deps.Health.HandleLive).Methods(http.MethodGet)
	router.HandleFunc("/ready", s.deps.Health.HandleReady).Methods(http.MethodGet)
	if s.cfg.Metrics.Enabled {
		path := s.cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		router.Handle(path, metrics.Handler()).Methods(http.MethodGet)
	}

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/predict", s.handlePredict).Methods(http.MethodPost)
	api.HandleFunc("/backtest/{league_id:[0-9]+}", s.handleBacktest).Methods(http.MethodGet)
	api.HandleFunc("/leagues", s.handleListLeagueMetrics).Methods(http.MethodGet)
	api.HandleFunc("/leagues/{league_id:[0-9]+}/metrics", s.handleLeagueMetrics).Methods(http.MethodGet)

	return router
}

// Handler returns the root handler with CORS applied
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(s.router)
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.WithField("port", s.cfg.Server.Port).Info("API server starting")
	s.deps.Health.SetReady(true)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.deps.Health.SetReady(false)
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("API server shutting down")
	return s.httpServer.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("HTTP request")
	})
}
