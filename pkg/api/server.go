// Package api exposes spotlight search over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/harborchat/spotlight/pkg/httputil"
	"github.com/harborchat/spotlight/pkg/observability"
	"github.com/harborchat/spotlight/pkg/spotlight"
	"github.com/harborchat/spotlight/pkg/store"
)

// Searcher is the search core as the handlers see it.
type Searcher interface {
	Spotlight(ctx context.Context, req spotlight.Request) (*spotlight.Result, error)
}

// Server routes spotlight requests to the search core.
type Server struct {
	searcher Searcher
	tokens   store.TokenStore
	metrics  *observability.Metrics
	logger   *logrus.Logger
	router   *mux.Router
}

// NewServer creates an API server. A nil logger gets a default one.
func NewServer(searcher Searcher, tokens store.TokenStore, metrics *observability.Metrics, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}

	s := &Server{
		searcher: searcher,
		tokens:   tokens,
		metrics:  metrics,
		logger:   logger,
		router:   mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	s.router.Use(requestIDMiddleware)
	s.router.Use(recoveryMiddleware(s.logger))
	s.router.Use(loggingMiddleware(s.logger))
	s.router.Use(authMiddleware(s.tokens))

	spotlightHandler := http.Handler(http.HandlerFunc(s.handleSpotlight))
	if s.metrics != nil {
		spotlightHandler = s.metrics.HTTPMiddleware("/api/v1/spotlight", spotlightHandler)
	}
	spotlightHandler = otelhttp.NewHandler(spotlightHandler, "spotlight.search")
	s.router.Handle("/api/v1/spotlight", spotlightHandler).Methods(http.MethodGet, http.MethodPost)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteSuccess(w, map[string]string{"status": "ok"})
}
