package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/config"
	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/models"
	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/query"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// JobService is the business layer behind the HTTP handlers.
type JobService interface {
	List(ctx context.Context, filter query.Filter) ([]*models.JobPosting, error)
	Get(ctx context.Context, id int64) (*models.JobPosting, error)
	Create(ctx context.Context, req *models.CreateRequest) (*models.JobPosting, error)
	Update(ctx context.Context, id int64, req *models.UpdateRequest) (*models.JobPosting, error)
	Delete(ctx context.Context, id int64) error
}

type Server struct {
	cfg    *config.Config
	router *mux.Router
	jobs   JobService
	logger *zap.Logger
	now    func() time.Time
}

// routePrefixes serves every route both at the root and under /api.
var routePrefixes = []string{"", "/api"}

func NewServer(cfg *config.Config, jobs JobService, logger *zap.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		router: mux.NewRouter(),
		jobs:   jobs,
		logger: logger,
		now:    time.Now,
	}

	s.RegisterRoute("/", s.root, []string{http.MethodGet})
	for _, prefix := range routePrefixes {
		s.RegisterRoute(prefix+"/health", s.health, []string{http.MethodGet})
		s.RegisterRoute(prefix+"/jobs", s.listJobs, []string{http.MethodGet})
		s.RegisterRoute(prefix+"/jobs", s.createJob, []string{http.MethodPost})
		s.RegisterRoute(prefix+"/jobs/{id:[0-9]+}", s.getJob, []string{http.MethodGet})
		s.RegisterRoute(prefix+"/jobs/{id:[0-9]+}", s.updateJob, []string{http.MethodPut})
		s.RegisterRoute(prefix+"/jobs/{id:[0-9]+}", s.deleteJob, []string{http.MethodDelete})
	}
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.JSON(w, http.StatusNotFound, errorBody{Error: "resource not found"})
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.JSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})

	return s
}

func (s *Server) RegisterRoute(path string, handler func(w http.ResponseWriter, r *http.Request), methods []string) {
	s.router.HandleFunc(path, handler).Methods(methods...)
}

// Handler returns the router wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	return c.Handler(
		LoggingMiddleware(s.logger,
			RecoverMiddleware(s.logger,
				TimeoutMiddleware(s.cfg.RequestTimeout, s.router),
			),
		),
	)
}

func (s *Server) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.Warn("failed to encode response", zap.Error(err))
		}
	}
}
