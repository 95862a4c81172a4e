package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/fahadnasir13/actuaryhub-backend/common/errors"
	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/models"
	"github.com/fahadnasir13/actuaryhub-backend/services/jobs-api/internal/query"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type messageBody struct {
	Message string `json:"message"`
}

type healthBody struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type rootBody struct {
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Endpoints map[string]string `json:"endpoints"`
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	s.JSON(w, http.StatusOK, rootBody{
		Message: "ActuaryHub API v" + s.cfg.Version,
		Status:  "running",
		Endpoints: map[string]string{
			"jobs":   "/api/jobs",
			"health": "/api/health",
		},
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.JSON(w, http.StatusOK, healthBody{
		Status:      "healthy",
		Timestamp:   s.now().UTC().Format(time.RFC3339),
		Version:     s.cfg.Version,
		Environment: s.cfg.Env,
	})
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := query.Filter{
		JobType:  q.Get("job_type"),
		Location: q.Get("location"),
		Keyword:  q.Get("keyword"),
		Sort:     query.ParseSort(q.Get("sort")),
	}

	postings, err := s.jobs.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.JSON(w, http.StatusOK, postings)
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.jobs.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.JSON(w, http.StatusOK, p)
}

func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.jobs.Create(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.JSON(w, http.StatusCreated, p)
}

func (s *Server) updateJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var req models.UpdateRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.jobs.Update(r.Context(), id, &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.JSON(w, http.StatusOK, p)
}

func (s *Server) deleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.jobs.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.JSON(w, http.StatusOK, messageBody{Message: "Job deleted successfully"})
}

// pathID reads {id}. The route only admits digits, so a parse failure is an overflow
// and no posting can have that id.
func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.NotFound(fmt.Sprintf("job posting %s not found", raw), err)
	}
	return id, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.Validation("body", "request body must be a JSON object", err)
	}
	return nil
}

func statusFor(err error) int {
	switch errors.TypeOf(err) {
	case errors.ErrTypeValidation:
		return http.StatusBadRequest
	case errors.ErrTypeNotFound:
		return http.StatusNotFound
	case errors.ErrTypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: "internal server error"}

	if de, ok := errors.As(err); ok && status < http.StatusInternalServerError {
		body.Error = de.Message
		body.Field = de.Field
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("kind", string(errors.TypeOf(err))),
			zap.Error(err))
		if status == http.StatusServiceUnavailable {
			body.Error = "service unavailable"
		}
	}

	s.JSON(w, status, body)
}
