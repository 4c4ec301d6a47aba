package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"coding-relay-console/internal/app"
	"coding-relay-console/internal/domain"
	"github.com/go-chi/chi/v5/middleware"
)

type APIError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Handler serves the organizer console API.
type Handler struct {
	scores    *app.ScoreService
	teams     *app.TeamService
	questions *app.QuestionService
	roster    *app.Roster
	ws        *WSHandler
	logger    *slog.Logger
}

func NewHandler(scores *app.ScoreService, teams *app.TeamService, questions *app.QuestionService, roster *app.Roster, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		scores:    scores,
		teams:     teams,
		questions: questions,
		roster:    roster,
		ws:        NewWSHandler(roster, logger),
		logger:    logger,
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write json response", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, apiErr := statusFromError(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "http server error", "error", err)
	}
	h.respondJSON(w, r, status, ErrorResponse{Error: apiErr})
}

func statusFromError(err error) (int, APIError) {
	var (
		validation *domain.ValidationError
		conflict   *domain.NameConflictError
		failed     *domain.UpdateFailedError
	)
	switch {
	case errors.Is(err, domain.ErrOperationInProgress):
		return http.StatusConflict, APIError{Code: "OPERATION_IN_PROGRESS", Field: "team_id", Message: "operation in progress"}
	case errors.Is(err, domain.ErrConfirmationNotFound):
		return http.StatusNotFound, APIError{Code: "CONFIRMATION_NOT_FOUND", Message: err.Error()}
	case errors.As(err, &validation):
		return http.StatusBadRequest, APIError{Code: "VALIDATION_ERROR", Field: validation.Field, Message: validation.Message}
	case errors.Is(err, domain.ErrTeamNotFound):
		return http.StatusNotFound, APIError{Code: "TEAM_NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrQuestionNotFound):
		return http.StatusNotFound, APIError{Code: "QUESTION_NOT_FOUND", Message: err.Error()}
	case errors.As(err, &conflict):
		return http.StatusConflict, APIError{Code: "TEAM_EXISTS", Field: "team_name", Message: err.Error()}
	case errors.As(err, &failed):
		return http.StatusBadGateway, APIError{Code: "UPDATE_FAILED", Message: "failed to update data"}
	}
	return http.StatusInternalServerError, APIError{Code: "INTERNAL_ERROR", Message: "unknown error"}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return domain.Invalid("", "invalid request body")
	}
	return nil
}

func NewSlogLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			t1 := time.Now()

			next.ServeHTTP(ww, r)

			logger.InfoContext(r.Context(), "request served",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(t1).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}
		return http.HandlerFunc(fn)
	}
}
