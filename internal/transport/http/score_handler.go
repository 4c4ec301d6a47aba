package http

import (
	"net/http"
	"strconv"

	"coding-relay-console/internal/domain"
	"github.com/go-chi/chi/v5"
)

type addPointsRequest struct {
	TeamID          string `json:"team_id"`
	Difficulty      string `json:"difficulty"`
	TestCasesPassed int    `json:"test_cases_passed"`
	HiddenViewed    string `json:"hidden_test_cases_viewed"`
}

type overwriteRequest struct {
	TeamID        string `json:"team_id"`
	TotalPoints   *int   `json:"total_points"`
	TimeRemaining *int   `json:"time_remaining"`
}

func (h *Handler) handleAddPoints(w http.ResponseWriter, r *http.Request) {
	var req addPointsRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	sub := domain.ScoreSubmission{
		Difficulty:      domain.ParseDifficulty(req.Difficulty),
		TestCasesPassed: req.TestCasesPassed,
	}
	// the yes/no answer is checked after the fields AddPoints validates
	inRange := req.TestCasesPassed >= domain.MinTestCasesPassed && req.TestCasesPassed <= domain.MaxTestCasesPassed
	if req.TeamID != "" && sub.Difficulty != "" && inRange {
		hidden, err := domain.ParseYesNo("hidden_test_cases_viewed", req.HiddenViewed)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		sub.HiddenViewed = hidden
	}

	result, err := h.scores.AddPoints(r.Context(), req.TeamID, sub)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, result)
}

func (h *Handler) handleRequestOverwrite(w http.ResponseWriter, r *http.Request) {
	var req overwriteRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.TeamID != "" && req.TotalPoints == nil {
		h.respondError(w, r, domain.Invalid("total_points", "total points is required"))
		return
	}
	o := domain.ScoreOverwrite{TeamID: req.TeamID, TimeRemaining: req.TimeRemaining}
	if req.TotalPoints != nil {
		o.TotalPoints = *req.TotalPoints
	}
	c, err := h.scores.RequestOverwrite(r.Context(), o)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusAccepted, c)
}

func (h *Handler) handleConfirmOverwrite(w http.ResponseWriter, r *http.Request) {
	result, err := h.scores.ConfirmOverwrite(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, result)
}

func (h *Handler) handleCancelOverwrite(w http.ResponseWriter, r *http.Request) {
	if err := h.scores.CancelOverwrite(r.Context(), chi.URLParam(r, "token")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.respondError(w, r, domain.Invalid("limit", "limit must be a positive number"))
			return
		}
		limit = n
	}
	changes, err := h.scores.History(r.Context(), r.URL.Query().Get("team_id"), limit)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]any{"changes": changes})
}
