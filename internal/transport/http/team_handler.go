package http

import (
	"net/http"

	"coding-relay-console/internal/domain"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) handleListTeams(w http.ResponseWriter, r *http.Request) {
	var (
		teams []domain.Team
		err   error
	)
	if r.URL.Query().Get("refresh") == "true" {
		teams, err = h.roster.Refresh(r.Context())
	} else {
		teams, err = h.roster.Teams(r.Context())
	}
	if err != nil {
		h.respondError(w, r, &domain.UpdateFailedError{Op: "load teams", Err: err})
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]any{"teams": teams})
}

func (h *Handler) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	var req domain.NewTeam
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	team, err := h.teams.CreateTeam(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, team)
}

func (h *Handler) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	var req domain.NewTeam
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	teamID := chi.URLParam(r, "teamID")
	if err := h.teams.UpdateTeam(r.Context(), teamID, req); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := h.teams.DeleteTeam(r.Context(), chi.URLParam(r, "teamID")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	lb, err := h.roster.Leaderboard(r.Context())
	if err != nil {
		h.respondError(w, r, &domain.UpdateFailedError{Op: "load leaderboard", Err: err})
		return
	}
	h.respondJSON(w, r, http.StatusOK, lb)
}
