package http

import (
	"net/http"
	"strconv"

	"coding-relay-console/internal/domain"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	difficulty := domain.ParseDifficulty(r.URL.Query().Get("difficulty"))
	load := h.questions.ByDifficulty
	if r.URL.Query().Get("refresh") == "true" {
		load = h.questions.Reload
	}
	questions, err := load(r.Context(), difficulty)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, map[string]any{"difficulty": difficulty, "questions": questions})
}

func (h *Handler) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	difficulty := domain.ParseDifficulty(chi.URLParam(r, "difficulty"))
	id, err := strconv.Atoi(chi.URLParam(r, "questionID"))
	if err != nil {
		h.respondError(w, r, domain.Invalid("question_id", "question id must be a number"))
		return
	}
	q, err := h.questions.Question(r.Context(), difficulty, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, q)
}
