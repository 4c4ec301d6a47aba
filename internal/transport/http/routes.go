package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes builds the console router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewSlogLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.handleHealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/teams", func(r chi.Router) {
			r.Get("/", h.handleListTeams)
			r.Post("/", h.handleCreateTeam)
			r.Put("/{teamID}", h.handleUpdateTeam)
			r.Delete("/{teamID}", h.handleDeleteTeam)
		})
		r.Get("/leaderboard", h.handleLeaderboard)

		r.Get("/questions", h.handleListQuestions)
		r.Get("/questions/{difficulty}/{questionID}", h.handleGetQuestion)

		r.Route("/scores", func(r chi.Router) {
			r.Post("/add", h.handleAddPoints)
			r.Post("/overwrite", h.handleRequestOverwrite)
			r.Post("/overwrite/{token}/confirm", h.handleConfirmOverwrite)
			r.Delete("/overwrite/{token}", h.handleCancelOverwrite)
			r.Get("/history", h.handleHistory)
		})
	})

	r.Get("/ws/leaderboard", h.ws.ServeWS)
	return r
}

func (h *Handler) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
