package handler

import (
	"gamification_hub/internal/api/middleware"
	"gamification_hub/internal/app/service"
	"gamification_hub/internal/common"
	"gamification_hub/internal/domain/model"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ChallengeHandler struct {
	challengeService *service.ChallengeService
}

func NewChallengeHandler(cs *service.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{challengeService: cs}
}

func (h *ChallengeHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.listChallenges)    // GET /api/v1/challenges
	r.Get("/{ref}", h.getChallenge) // GET /api/v1/challenges/{id or slug}

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Post("/", h.createChallenge)
		adminRouter.Put("/{ref}", h.updateChallenge)
		adminRouter.Delete("/{ref}", h.deleteChallenge)
	})
}

func (h *ChallengeHandler) createChallenge(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req service.CreateChallengeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	challenge, err := h.challengeService.Create(r.Context(), userID, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, challenge)
}

func (h *ChallengeHandler) listChallenges(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	q := r.URL.Query()

	list, err := h.challengeService.List(r.Context(), service.ListChallengesQuery{
		Category:   model.ChallengeCategory(q.Get("category")),
		Difficulty: model.ChallengeDifficulty(q.Get("difficulty")),
		Status:     q.Get("status"),
		Tag:        q.Get("tag"),
		Search:     q.Get("search"),
		Limit:      queryInt(r, "limit", 0),
		Offset:     queryInt(r, "offset", 0),
	}, userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, list)
}

func (h *ChallengeHandler) getChallenge(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	view, err := h.challengeService.Get(r.Context(), chi.URLParam(r, "ref"), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, view)
}

func (h *ChallengeHandler) updateChallenge(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateChallengeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	challenge, err := h.challengeService.Update(r.Context(), chi.URLParam(r, "ref"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, challenge)
}

func (h *ChallengeHandler) deleteChallenge(w http.ResponseWriter, r *http.Request) {
	if err := h.challengeService.Delete(r.Context(), chi.URLParam(r, "ref")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
