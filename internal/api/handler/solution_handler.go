package handler

import (
	"gamification_hub/internal/api/middleware"
	"gamification_hub/internal/app/service"
	"gamification_hub/internal/common"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type SolutionHandler struct {
	solutionService *service.SolutionService
}

func NewSolutionHandler(ss *service.SolutionService) *SolutionHandler {
	return &SolutionHandler{solutionService: ss}
}

func (h *SolutionHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/", h.submitSolution) // POST /api/v1/solutions
	r.Get("/my", h.listMySolutions)
	r.Get("/{solutionID}", h.getSolution)

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Get("/", h.listSolutions)
		adminRouter.Put("/evaluate", h.evaluateSolution)
	})
}

func (h *SolutionHandler) submitSolution(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req service.SubmitSolutionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	solution, err := h.solutionService.Submit(r.Context(), userID, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, solution)
}

func (h *SolutionHandler) listMySolutions(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	solutions, err := h.solutionService.ListMine(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, solutions)
}

func (h *SolutionHandler) getSolution(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	role, _ := middleware.GetUserRoleFromContext(r.Context())

	solution, err := h.solutionService.Get(r.Context(), chi.URLParam(r, "solutionID"), userID, role)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, solution)
}

func (h *SolutionHandler) listSolutions(w http.ResponseWriter, r *http.Request) {
	list, err := h.solutionService.ListAll(r.Context(), service.ListSolutionsQuery{
		ChallengeID: r.URL.Query().Get("challenge_id"),
		PendingOnly: queryBool(r, "pending"),
		Limit:       queryInt(r, "limit", 0),
		Offset:      queryInt(r, "offset", 0),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, list)
}

func (h *SolutionHandler) evaluateSolution(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.GetUserIDFromContext(r.Context())

	var req service.EvaluateSolutionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.solutionService.Evaluate(r.Context(), adminID, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}
