package handler

import (
	"gamification_hub/internal/api/middleware"
	"gamification_hub/internal/app/service"
	"gamification_hub/internal/common"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type AdminHandler struct {
	adminService *service.AdminService
}

func NewAdminHandler(as *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: as}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Use(middleware.AdminOnly)
	r.Get("/stats", h.stats)
	r.Get("/users", h.listUsers)
	r.Patch("/users/{userID}/active", h.setActive)
	r.Patch("/users/{userID}/points", h.setPoints)
	r.Post("/badges/rescan", h.rescanBadges)
}

func (h *AdminHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.Stats(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *AdminHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.adminService.ListUsers(r.Context(), queryInt(r, "limit", 0), queryInt(r, "offset", 0))
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, list)
}

func (h *AdminHandler) setActive(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.GetUserIDFromContext(r.Context())
	var req service.SetActiveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.adminService.SetActive(r.Context(), adminID, chi.URLParam(r, "userID"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *AdminHandler) setPoints(w http.ResponseWriter, r *http.Request) {
	adminID, _ := middleware.GetUserIDFromContext(r.Context())
	var req service.SetPointsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.adminService.SetPoints(r.Context(), adminID, chi.URLParam(r, "userID"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

// rescanBadges accepts an empty body to rescan every active user.
func (h *AdminHandler) rescanBadges(w http.ResponseWriter, r *http.Request) {
	var req service.RescanRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	n, err := h.adminService.QueueRescan(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusAccepted, map[string]int{"queued": n})
}
