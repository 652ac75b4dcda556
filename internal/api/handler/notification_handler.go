package handler

import (
	"gamification_hub/internal/api/middleware"
	"gamification_hub/internal/app/service"
	"gamification_hub/internal/common"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(ns *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: ns}
}

func (h *NotificationHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.listNotifications)
	r.Get("/unread-count", h.unreadCount)
	r.Post("/read-all", h.markAllRead)
	r.Patch("/{notificationID}/read", h.setRead(true))
	r.Patch("/{notificationID}/unread", h.setRead(false))
}

func (h *NotificationHandler) listNotifications(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	list, err := h.notificationService.ListMine(r.Context(), userID, queryBool(r, "unread"), queryInt(r, "limit", 0))
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, list)
}

func (h *NotificationHandler) unreadCount(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	n, err := h.notificationService.UnreadCount(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]int{"unread_count": n})
}

func (h *NotificationHandler) markAllRead(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	n, err := h.notificationService.MarkAllRead(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]int{"updated": n})
}

func (h *NotificationHandler) setRead(read bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _ := middleware.GetUserIDFromContext(r.Context())
		if err := h.notificationService.MarkRead(r.Context(), userID, chi.URLParam(r, "notificationID"), read); err != nil {
			respondError(w, r, err)
			return
		}
		common.RespondWithJSON(w, http.StatusOK, common.MessageResponse{Message: "Notification updated"})
	}
}
