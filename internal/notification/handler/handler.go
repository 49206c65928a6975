package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/campusbites/order-service/internal/auth"
	"github.com/campusbites/order-service/internal/model"
	"github.com/campusbites/order-service/internal/notification"
	"github.com/campusbites/order-service/internal/notification/dto"
	"github.com/campusbites/order-service/pkg/httputil"
	"github.com/campusbites/order-service/pkg/logger"
)

// CafeAuthorizer gates the cafe dashboard channel to the cafe's owner and
// staff.
type CafeAuthorizer interface {
	CanManage(ctx context.Context, cafeID, userID string) (bool, error)
}

type NotificationHandler struct {
	uc     notification.UseCase
	authz  CafeAuthorizer
	logger logger.ZapLogger
}

func NewNotificationHandler(uc notification.UseCase, authz CafeAuthorizer, log logger.ZapLogger) *NotificationHandler {
	return &NotificationHandler{uc: uc, authz: authz, logger: log}
}

func (h *NotificationHandler) requireManager(w http.ResponseWriter, r *http.Request, cafeID, userID string) bool {
	ok, err := h.authz.CanManage(r.Context(), cafeID, userID)
	if err != nil {
		h.logger.Error("failed to check cafe membership", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "authorization check failed")
		return false
	}
	if !ok {
		httputil.Error(w, http.StatusForbidden, "access denied")
		return false
	}
	return true
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		httputil.Error(w, http.StatusUnauthorized, "missing identity")
		return
	}

	filters := &dto.NotificationFilters{
		UserID:     userID,
		CafeID:     r.URL.Query().Get("cafe_id"),
		UnreadOnly: r.URL.Query().Get("unread") == "true",
		Page:       httputil.QueryInt(r, "page", 1),
		PageSize:   httputil.QueryInt(r, "page_size", 20),
	}
	// Cafe dashboards poll their own channel rather than the user's.
	if filters.CafeID != "" {
		if !h.requireManager(w, r, filters.CafeID, userID) {
			return
		}
		filters.UserID = ""
	}

	items, total, err := h.uc.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("failed to list notifications", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if items == nil {
		items = []model.Notification{}
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"notifications": items,
		"total":         total,
	})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.MarkRead(r.Context(), chi.URLParam(r, "notificationID")); err != nil {
		h.logger.Error("failed to mark notification read", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to mark notification read")
		return
	}
	httputil.JSON(w, http.StatusNoContent, nil)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		httputil.Error(w, http.StatusUnauthorized, "missing identity")
		return
	}
	if err := h.uc.MarkAllRead(r.Context(), userID); err != nil {
		h.logger.Error("failed to mark notifications read", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to mark notifications read")
		return
	}
	httputil.JSON(w, http.StatusNoContent, nil)
}

// Stream is the server-sent-events bridge over the Redis subscription: the
// browser keeps one connection open per user (or cafe dashboard) and receives
// each notification as one SSE data frame.
func (h *NotificationHandler) Stream(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		httputil.Error(w, http.StatusUnauthorized, "missing identity")
		return
	}

	channel := notification.UserChannel(userID)
	if cafeID := r.URL.Query().Get("cafe_id"); cafeID != "" {
		if !h.requireManager(w, r, cafeID, userID) {
			return
		}
		channel = notification.CafeChannel(cafeID)
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	msgs, cleanup, err := h.uc.Subscribe(r.Context(), channel)
	if err != nil {
		h.logger.Error("failed to subscribe", zap.String("channel", channel), zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}
	defer cleanup()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case payload, open := <-msgs:
			if !open {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
