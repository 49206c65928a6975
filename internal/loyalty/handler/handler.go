package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/campusbites/order-service/internal/auth"
	"github.com/campusbites/order-service/internal/loyalty"
	"github.com/campusbites/order-service/internal/loyalty/dto"
	"github.com/campusbites/order-service/internal/model"
	"github.com/campusbites/order-service/pkg/httputil"
	"github.com/campusbites/order-service/pkg/logger"
)

type LoyaltyHandler struct {
	uc     loyalty.UseCase
	logger logger.ZapLogger
}

func NewLoyaltyHandler(uc loyalty.UseCase, log logger.ZapLogger) *LoyaltyHandler {
	return &LoyaltyHandler{uc: uc, logger: log}
}

// Balance returns the caller's current point balance and tier.
func (h *LoyaltyHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		httputil.Error(w, http.StatusUnauthorized, "missing identity")
		return
	}

	balance, err := h.uc.BalanceOf(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to read balance", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to read balance")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"balance": balance,
		"tier":    model.TierFor(balance),
	})
}

// Tier resolves an arbitrary user's tier; the offline QR scanner calls this
// with the scanned customer id to pick the discount percentage.
func (h *LoyaltyHandler) Tier(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	tier, err := h.uc.TierOf(r.Context(), userID)
	if err != nil {
		httputil.Error(w, http.StatusNotFound, "user not found")
		return
	}
	httputil.JSON(w, http.StatusOK, tier)
}

func (h *LoyaltyHandler) Tiers(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, model.Tiers())
}

func (h *LoyaltyHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		httputil.Error(w, http.StatusUnauthorized, "missing identity")
		return
	}

	filters := &dto.HistoryFilters{
		UserID:   userID,
		CafeID:   r.URL.Query().Get("cafe_id"),
		Type:     r.URL.Query().Get("type"),
		Page:     httputil.QueryInt(r, "page", 1),
		PageSize: httputil.QueryInt(r, "page_size", 20),
	}

	items, total, err := h.uc.History(r.Context(), filters)
	if err != nil {
		h.logger.Error("failed to list loyalty history", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	if items == nil {
		items = []model.LoyaltyTransaction{}
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"transactions": items,
		"total":        total,
	})
}

// Reconcile repairs the caller's own cached balance against the ledger.
func (h *LoyaltyHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	actor := auth.GetUserID(r.Context())
	if actor == "" {
		httputil.Error(w, http.StatusUnauthorized, "missing identity")
		return
	}
	if actor != userID {
		httputil.Error(w, http.StatusForbidden, "access denied")
		return
	}

	result, err := h.uc.Reconcile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, loyalty.ErrInsufficientPoints) {
			httputil.Error(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error("failed to reconcile balance", zap.Error(err), zap.String("user_id", userID))
		httputil.Error(w, http.StatusInternalServerError, "failed to reconcile balance")
		return
	}
	httputil.JSON(w, http.StatusOK, result)
}
