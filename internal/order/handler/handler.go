package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/campusbites/order-service/internal/auth"
	"github.com/campusbites/order-service/internal/loyalty"
	"github.com/campusbites/order-service/internal/model"
	"github.com/campusbites/order-service/internal/order"
	"github.com/campusbites/order-service/internal/order/dto"
	"github.com/campusbites/order-service/pkg/httputil"
	"github.com/campusbites/order-service/pkg/logger"
)

// CafeAuthorizer gates dashboard operations to the cafe's owner and staff.
type CafeAuthorizer interface {
	CanManage(ctx context.Context, cafeID, userID string) (bool, error)
}

type OrderHandler struct {
	uc     order.UseCase
	authz  CafeAuthorizer
	logger logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, authz CafeAuthorizer, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{uc: uc, authz: authz, logger: log}
}

func (h *OrderHandler) requireManager(w http.ResponseWriter, r *http.Request, cafeID string) bool {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		httputil.Error(w, http.StatusUnauthorized, "missing identity")
		return false
	}
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

func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		httputil.Error(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var input dto.PlaceOrderInput
	if err := httputil.Decode(r, &input); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	input.PlacedBy = userID

	o, err := h.uc.PlaceOrder(r.Context(), &input)
	if err != nil {
		h.writeError(w, err, "failed to place order")
		return
	}
	httputil.JSON(w, http.StatusCreated, o)
}

// Get serves the customer the order belongs to and the cafe's own dashboard;
// everyone else gets a 403.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		httputil.Error(w, http.StatusUnauthorized, "missing identity")
		return
	}

	o, err := h.uc.GetOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeError(w, err, "failed to load order")
		return
	}
	if o.UserID != userID {
		ok, err := h.authz.CanManage(r.Context(), o.CafeID, userID)
		if err != nil {
			h.logger.Error("failed to check cafe membership", zap.Error(err))
			httputil.Error(w, http.StatusInternalServerError, "authorization check failed")
			return
		}
		if !ok {
			httputil.Error(w, http.StatusForbidden, "access denied")
			return
		}
	}
	httputil.JSON(w, http.StatusOK, o)
}

func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		httputil.Error(w, http.StatusUnauthorized, "missing identity")
		return
	}
	h.list(w, r, &dto.OrderFilters{UserID: userID})
}

func (h *OrderHandler) ListForCafe(w http.ResponseWriter, r *http.Request) {
	cafeID := chi.URLParam(r, "cafeID")
	if !h.requireManager(w, r, cafeID) {
		return
	}
	h.list(w, r, &dto.OrderFilters{CafeID: cafeID})
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request, filters *dto.OrderFilters) {
	filters.Status = r.URL.Query().Get("status")
	filters.SortBy = r.URL.Query().Get("sort_by")
	filters.SortOrder = r.URL.Query().Get("sort_order")
	filters.Page = httputil.QueryInt(r, "page", 1)
	filters.PageSize = httputil.QueryInt(r, "page_size", 20)

	orders, total, err := h.uc.ListOrders(r.Context(), filters)
	if err != nil {
		h.logger.Error("failed to list orders", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"orders": orders,
		"total":  total,
	})
}

func (h *OrderHandler) Advance(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		httputil.Error(w, http.StatusUnauthorized, "missing identity")
		return
	}

	o, err := h.uc.AdvanceOrder(r.Context(), &dto.AdvanceOrderInput{
		OrderID: chi.URLParam(r, "orderID"),
		ActorID: userID,
	})
	if err != nil {
		h.writeError(w, err, "failed to advance order")
		return
	}
	httputil.JSON(w, http.StatusOK, o)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		httputil.Error(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	// The body is optional; an empty reason is fine.
	_ = httputil.Decode(r, &body)

	o, err := h.uc.CancelOrder(r.Context(), &dto.CancelOrderInput{
		OrderID: chi.URLParam(r, "orderID"),
		ActorID: userID,
		Reason:  body.Reason,
	})
	if err != nil {
		h.writeError(w, err, "failed to cancel order")
		return
	}
	httputil.JSON(w, http.StatusOK, o)
}

func (h *OrderHandler) Purge(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		httputil.Error(w, http.StatusUnauthorized, "missing identity")
		return
	}

	purged, err := h.uc.PurgeCafeOrders(r.Context(), chi.URLParam(r, "cafeID"), userID)
	if err != nil {
		h.writeError(w, err, "failed to purge orders")
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]interface{}{"purged": purged})
}

func (h *OrderHandler) writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrItemUnavailable),
		errors.Is(err, order.ErrCustomerRequired),
		errors.Is(err, loyalty.ErrInsufficientPoints):
		httputil.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrCafeNotFound), errors.Is(err, order.ErrOrderNotFound):
		httputil.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, order.ErrForbidden):
		httputil.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, order.ErrCafeClosed),
		errors.Is(err, order.ErrTerminalStatus),
		errors.Is(err, order.ErrCancelWindowClosed),
		errors.Is(err, order.ErrConflict):
		httputil.Error(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error(fallback, zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, fallback)
	}
}
