package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/campusbites/order-service/internal/auth"
	"github.com/campusbites/order-service/internal/menu"
	"github.com/campusbites/order-service/internal/menu/dto"
	"github.com/campusbites/order-service/internal/model"
	"github.com/campusbites/order-service/pkg/httputil"
	"github.com/campusbites/order-service/pkg/logger"
)

// CafeAuthorizer gates dashboard operations to the cafe's owner and staff.
type CafeAuthorizer interface {
	CanManage(ctx context.Context, cafeID, userID string) (bool, error)
}

type MenuHandler struct {
	uc     menu.UseCase
	authz  CafeAuthorizer
	logger logger.ZapLogger
}

func NewMenuHandler(uc menu.UseCase, authz CafeAuthorizer, log logger.ZapLogger) *MenuHandler {
	return &MenuHandler{uc: uc, authz: authz, logger: log}
}

func (h *MenuHandler) requireManager(w http.ResponseWriter, r *http.Request, cafeID string) bool {
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

type menuItemRequest struct {
	Name               string  `json:"name"`
	Description        string  `json:"description"`
	Category           string  `json:"category"`
	Price              float64 `json:"price"`
	ImageURL           string  `json:"image_url"`
	IsAvailable        *bool   `json:"is_available"`
	OutOfStock         bool    `json:"out_of_stock"`
	Vegetarian         *bool   `json:"vegetarian"`
	DailyStockQuantity *int    `json:"daily_stock_quantity"`
}

func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	cafeID := chi.URLParam(r, "cafeID")
	if !h.requireManager(w, r, cafeID) {
		return
	}

	var req menuItemRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Category == "" {
		httputil.Error(w, http.StatusBadRequest, "name and category are required")
		return
	}

	item, err := h.uc.CreateItem(r.Context(), &dto.CreateMenuItemInput{
		CafeID:             cafeID,
		Name:               req.Name,
		Description:        req.Description,
		Category:           req.Category,
		Price:              req.Price,
		ImageURL:           req.ImageURL,
		Vegetarian:         req.Vegetarian,
		DailyStockQuantity: req.DailyStockQuantity,
	})
	if err != nil {
		if errors.Is(err, menu.ErrInvalidPrice) {
			httputil.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to create menu item", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to create menu item")
		return
	}

	httputil.JSON(w, http.StatusCreated, item)
}

func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var vegetarian *bool
	switch q.Get("vegetarian") {
	case "true":
		v := true
		vegetarian = &v
	case "false":
		v := false
		vegetarian = &v
	}

	filters := &dto.MenuFilters{
		CafeID:        chi.URLParam(r, "cafeID"),
		Category:      q.Get("category"),
		SearchQuery:   q.Get("q"),
		Vegetarian:    vegetarian,
		AvailableOnly: q.Get("available") == "true",
		SortBy:        q.Get("sort_by"),
		SortOrder:     q.Get("sort_order"),
		Page:          httputil.QueryInt(r, "page", 1),
		PageSize:      httputil.QueryInt(r, "page_size", 50),
	}

	items, total, err := h.uc.ListItems(r.Context(), filters)
	if err != nil {
		h.logger.Error("failed to list menu items", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to list menu items")
		return
	}
	if items == nil {
		items = []model.MenuItem{}
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": total,
	})
}

func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.uc.GetItem(r.Context(), chi.URLParam(r, "itemID"))
	if err != nil {
		h.logger.Error("failed to get menu item", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to get menu item")
		return
	}
	if item == nil {
		httputil.Error(w, http.StatusNotFound, "menu item not found")
		return
	}
	httputil.JSON(w, http.StatusOK, item)
}

func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	existing, err := h.uc.GetItem(r.Context(), itemID)
	if err != nil {
		httputil.Error(w, http.StatusInternalServerError, "failed to get menu item")
		return
	}
	if existing == nil {
		httputil.Error(w, http.StatusNotFound, "menu item not found")
		return
	}
	if !h.requireManager(w, r, existing.CafeID) {
		return
	}

	var req menuItemRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	isAvailable := existing.IsAvailable
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	item, err := h.uc.UpdateItem(r.Context(), &dto.UpdateMenuItemInput{
		ID:                 itemID,
		CafeID:             existing.CafeID,
		Name:               req.Name,
		Description:        req.Description,
		Category:           req.Category,
		Price:              req.Price,
		ImageURL:           req.ImageURL,
		IsAvailable:        isAvailable,
		OutOfStock:         req.OutOfStock,
		Vegetarian:         req.Vegetarian,
		DailyStockQuantity: req.DailyStockQuantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, menu.ErrItemNotFound):
			httputil.Error(w, http.StatusNotFound, err.Error())
		case errors.Is(err, menu.ErrInvalidPrice):
			httputil.Error(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to update menu item", zap.Error(err))
			httputil.Error(w, http.StatusInternalServerError, "failed to update menu item")
		}
		return
	}

	httputil.JSON(w, http.StatusOK, item)
}

func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	existing, err := h.uc.GetItem(r.Context(), itemID)
	if err != nil {
		httputil.Error(w, http.StatusInternalServerError, "failed to get menu item")
		return
	}
	if existing == nil {
		httputil.JSON(w, http.StatusNoContent, nil)
		return
	}
	if !h.requireManager(w, r, existing.CafeID) {
		return
	}

	if err := h.uc.DeleteItem(r.Context(), itemID); err != nil {
		h.logger.Error("failed to delete menu item", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to delete menu item")
		return
	}
	httputil.JSON(w, http.StatusNoContent, nil)
}

type bulkPriceRequest struct {
	Scope    string  `json:"scope"`
	Category string  `json:"category"`
	Mode     string  `json:"mode"`
	Value    float64 `json:"value"`
}

func (h *MenuHandler) BulkPrice(w http.ResponseWriter, r *http.Request) {
	cafeID := chi.URLParam(r, "cafeID")
	if !h.requireManager(w, r, cafeID) {
		return
	}

	var req bulkPriceRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	affected, err := h.uc.BulkUpdatePrices(r.Context(), &dto.BulkPriceInput{
		Filter: dto.BulkFilter{CafeID: cafeID, Scope: req.Scope, Category: req.Category},
		Mode:   req.Mode,
		Value:  req.Value,
	})
	if err != nil {
		if errors.Is(err, menu.ErrInvalidBulkOp) {
			httputil.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("bulk price update failed", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "bulk price update failed")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]int64{"updated": affected})
}

type bulkAvailabilityRequest struct {
	Scope     string `json:"scope"`
	Category  string `json:"category"`
	Available bool   `json:"available"`
}

func (h *MenuHandler) BulkAvailability(w http.ResponseWriter, r *http.Request) {
	cafeID := chi.URLParam(r, "cafeID")
	if !h.requireManager(w, r, cafeID) {
		return
	}

	var req bulkAvailabilityRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	affected, err := h.uc.BulkSetAvailability(r.Context(), &dto.BulkAvailabilityInput{
		Filter:    dto.BulkFilter{CafeID: cafeID, Scope: req.Scope, Category: req.Category},
		Available: req.Available,
	})
	if err != nil {
		if errors.Is(err, menu.ErrInvalidBulkOp) {
			httputil.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("bulk availability update failed", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "bulk availability update failed")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]int64{"updated": affected})
}

type adjustStockRequest struct {
	QuantityChange int    `json:"quantity_change"`
	Reason         string `json:"reason"`
}

func (h *MenuHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	existing, err := h.uc.GetItem(r.Context(), itemID)
	if err != nil {
		httputil.Error(w, http.StatusInternalServerError, "failed to get menu item")
		return
	}
	if existing == nil {
		httputil.Error(w, http.StatusNotFound, "menu item not found")
		return
	}
	if !h.requireManager(w, r, existing.CafeID) {
		return
	}

	var req adjustStockRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := h.uc.AdjustStock(r.Context(), &dto.AdjustStockInput{
		MenuItemID:     itemID,
		QuantityChange: req.QuantityChange,
		Reason:         req.Reason,
		UserID:         auth.GetUserID(r.Context()),
	})
	if err != nil {
		h.logger.Error("stock adjustment failed", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "stock adjustment failed")
		return
	}

	httputil.JSON(w, http.StatusOK, item)
}

func (h *MenuHandler) ResetStock(w http.ResponseWriter, r *http.Request) {
	cafeID := chi.URLParam(r, "cafeID")
	if !h.requireManager(w, r, cafeID) {
		return
	}

	affected, err := h.uc.ResetDailyStock(r.Context(), cafeID)
	if err != nil {
		h.logger.Error("stock reset failed", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "stock reset failed")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]int64{"reset": affected})
}

func (h *MenuHandler) Movements(w http.ResponseWriter, r *http.Request) {
	cafeID := chi.URLParam(r, "cafeID")
	if !h.requireManager(w, r, cafeID) {
		return
	}

	movements, total, err := h.uc.ListMovements(
		r.Context(),
		cafeID,
		r.URL.Query().Get("menu_item_id"),
		httputil.QueryInt(r, "page", 1),
		httputil.QueryInt(r, "page_size", 50),
	)
	if err != nil {
		h.logger.Error("failed to list stock movements", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to list stock movements")
		return
	}
	if movements == nil {
		movements = []model.StockMovement{}
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"movements": movements,
		"total":     total,
	})
}
