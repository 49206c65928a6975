package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/campusbites/order-service/internal/auth"
	"github.com/campusbites/order-service/internal/cafe"
	"github.com/campusbites/order-service/internal/cafe/dto"
	"github.com/campusbites/order-service/internal/model"
	"github.com/campusbites/order-service/pkg/httputil"
	"github.com/campusbites/order-service/pkg/logger"
)

type CafeHandler struct {
	uc     cafe.UseCase
	logger logger.ZapLogger
}

func NewCafeHandler(uc cafe.UseCase, log logger.ZapLogger) *CafeHandler {
	return &CafeHandler{uc: uc, logger: log}
}

type cafeRequest struct {
	Name            string `json:"name"`
	Slug            string `json:"slug"`
	Description     string `json:"description"`
	Location        string `json:"location"`
	ImageURL        string `json:"image_url"`
	WhatsappNumber  string `json:"whatsapp_number"`
	WhatsappEnabled bool   `json:"whatsapp_enabled"`
}

func (h *CafeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		httputil.Error(w, http.StatusUnauthorized, "missing identity")
		return
	}
	if auth.GetUserType(r.Context()) != model.UserTypeCafeOwner {
		httputil.Error(w, http.StatusForbidden, "access denied")
		return
	}

	var req cafeRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		httputil.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	c, err := h.uc.CreateCafe(r.Context(), &dto.CreateCafeInput{
		OwnerID:        userID,
		Name:           req.Name,
		Slug:           req.Slug,
		Description:    req.Description,
		Location:       req.Location,
		ImageURL:       req.ImageURL,
		WhatsappNumber: req.WhatsappNumber,
	})
	if err != nil {
		h.logger.Error("failed to create cafe", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to create cafe")
		return
	}

	httputil.JSON(w, http.StatusCreated, c)
}

func (h *CafeHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := &dto.CafeFilters{
		SearchQuery:   r.URL.Query().Get("q"),
		AcceptingOnly: r.URL.Query().Get("accepting") == "true",
		OrderBy:       r.URL.Query().Get("order_by"),
		Page:          httputil.QueryInt(r, "page", 1),
		PageSize:      httputil.QueryInt(r, "page_size", 20),
	}

	cafes, total, err := h.uc.ListCafes(r.Context(), filters)
	if err != nil {
		h.logger.Error("failed to list cafes", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to list cafes")
		return
	}
	if cafes == nil {
		cafes = []model.Cafe{}
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"cafes": cafes,
		"total": total,
	})
}

func (h *CafeHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.uc.GetCafe(r.Context(), chi.URLParam(r, "cafeID"))
	if err != nil {
		h.logger.Error("failed to get cafe", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to get cafe")
		return
	}
	if c == nil {
		httputil.Error(w, http.StatusNotFound, "cafe not found")
		return
	}
	httputil.JSON(w, http.StatusOK, c)
}

func (h *CafeHandler) Update(w http.ResponseWriter, r *http.Request) {
	cafeID := chi.URLParam(r, "cafeID")
	userID := auth.GetUserID(r.Context())

	ok, err := h.uc.CanManage(r.Context(), cafeID, userID)
	if err != nil {
		httputil.Error(w, http.StatusInternalServerError, "authorization check failed")
		return
	}
	if !ok {
		httputil.Error(w, http.StatusForbidden, "access denied")
		return
	}

	var req cafeRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.uc.UpdateCafe(r.Context(), &dto.UpdateCafeInput{
		ID:              cafeID,
		Name:            req.Name,
		Description:     req.Description,
		Location:        req.Location,
		ImageURL:        req.ImageURL,
		WhatsappNumber:  req.WhatsappNumber,
		WhatsappEnabled: req.WhatsappEnabled,
	})
	if err != nil {
		if errors.Is(err, cafe.ErrCafeNotFound) {
			httputil.Error(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("failed to update cafe", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to update cafe")
		return
	}

	httputil.JSON(w, http.StatusOK, c)
}

func (h *CafeHandler) SetAccepting(w http.ResponseWriter, r *http.Request) {
	cafeID := chi.URLParam(r, "cafeID")

	var req struct {
		Accepting bool `json:"accepting"`
	}
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.uc.SetAcceptingOrders(r.Context(), cafeID, auth.GetUserID(r.Context()), req.Accepting)
	if err != nil {
		if errors.Is(err, cafe.ErrNotOwner) {
			httputil.Error(w, http.StatusForbidden, err.Error())
			return
		}
		h.logger.Error("failed to toggle accepting orders", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to toggle accepting orders")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]bool{"accepting": req.Accepting})
}

func (h *CafeHandler) AddStaff(w http.ResponseWriter, r *http.Request) {
	cafeID := chi.URLParam(r, "cafeID")

	var req struct {
		UserID string `json:"user_id"`
	}
	if err := httputil.Decode(r, &req); err != nil || req.UserID == "" {
		httputil.Error(w, http.StatusBadRequest, "user_id is required")
		return
	}

	staff, err := h.uc.AddStaff(r.Context(), cafeID, auth.GetUserID(r.Context()), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, cafe.ErrCafeNotFound):
			httputil.Error(w, http.StatusNotFound, err.Error())
		case errors.Is(err, cafe.ErrNotOwner):
			httputil.Error(w, http.StatusForbidden, err.Error())
		default:
			h.logger.Error("failed to add staff", zap.Error(err))
			httputil.Error(w, http.StatusInternalServerError, "failed to add staff")
		}
		return
	}

	httputil.JSON(w, http.StatusCreated, staff)
}

func (h *CafeHandler) RemoveStaff(w http.ResponseWriter, r *http.Request) {
	cafeID := chi.URLParam(r, "cafeID")
	staffUserID := chi.URLParam(r, "userID")

	err := h.uc.RemoveStaff(r.Context(), cafeID, auth.GetUserID(r.Context()), staffUserID)
	if err != nil {
		switch {
		case errors.Is(err, cafe.ErrCafeNotFound):
			httputil.Error(w, http.StatusNotFound, err.Error())
		case errors.Is(err, cafe.ErrNotOwner):
			httputil.Error(w, http.StatusForbidden, err.Error())
		default:
			h.logger.Error("failed to remove staff", zap.Error(err))
			httputil.Error(w, http.StatusInternalServerError, "failed to remove staff")
		}
		return
	}

	httputil.JSON(w, http.StatusNoContent, nil)
}

func (h *CafeHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	cafeID := chi.URLParam(r, "cafeID")

	ok, err := h.uc.CanManage(r.Context(), cafeID, auth.GetUserID(r.Context()))
	if err != nil {
		httputil.Error(w, http.StatusInternalServerError, "authorization check failed")
		return
	}
	if !ok {
		httputil.Error(w, http.StatusForbidden, "access denied")
		return
	}

	staff, err := h.uc.ListStaff(r.Context(), cafeID)
	if err != nil {
		h.logger.Error("failed to list staff", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to list staff")
		return
	}
	if staff == nil {
		staff = []model.CafeStaff{}
	}

	httputil.JSON(w, http.StatusOK, staff)
}
