package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/campusbites/order-service/internal/auth"
	"github.com/campusbites/order-service/internal/profile"
	"github.com/campusbites/order-service/internal/profile/dto"
	"github.com/campusbites/order-service/pkg/httputil"
	"github.com/campusbites/order-service/pkg/logger"
)

type ProfileHandler struct {
	uc     profile.UseCase
	logger logger.ZapLogger
}

func NewProfileHandler(uc profile.UseCase, log logger.ZapLogger) *ProfileHandler {
	return &ProfileHandler{uc: uc, logger: log}
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		httputil.Error(w, http.StatusUnauthorized, "missing identity")
		return
	}

	p, err := h.uc.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			httputil.Error(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("failed to get profile", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to get profile")
		return
	}

	httputil.JSON(w, http.StatusOK, p)
}

type registerRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// Register materializes a profile row for a gateway identity on first login.
func (h *ProfileHandler) Register(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		httputil.Error(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var req registerRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		httputil.Error(w, http.StatusBadRequest, "email is required")
		return
	}

	p, err := h.uc.EnsureProfile(r.Context(), &dto.EnsureProfileInput{
		UserID:   userID,
		FullName: req.FullName,
		Email:    req.Email,
		UserType: auth.GetUserType(r.Context()),
	})
	if err != nil {
		h.logger.Error("failed to ensure profile", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to create profile")
		return
	}

	httputil.JSON(w, http.StatusOK, p)
}

type updateProfileRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Block    string `json:"block"`
}

func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())
	if userID == "" {
		httputil.Error(w, http.StatusUnauthorized, "missing identity")
		return
	}

	var req updateProfileRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.uc.UpdateProfile(r.Context(), &dto.UpdateProfileInput{
		UserID:   userID,
		FullName: req.FullName,
		Phone:    req.Phone,
		Block:    req.Block,
	})
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			httputil.Error(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("failed to update profile", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	httputil.JSON(w, http.StatusOK, p)
}
