package profile

import (
	"context"
	"errors"

	"github.com/campusbites/order-service/internal/model"
	"github.com/campusbites/order-service/internal/profile/dto"
)

var ErrProfileNotFound = errors.New("profile not found")

type UseCase interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	// EnsureProfile creates the row on first sight of a gateway identity.
	EnsureProfile(ctx context.Context, input *dto.EnsureProfileInput) (*model.Profile, error)
	UpdateProfile(ctx context.Context, input *dto.UpdateProfileInput) (*model.Profile, error)
}
