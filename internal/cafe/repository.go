package cafe

import (
	"context"

	"github.com/campusbites/order-service/internal/cafe/dto"
	"github.com/campusbites/order-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, cafe *model.Cafe) error
	FindByID(ctx context.Context, id string) (*model.Cafe, error)
	FindAll(ctx context.Context, filters *dto.CafeFilters) ([]model.Cafe, int, error)
	Update(ctx context.Context, cafe *model.Cafe) error
	SetAcceptingOrders(ctx context.Context, id string, accepting bool) error

	// HasStaff reports whether the user is the cafe's owner or a staff member.
	HasStaff(ctx context.Context, cafeID, userID string) (bool, error)
	AddStaff(ctx context.Context, staff *model.CafeStaff) error
	RemoveStaff(ctx context.Context, cafeID, userID string) error
	ListStaff(ctx context.Context, cafeID string) ([]model.CafeStaff, error)
}
