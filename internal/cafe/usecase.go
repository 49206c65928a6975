package cafe

import (
	"context"
	"errors"

	"github.com/campusbites/order-service/internal/cafe/dto"
	"github.com/campusbites/order-service/internal/model"
)

var (
	ErrCafeNotFound = errors.New("cafe not found")
	ErrNotOwner     = errors.New("only the cafe owner may do this")
)

type UseCase interface {
	CreateCafe(ctx context.Context, input *dto.CreateCafeInput) (*model.Cafe, error)
	GetCafe(ctx context.Context, id string) (*model.Cafe, error)
	// ListCafes returns cafes ordered per the filters, best rated first by
	// default.
	ListCafes(ctx context.Context, filters *dto.CafeFilters) ([]model.Cafe, int, error)
	UpdateCafe(ctx context.Context, input *dto.UpdateCafeInput) (*model.Cafe, error)
	SetAcceptingOrders(ctx context.Context, cafeID, userID string, accepting bool) error

	// CanManage is the dashboard authorization check: owner or staff.
	CanManage(ctx context.Context, cafeID, userID string) (bool, error)
	AddStaff(ctx context.Context, cafeID, ownerID, staffUserID string) (*model.CafeStaff, error)
	RemoveStaff(ctx context.Context, cafeID, ownerID, staffUserID string) error
	ListStaff(ctx context.Context, cafeID string) ([]model.CafeStaff, error)
}
