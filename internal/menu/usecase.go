package menu

import (
	"context"
	"errors"

	"github.com/campusbites/order-service/internal/menu/dto"
	"github.com/campusbites/order-service/internal/model"
)

var (
	ErrItemNotFound   = errors.New("menu item not found")
	ErrInvalidBulkOp  = errors.New("invalid bulk operation")
	ErrInvalidPrice   = errors.New("price must be positive")
)

type UseCase interface {
	CreateItem(ctx context.Context, input *dto.CreateMenuItemInput) (*model.MenuItem, error)
	GetItem(ctx context.Context, id string) (*model.MenuItem, error)
	ListItems(ctx context.Context, filters *dto.MenuFilters) ([]model.MenuItem, int, error)
	UpdateItem(ctx context.Context, input *dto.UpdateMenuItemInput) (*model.MenuItem, error)
	DeleteItem(ctx context.Context, id string) error

	BulkUpdatePrices(ctx context.Context, input *dto.BulkPriceInput) (int64, error)
	BulkSetAvailability(ctx context.Context, input *dto.BulkAvailabilityInput) (int64, error)

	AdjustStock(ctx context.Context, input *dto.AdjustStockInput) (*model.MenuItem, error)
	// DeductForOrder / RestockForOrder are driven by the order event listener.
	DeductForOrder(ctx context.Context, orderID, cafeID string, lines []dto.OrderLine) error
	RestockForOrder(ctx context.Context, orderID, cafeID string, lines []dto.OrderLine) error

	ResetDailyStock(ctx context.Context, cafeID string) (int64, error)
	// RunDailyReset blocks until ctx is done, resetting tracked stock once a
	// day at the given local hour.
	RunDailyReset(ctx context.Context, hour int)

	ListMovements(ctx context.Context, cafeID, menuItemID string, page, pageSize int) ([]model.StockMovement, int, error)
}
