package menu

import (
	"context"

	"github.com/campusbites/order-service/internal/menu/dto"
	"github.com/campusbites/order-service/internal/model"
)

type Repository interface {
	Create(ctx context.Context, item *model.MenuItem) error
	FindByID(ctx context.Context, id string) (*model.MenuItem, error)
	FindAll(ctx context.Context, filters *dto.MenuFilters) ([]model.MenuItem, int, error)
	Update(ctx context.Context, item *model.MenuItem) error
	Delete(ctx context.Context, id string) error

	// BatchGet loads the given items of one cafe in a single query.
	BatchGet(ctx context.Context, cafeID string, ids []string) ([]model.MenuItem, error)

	// Bulk edits run as a single UPDATE statement: all matching rows change
	// or none do.
	BulkUpdatePrice(ctx context.Context, filter *dto.BulkFilter, mode string, value float64) (int64, error)
	BulkSetAvailability(ctx context.Context, filter *dto.BulkFilter, available bool) (int64, error)

	// AdjustStockWithMovement writes the new stock level and the movement log
	// row in one transaction.
	AdjustStockWithMovement(ctx context.Context, item *model.MenuItem, movement *model.StockMovement) error

	// ResetDailyStock sets current stock back to the daily quantity for every
	// tracked item; empty cafeID means all cafes.
	ResetDailyStock(ctx context.Context, cafeID string) (int64, error)

	ListMovements(ctx context.Context, cafeID, menuItemID string, page, pageSize int) ([]model.StockMovement, int, error)
}
