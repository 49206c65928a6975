package order

import (
	"context"
	"time"

	"github.com/campusbites/order-service/internal/model"
	"github.com/campusbites/order-service/internal/order/dto"
)

type Repository interface {
	// CreateWithItems inserts the order, its line items and the profile
	// spend counters in one transaction.
	CreateWithItems(ctx context.Context, order *model.Order) error

	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)

	// Advance is a guarded transition: the row only changes when its status
	// still equals from. The completed transition additionally requires
	// points_credited = false and flips it true, so an order completes (and
	// earns points) at most once no matter how many workers race.
	Advance(ctx context.Context, id string, from, to model.OrderStatus, now time.Time) (bool, error)

	// Cancel is guarded the same way: it only fires while the order is in a
	// non-terminal status.
	Cancel(ctx context.Context, id, cancelledBy, reason string, now time.Time) (bool, error)

	// MarkPointsCredited re-flips the credit flag after a failed earn credit
	// was reopened; guarded so concurrent retries fire the credit once.
	MarkPointsCredited(ctx context.Context, id string) (bool, error)

	// ClearPointsCredited reopens the earn credit after the ledger write
	// failed, so a later advance call can retry it.
	ClearPointsCredited(ctx context.Context, id string) error

	// PurgeByCafe deletes every order of the cafe along with its line items.
	PurgeByCafe(ctx context.Context, cafeID string) (int64, error)
}
