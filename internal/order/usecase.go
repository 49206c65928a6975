package order

import (
	"context"
	"errors"

	"github.com/campusbites/order-service/internal/model"
	"github.com/campusbites/order-service/internal/order/dto"
)

var (
	ErrEmptyCart          = errors.New("order must contain at least one item")
	ErrCafeNotFound       = errors.New("cafe not found")
	ErrCafeClosed         = errors.New("cafe is not accepting orders")
	ErrItemUnavailable    = errors.New("menu item unavailable")
	ErrOrderNotFound      = errors.New("order not found")
	ErrTerminalStatus     = errors.New("order is already in a terminal status")
	ErrConflict           = errors.New("order changed concurrently, reload and retry")
	ErrCancelWindowClosed = errors.New("cancellation window has closed")
	ErrForbidden          = errors.New("not allowed to act on this order")
	ErrCustomerRequired   = errors.New("counter orders need the scanned customer id")
)

type UseCase interface {
	PlaceOrder(ctx context.Context, input *dto.PlaceOrderInput) (*model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)

	// AdvanceOrder moves the order one step forward along the fixed
	// lifecycle. Completing the order credits the earned points exactly once.
	AdvanceOrder(ctx context.Context, input *dto.AdvanceOrderInput) (*model.Order, error)

	// CancelOrder refuses terminal orders. Customers may only cancel within
	// the configured window after placement; cafe staff may cancel any
	// active order. Redeemed points are refunded.
	CancelOrder(ctx context.Context, input *dto.CancelOrderInput) (*model.Order, error)

	// PurgeCafeOrders wipes the cafe's entire order history. Owner only.
	PurgeCafeOrders(ctx context.Context, cafeID, actorID string) (int64, error)
}
