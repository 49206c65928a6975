package loyalty

import (
	"context"
	"errors"

	"github.com/campusbites/order-service/internal/loyalty/dto"
	"github.com/campusbites/order-service/internal/model"
)

// ErrDuplicateEntry is returned when a ledger write collides with the unique
// (order_id, type) index, i.e. the same order event was already recorded.
var ErrDuplicateEntry = errors.New("duplicate ledger entry for order")

type Repository interface {
	// GetBalance reads the cached balance column on the profile row.
	GetBalance(ctx context.Context, userID string) (int, error)
	// ApplyWithLedger writes the new cached balance and the ledger row in a
	// single transaction.
	ApplyWithLedger(ctx context.Context, newBalance int, txn *model.LoyaltyTransaction) error
	FindAll(ctx context.Context, filters *dto.HistoryFilters) ([]model.LoyaltyTransaction, int, error)
	// SumLedger derives the balance from the ledger alone.
	SumLedger(ctx context.Context, userID string) (int, error)
	SetBalance(ctx context.Context, userID string, balance int) error
}
