package loyalty

import (
	"context"
	"errors"

	"github.com/campusbites/order-service/internal/loyalty/dto"
	"github.com/campusbites/order-service/internal/model"
)

var (
	ErrInsufficientPoints = errors.New("insufficient loyalty points")
	ErrInvalidAmount      = errors.New("points amount must be positive")
)

type UseCase interface {
	Credit(ctx context.Context, input *dto.LedgerInput) (*model.LoyaltyTransaction, error)
	Debit(ctx context.Context, input *dto.LedgerInput) (*model.LoyaltyTransaction, error)
	BalanceOf(ctx context.Context, userID string) (int, error)
	TierOf(ctx context.Context, userID string) (model.Tier, error)
	History(ctx context.Context, filters *dto.HistoryFilters) ([]model.LoyaltyTransaction, int, error)
	// Reconcile recomputes the balance from the ledger and repairs the cached
	// column if they have drifted.
	Reconcile(ctx context.Context, userID string) (*dto.ReconcileResult, error)
}
