package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusbites/order-service/internal/loyalty"
	"github.com/campusbites/order-service/internal/loyalty/dto"
	"github.com/campusbites/order-service/internal/model"
	"github.com/campusbites/order-service/pkg/logger"
)

// Locker serializes balance mutations across service instances. The Redis
// client implements it.
type Locker interface {
	AcquireLock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, value string) error
}

type loyaltyUseCase struct {
	repo   loyalty.Repository
	cache  Locker
	logger logger.ZapLogger
}

func NewLoyaltyUseCase(repo loyalty.Repository, cache Locker, log logger.ZapLogger) loyalty.UseCase {
	return &loyaltyUseCase{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

func (uc *loyaltyUseCase) Credit(ctx context.Context, input *dto.LedgerInput) (*model.LoyaltyTransaction, error) {
	txnType := model.LoyaltyEarned
	if input.Type != "" {
		txnType = model.LoyaltyTransactionType(input.Type)
	}
	return uc.apply(ctx, input, txnType, input.Points)
}

func (uc *loyaltyUseCase) Debit(ctx context.Context, input *dto.LedgerInput) (*model.LoyaltyTransaction, error) {
	return uc.apply(ctx, input, model.LoyaltyRedeemed, -input.Points)
}

func (uc *loyaltyUseCase) apply(ctx context.Context, input *dto.LedgerInput, txnType model.LoyaltyTransactionType, change int) (*model.LoyaltyTransaction, error) {
	if input.Points <= 0 {
		return nil, loyalty.ErrInvalidAmount
	}

	// Serialize balance mutations per user; concurrent checkouts and
	// completions race on the same profile row otherwise.
	lockKey := fmt.Sprintf("lock:loyalty:%s", input.UserID)
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire loyalty lock", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !acquired {
		return nil, errors.New("system busy, please try again later (lock)")
	}
	defer uc.cache.ReleaseLock(ctx, lockKey, lockValue)

	before, err := uc.repo.GetBalance(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	after := before + change
	if after < 0 {
		return nil, loyalty.ErrInsufficientPoints
	}

	txn := &model.LoyaltyTransaction{
		ID:           uuid.New().String(),
		UserID:       input.UserID,
		CafeID:       input.CafeID,
		OrderID:      input.OrderID,
		Type:         txnType,
		PointsChange: change,
		PointsBefore: before,
		PointsAfter:  after,
		Description:  input.Description,
		CreatedAt:    time.Now(),
	}

	if err := uc.repo.ApplyWithLedger(ctx, after, txn); err != nil {
		return nil, err
	}

	return txn, nil
}

func (uc *loyaltyUseCase) BalanceOf(ctx context.Context, userID string) (int, error) {
	return uc.repo.GetBalance(ctx, userID)
}

func (uc *loyaltyUseCase) TierOf(ctx context.Context, userID string) (model.Tier, error) {
	balance, err := uc.repo.GetBalance(ctx, userID)
	if err != nil {
		return model.Tier{}, err
	}
	return model.TierFor(balance), nil
}

func (uc *loyaltyUseCase) History(ctx context.Context, filters *dto.HistoryFilters) ([]model.LoyaltyTransaction, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *loyaltyUseCase) Reconcile(ctx context.Context, userID string) (*dto.ReconcileResult, error) {
	ledger, err := uc.repo.SumLedger(ctx, userID)
	if err != nil {
		return nil, err
	}
	cached, err := uc.repo.GetBalance(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := &dto.ReconcileResult{
		UserID:        userID,
		LedgerBalance: ledger,
		CachedBalance: cached,
	}

	if ledger != cached {
		uc.logger.Warn("loyalty balance drift",
			zap.String("user_id", userID),
			zap.Int("ledger", ledger),
			zap.Int("cached", cached),
		)
		if err := uc.repo.SetBalance(ctx, userID, ledger); err != nil {
			return nil, err
		}
		result.Repaired = true
	}

	return result, nil
}
