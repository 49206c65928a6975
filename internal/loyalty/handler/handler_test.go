package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/campusbites/order-service/internal/auth"
	"github.com/campusbites/order-service/internal/loyalty/dto"
	"github.com/campusbites/order-service/internal/model"
	"github.com/campusbites/order-service/pkg/logger"
)

type fakeUseCase struct {
	reconciled string
}

func (f *fakeUseCase) Credit(context.Context, *dto.LedgerInput) (*model.LoyaltyTransaction, error) {
	return nil, nil
}

func (f *fakeUseCase) Debit(context.Context, *dto.LedgerInput) (*model.LoyaltyTransaction, error) {
	return nil, nil
}

func (f *fakeUseCase) BalanceOf(context.Context, string) (int, error) { return 0, nil }

func (f *fakeUseCase) TierOf(context.Context, string) (model.Tier, error) {
	return model.TierFor(0), nil
}

func (f *fakeUseCase) History(context.Context, *dto.HistoryFilters) ([]model.LoyaltyTransaction, int, error) {
	return nil, 0, nil
}

func (f *fakeUseCase) Reconcile(_ context.Context, userID string) (*dto.ReconcileResult, error) {
	f.reconciled = userID
	return &dto.ReconcileResult{UserID: userID}, nil
}

func newTestServer(uc *fakeUseCase) http.Handler {
	h := NewLoyaltyHandler(uc, logger.NewNop())
	r := chi.NewRouter()
	r.Post("/loyalty/reconcile/{userID}", h.Reconcile)
	return r
}

func TestReconcileSelfOnly(t *testing.T) {
	uc := &fakeUseCase{}
	srv := newTestServer(uc)

	req := httptest.NewRequest(http.MethodPost, "/loyalty/reconcile/user-1", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), "other-2", model.UserTypeStudent))
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, uc.reconciled)
}

func TestReconcileOwnBalance(t *testing.T) {
	uc := &fakeUseCase{}
	srv := newTestServer(uc)

	req := httptest.NewRequest(http.MethodPost, "/loyalty/reconcile/user-1", nil)
	req = req.WithContext(auth.WithIdentity(req.Context(), "user-1", model.UserTypeStudent))
	rec := httptest.NewRecorder()

	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", uc.reconciled)
}
