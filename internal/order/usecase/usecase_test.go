package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusbites/order-service/internal/loyalty"
	ldto "github.com/campusbites/order-service/internal/loyalty/dto"
	"github.com/campusbites/order-service/internal/model"
	"github.com/campusbites/order-service/internal/order"
	"github.com/campusbites/order-service/internal/order/dto"
	"github.com/campusbites/order-service/pkg/logger"
)

type fakeRepo struct {
	created      *model.Order
	createErr    error
	stored       *model.Order
	advanceOK    bool
	advanceCalls int
	cancelOK     bool
	purged       int64
	markOK       bool
	markCalls    int
	cleared      []string
}

func (f *fakeRepo) CreateWithItems(_ context.Context, o *model.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = o
	return nil
}

func (f *fakeRepo) FindByID(_ context.Context, id string) (*model.Order, error) {
	if f.stored != nil && f.stored.ID == id {
		copied := *f.stored
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeRepo) FindAll(context.Context, *dto.OrderFilters) ([]model.Order, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) Advance(context.Context, string, model.OrderStatus, model.OrderStatus, time.Time) (bool, error) {
	f.advanceCalls++
	return f.advanceOK, nil
}

func (f *fakeRepo) Cancel(context.Context, string, string, string, time.Time) (bool, error) {
	return f.cancelOK, nil
}

func (f *fakeRepo) MarkPointsCredited(context.Context, string) (bool, error) {
	f.markCalls++
	return f.markOK, nil
}

func (f *fakeRepo) ClearPointsCredited(_ context.Context, id string) error {
	f.cleared = append(f.cleared, id)
	return nil
}

func (f *fakeRepo) PurgeByCafe(context.Context, string) (int64, error) {
	return f.purged, nil
}

type fakeCafes struct {
	cafe      *model.Cafe
	canManage bool
}

func (f *fakeCafes) GetCafe(context.Context, string) (*model.Cafe, error) {
	return f.cafe, nil
}

func (f *fakeCafes) CanManage(context.Context, string, string) (bool, error) {
	return f.canManage, nil
}

type fakeMenu struct {
	rows []model.MenuItem
}

func (f *fakeMenu) BatchGet(context.Context, string, []string) ([]model.MenuItem, error) {
	return f.rows, nil
}

type fakePoints struct {
	balance   int
	tier      model.Tier
	tierUser  string
	credits   []*ldto.LedgerInput
	debits    []*ldto.LedgerInput
	creditErr error
	debitErr  error
}

func (f *fakePoints) BalanceOf(context.Context, string) (int, error) { return f.balance, nil }
func (f *fakePoints) TierOf(_ context.Context, userID string) (model.Tier, error) {
	f.tierUser = userID
	return f.tier, nil
}

func (f *fakePoints) Credit(_ context.Context, in *ldto.LedgerInput) (*model.LoyaltyTransaction, error) {
	if f.creditErr != nil {
		return nil, f.creditErr
	}
	f.credits = append(f.credits, in)
	return &model.LoyaltyTransaction{}, nil
}

func (f *fakePoints) Debit(_ context.Context, in *ldto.LedgerInput) (*model.LoyaltyTransaction, error) {
	if f.debitErr != nil {
		return nil, f.debitErr
	}
	f.debits = append(f.debits, in)
	return &model.LoyaltyTransaction{}, nil
}

type fakeNotifier struct {
	userMsgs []string
	cafeMsgs []string
}

func (f *fakeNotifier) NotifyUser(_ context.Context, _ string, _ *string, _, msg string) error {
	f.userMsgs = append(f.userMsgs, msg)
	return nil
}

func (f *fakeNotifier) NotifyCafe(_ context.Context, _ string, _ *string, _, msg string) error {
	f.cafeMsgs = append(f.cafeMsgs, msg)
	return nil
}

type fakePublisher struct {
	events []string
}

func (f *fakePublisher) Publish(_ context.Context, _, value []byte) error {
	f.events = append(f.events, string(value))
	return nil
}

type fakeSeq struct {
	next  int64
	err   error
	calls int
}

func (f *fakeSeq) NextSequence(context.Context, string, time.Duration) (int64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	f.next++
	return f.next, nil
}

type fixture struct {
	repo      *fakeRepo
	cafes     *fakeCafes
	menu      *fakeMenu
	points    *fakePoints
	notifier  *fakeNotifier
	publisher *fakePublisher
	seq       *fakeSeq
	uc        *orderUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo: &fakeRepo{advanceOK: true, cancelOK: true, markOK: true},
		cafes: &fakeCafes{
			cafe: &model.Cafe{
				BaseModel:       model.BaseModel{ID: "cafe-1"},
				OwnerID:         "owner-1",
				Slug:            "chai-point",
				AcceptingOrders: true,
			},
			canManage: true,
		},
		menu: &fakeMenu{rows: []model.MenuItem{
			{BaseModel: model.BaseModel{ID: "item-1"}, Name: "Masala Dosa", Price: 100, IsAvailable: true},
			{BaseModel: model.BaseModel{ID: "item-2"}, Name: "Filter Coffee", Price: 40, IsAvailable: true},
		}},
		points:    &fakePoints{balance: 300, tier: model.TierFor(0)},
		notifier:  &fakeNotifier{},
		publisher: &fakePublisher{},
		seq:       &fakeSeq{},
	}
	uc := NewOrderUseCase(
		f.repo, f.cafes, f.menu, f.points, f.notifier, f.publisher, f.seq,
		2*time.Minute, logger.NewNop(),
	)
	f.uc = uc.(*orderUseCase)
	f.uc.now = func() time.Time {
		return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	}
	return f
}

func placeInput() *dto.PlaceOrderInput {
	return &dto.PlaceOrderInput{
		PlacedBy: "user-1",
		CafeID:   "cafe-1",
		Items: []dto.CartLine{
			{MenuItemID: "item-1", Quantity: 5},
		},
		PaymentMethod: "upi",
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	f := newFixture(t)
	input := placeInput()
	input.Items = nil

	_, err := f.uc.PlaceOrder(context.Background(), input)

	assert.ErrorIs(t, err, order.ErrEmptyCart)
	assert.Zero(t, f.seq.calls, "no order number should be consumed")
	assert.Nil(t, f.repo.created)
	assert.Empty(t, f.points.debits)
}

func TestPlaceOrderWithRedemption(t *testing.T) {
	f := newFixture(t)
	input := placeInput() // 5 x 100 = 500
	input.PointsToRedeem = 50

	o, err := f.uc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, 500.0, o.Subtotal)
	assert.Equal(t, 50.0, o.Discount)
	assert.Equal(t, 450.0, o.TotalAmount)
	assert.Equal(t, 50, o.PointsRedeemed)
	assert.Equal(t, 45, o.PointsEarned)
	assert.False(t, o.PointsCredited)
	assert.Equal(t, model.StatusReceived, o.Status)
	assert.Equal(t, "ORD-20260314-chai-point-0001", o.OrderNumber)

	require.Len(t, f.points.debits, 1)
	assert.Equal(t, 50, f.points.debits[0].Points)

	require.NotNil(t, f.repo.created)
	require.Len(t, f.repo.created.Items, 1)
	assert.Equal(t, "Masala Dosa", f.repo.created.Items[0].Name)

	require.Len(t, f.publisher.events, 1)
	assert.Contains(t, f.publisher.events[0], "OrderPlaced")
	assert.Len(t, f.notifier.cafeMsgs, 1)
}

func TestPlaceOrderRedemptionClamped(t *testing.T) {
	f := newFixture(t)
	f.points.balance = 120
	input := placeInput()
	input.Items = []dto.CartLine{{MenuItemID: "item-1", Quantity: 1}} // subtotal 100
	input.PointsToRedeem = 1000

	o, err := f.uc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)

	// min(requested 1000, balance 120, half of subtotal 50)
	assert.Equal(t, 50, o.PointsRedeemed)
	assert.Equal(t, 50.0, o.Discount)
	assert.Equal(t, 50.0, o.TotalAmount)
	assert.Equal(t, 5, o.PointsEarned)
}

func TestPlaceOrderCafeClosed(t *testing.T) {
	f := newFixture(t)
	f.cafes.cafe.AcceptingOrders = false

	_, err := f.uc.PlaceOrder(context.Background(), placeInput())

	assert.ErrorIs(t, err, order.ErrCafeClosed)
}

func TestPlaceOrderOfflineTierDiscount(t *testing.T) {
	f := newFixture(t)
	f.cafes.cafe.AcceptingOrders = false // the till keeps working
	f.points.tier = model.TierFor(200)   // Silver, 10%
	input := placeInput()
	input.PlacedBy = "staff-7"
	input.CustomerID = "student-42"
	input.Items = []dto.CartLine{{MenuItemID: "item-1", Quantity: 2}} // subtotal 200
	input.Channel = string(model.ChannelOffline)
	input.PointsToRedeem = 50 // ignored at the counter

	o, err := f.uc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, model.ChannelOffline, o.Channel)
	assert.Equal(t, 20.0, o.Discount)
	assert.Equal(t, 180.0, o.TotalAmount)
	assert.Zero(t, o.PointsRedeemed)
	assert.Empty(t, f.points.debits)
	assert.Equal(t, "OFFLINE-ORD-20260314-chai-point-0001", o.OrderNumber)
}

func TestPlaceOrderOfflineBindsToScannedCustomer(t *testing.T) {
	f := newFixture(t)
	f.points.tier = model.TierFor(200) // Silver, 10%
	input := placeInput()
	input.PlacedBy = "staff-7"
	input.CustomerID = "student-42"
	input.Channel = string(model.ChannelOffline)

	o, err := f.uc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)

	// The order, its tier discount and the eventual earn all belong to the
	// scanned customer, not the staffer at the till.
	assert.Equal(t, "student-42", o.UserID)
	assert.Equal(t, "student-42", f.points.tierUser)
	assert.Equal(t, "student-42", f.repo.created.UserID)
}

func TestPlaceOrderOfflineRequiresManager(t *testing.T) {
	f := newFixture(t)
	f.cafes.canManage = false
	input := placeInput()
	input.PlacedBy = "student-9"
	input.CustomerID = "student-42"
	input.Channel = string(model.ChannelOffline)

	_, err := f.uc.PlaceOrder(context.Background(), input)

	assert.ErrorIs(t, err, order.ErrForbidden)
	assert.Nil(t, f.repo.created)
}

func TestPlaceOrderOfflineRequiresCustomer(t *testing.T) {
	f := newFixture(t)
	input := placeInput()
	input.PlacedBy = "staff-7"
	input.Channel = string(model.ChannelOffline)

	_, err := f.uc.PlaceOrder(context.Background(), input)

	assert.ErrorIs(t, err, order.ErrCustomerRequired)
}

func TestPlaceOrderOnlineIgnoresCustomerField(t *testing.T) {
	f := newFixture(t)
	input := placeInput() // placed by user-1
	input.CustomerID = "somebody-else"

	o, err := f.uc.PlaceOrder(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "user-1", o.UserID)
}

func TestPlaceOrderUnavailableItem(t *testing.T) {
	f := newFixture(t)
	f.menu.rows[0].OutOfStock = true

	_, err := f.uc.PlaceOrder(context.Background(), placeInput())

	assert.ErrorIs(t, err, order.ErrItemUnavailable)
	assert.Nil(t, f.repo.created)
}

func TestPlaceOrderRefundsDebitWhenInsertFails(t *testing.T) {
	f := newFixture(t)
	f.repo.createErr = errors.New("db down")
	input := placeInput()
	input.PointsToRedeem = 50

	_, err := f.uc.PlaceOrder(context.Background(), input)

	require.Error(t, err)
	require.Len(t, f.points.debits, 1)
	require.Len(t, f.points.credits, 1)
	assert.Equal(t, string(model.LoyaltyRefunded), f.points.credits[0].Type)
	assert.Equal(t, 50, f.points.credits[0].Points)
}

func storedOrder(status model.OrderStatus) *model.Order {
	return &model.Order{
		BaseModel: model.BaseModel{
			ID:        "ord-1",
			CreatedAt: time.Date(2026, 3, 14, 11, 59, 0, 0, time.UTC),
		},
		OrderNumber:    "ORD-20260314-chai-point-0001",
		UserID:         "user-1",
		CafeID:         "cafe-1",
		Status:         status,
		PointsEarned:   45,
		PointsRedeemed: 50,
	}
}

func TestAdvanceOrderForbidden(t *testing.T) {
	f := newFixture(t)
	f.repo.stored = storedOrder(model.StatusReceived)
	f.cafes.canManage = false

	_, err := f.uc.AdvanceOrder(context.Background(), &dto.AdvanceOrderInput{OrderID: "ord-1", ActorID: "stranger"})

	assert.ErrorIs(t, err, order.ErrForbidden)
	assert.Zero(t, f.repo.advanceCalls)
}

func TestAdvanceOrderStepsForward(t *testing.T) {
	f := newFixture(t)
	f.repo.stored = storedOrder(model.StatusReceived)

	o, err := f.uc.AdvanceOrder(context.Background(), &dto.AdvanceOrderInput{OrderID: "ord-1", ActorID: "owner-1"})
	require.NoError(t, err)

	assert.Equal(t, model.StatusConfirmed, o.Status)
	assert.Empty(t, f.points.credits, "no points before completion")
	assert.Len(t, f.notifier.userMsgs, 1)
}

func TestAdvanceOrderCompletionCreditsPoints(t *testing.T) {
	f := newFixture(t)
	f.repo.stored = storedOrder(model.StatusOnTheWay)

	o, err := f.uc.AdvanceOrder(context.Background(), &dto.AdvanceOrderInput{OrderID: "ord-1", ActorID: "owner-1"})
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, o.Status)
	require.Len(t, f.points.credits, 1)
	assert.Equal(t, string(model.LoyaltyEarned), f.points.credits[0].Type)
	assert.Equal(t, 45, f.points.credits[0].Points)
}

func TestAdvanceOrderDuplicateCreditIgnored(t *testing.T) {
	f := newFixture(t)
	f.repo.stored = storedOrder(model.StatusOnTheWay)
	f.points.creditErr = loyalty.ErrDuplicateEntry

	o, err := f.uc.AdvanceOrder(context.Background(), &dto.AdvanceOrderInput{OrderID: "ord-1", ActorID: "owner-1"})

	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, o.Status)
}

func TestAdvanceOrderTerminal(t *testing.T) {
	f := newFixture(t)
	stored := storedOrder(model.StatusCompleted)
	stored.PointsCredited = true
	f.repo.stored = stored

	_, err := f.uc.AdvanceOrder(context.Background(), &dto.AdvanceOrderInput{OrderID: "ord-1", ActorID: "owner-1"})

	assert.ErrorIs(t, err, order.ErrTerminalStatus)
}

func TestAdvanceOrderReopensCreditOnLedgerFailure(t *testing.T) {
	f := newFixture(t)
	f.repo.stored = storedOrder(model.StatusOnTheWay)
	f.points.creditErr = errors.New("ledger down")

	o, err := f.uc.AdvanceOrder(context.Background(), &dto.AdvanceOrderInput{OrderID: "ord-1", ActorID: "owner-1"})
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, o.Status)
	assert.Equal(t, []string{"ord-1"}, f.repo.cleared, "credit flag should reopen for a retry")
}

func TestAdvanceOrderRetriesFailedEarnCredit(t *testing.T) {
	f := newFixture(t)
	f.repo.stored = storedOrder(model.StatusCompleted) // points_credited still false

	o, err := f.uc.AdvanceOrder(context.Background(), &dto.AdvanceOrderInput{OrderID: "ord-1", ActorID: "owner-1"})
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, o.Status)
	assert.Equal(t, 1, f.repo.markCalls)
	require.Len(t, f.points.credits, 1)
	assert.Equal(t, string(model.LoyaltyEarned), f.points.credits[0].Type)
	assert.Equal(t, 45, f.points.credits[0].Points)
}

func TestAdvanceOrderRetryLostRace(t *testing.T) {
	f := newFixture(t)
	f.repo.stored = storedOrder(model.StatusCompleted)
	f.repo.markOK = false

	_, err := f.uc.AdvanceOrder(context.Background(), &dto.AdvanceOrderInput{OrderID: "ord-1", ActorID: "owner-1"})

	assert.ErrorIs(t, err, order.ErrConflict)
	assert.Empty(t, f.points.credits)
}

func TestAdvanceOrderLostRace(t *testing.T) {
	f := newFixture(t)
	f.repo.stored = storedOrder(model.StatusReceived)
	f.repo.advanceOK = false

	_, err := f.uc.AdvanceOrder(context.Background(), &dto.AdvanceOrderInput{OrderID: "ord-1", ActorID: "owner-1"})

	assert.ErrorIs(t, err, order.ErrConflict)
}

func TestCancelOrderCustomerInsideWindow(t *testing.T) {
	f := newFixture(t)
	f.repo.stored = storedOrder(model.StatusReceived) // placed 1 minute ago

	o, err := f.uc.CancelOrder(context.Background(), &dto.CancelOrderInput{OrderID: "ord-1", ActorID: "user-1", Reason: "changed my mind"})
	require.NoError(t, err)

	assert.Equal(t, model.StatusCancelled, o.Status)
	require.NotNil(t, o.CancelledBy)
	assert.Equal(t, "customer", *o.CancelledBy)

	require.Len(t, f.points.credits, 1)
	assert.Equal(t, string(model.LoyaltyRefunded), f.points.credits[0].Type)
	assert.Equal(t, 50, f.points.credits[0].Points)

	require.Len(t, f.publisher.events, 1)
	assert.Contains(t, f.publisher.events[0], "OrderCancelled")
}

func TestCancelOrderCustomerWindowClosed(t *testing.T) {
	f := newFixture(t)
	stored := storedOrder(model.StatusConfirmed)
	stored.CreatedAt = time.Date(2026, 3, 14, 11, 50, 0, 0, time.UTC)
	f.repo.stored = stored

	_, err := f.uc.CancelOrder(context.Background(), &dto.CancelOrderInput{OrderID: "ord-1", ActorID: "user-1"})

	assert.ErrorIs(t, err, order.ErrCancelWindowClosed)
	assert.Empty(t, f.points.credits)
}

func TestCancelOrderStaffIgnoresWindow(t *testing.T) {
	f := newFixture(t)
	stored := storedOrder(model.StatusPreparing)
	stored.CreatedAt = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	f.repo.stored = stored

	o, err := f.uc.CancelOrder(context.Background(), &dto.CancelOrderInput{OrderID: "ord-1", ActorID: "owner-1", Reason: "ran out of dosa batter"})
	require.NoError(t, err)

	require.NotNil(t, o.CancelledBy)
	assert.Equal(t, "cafe", *o.CancelledBy)
}

func TestCancelOrderTerminal(t *testing.T) {
	f := newFixture(t)
	f.repo.stored = storedOrder(model.StatusCancelled)

	_, err := f.uc.CancelOrder(context.Background(), &dto.CancelOrderInput{OrderID: "ord-1", ActorID: "user-1"})

	assert.ErrorIs(t, err, order.ErrTerminalStatus)
}

func TestPurgeCafeOrdersOwnerOnly(t *testing.T) {
	f := newFixture(t)
	f.repo.purged = 17

	_, err := f.uc.PurgeCafeOrders(context.Background(), "cafe-1", "staff-9")
	assert.ErrorIs(t, err, order.ErrForbidden)

	purged, err := f.uc.PurgeCafeOrders(context.Background(), "cafe-1", "owner-1")
	require.NoError(t, err)
	assert.Equal(t, int64(17), purged)
}
