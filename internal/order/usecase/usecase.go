package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campusbites/order-service/internal/loyalty"
	ldto "github.com/campusbites/order-service/internal/loyalty/dto"
	"github.com/campusbites/order-service/internal/model"
	"github.com/campusbites/order-service/internal/order"
	"github.com/campusbites/order-service/internal/order/dto"
	"github.com/campusbites/order-service/pkg/logger"
)

// redeemCapRate caps the share of the subtotal that loyalty points can cover.
const redeemCapRate = 0.5

// earnDivisor converts the amount paid into points earned: one point per ten
// currency units, floored.
const earnDivisor = 10.0

// CafeDirectory is the slice of the cafe domain the order flow needs.
type CafeDirectory interface {
	GetCafe(ctx context.Context, id string) (*model.Cafe, error)
	CanManage(ctx context.Context, cafeID, userID string) (bool, error)
}

// MenuCatalog loads the priced menu rows an order snapshots.
type MenuCatalog interface {
	BatchGet(ctx context.Context, cafeID string, ids []string) ([]model.MenuItem, error)
}

// PointsLedger is the loyalty surface used at checkout and completion.
type PointsLedger interface {
	BalanceOf(ctx context.Context, userID string) (int, error)
	TierOf(ctx context.Context, userID string) (model.Tier, error)
	Credit(ctx context.Context, input *ldto.LedgerInput) (*model.LoyaltyTransaction, error)
	Debit(ctx context.Context, input *ldto.LedgerInput) (*model.LoyaltyTransaction, error)
}

type Notifier interface {
	NotifyUser(ctx context.Context, userID string, orderID *string, notifType, message string) error
	NotifyCafe(ctx context.Context, cafeID string, orderID *string, notifType, message string) error
}

// Publisher emits order events onto the broker; the stock listener consumes
// them.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

type orderUseCase struct {
	repo         order.Repository
	cafes        CafeDirectory
	menu         MenuCatalog
	points       PointsLedger
	notifier     Notifier
	publisher    Publisher
	seq          Sequencer
	cancelWindow time.Duration
	logger       logger.ZapLogger
	now          func() time.Time
}

func NewOrderUseCase(
	repo order.Repository,
	cafes CafeDirectory,
	menu MenuCatalog,
	points PointsLedger,
	notifier Notifier,
	publisher Publisher,
	seq Sequencer,
	cancelWindow time.Duration,
	log logger.ZapLogger,
) order.UseCase {
	return &orderUseCase{
		repo:         repo,
		cafes:        cafes,
		menu:         menu,
		points:       points,
		notifier:     notifier,
		publisher:    publisher,
		seq:          seq,
		cancelWindow: cancelWindow,
		logger:       log,
		now:          time.Now,
	}
}

func (uc *orderUseCase) PlaceOrder(ctx context.Context, input *dto.PlaceOrderInput) (*model.Order, error) {
	if len(input.Items) == 0 {
		return nil, order.ErrEmptyCart
	}
	for _, line := range input.Items {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", order.ErrItemUnavailable)
		}
	}

	channel := model.ChannelOnline
	if input.Channel == string(model.ChannelOffline) {
		channel = model.ChannelOffline
	}

	cafe, err := uc.cafes.GetCafe(ctx, input.CafeID)
	if err != nil {
		return nil, err
	}
	if cafe == nil {
		return nil, order.ErrCafeNotFound
	}
	// Counter orders are keyed in by staff standing at the till, so a paused
	// storefront does not block them.
	if !cafe.AcceptingOrders && channel == model.ChannelOnline {
		return nil, order.ErrCafeClosed
	}

	// Online orders always belong to the caller. Counter orders are rung up
	// by staff on behalf of the scanned customer, so the order, its tier
	// discount and the completion earn all bind to that customer.
	customerID := input.PlacedBy
	if channel == model.ChannelOffline {
		allowed, err := uc.cafes.CanManage(ctx, input.CafeID, input.PlacedBy)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, order.ErrForbidden
		}
		if input.CustomerID == "" {
			return nil, order.ErrCustomerRequired
		}
		customerID = input.CustomerID
	}

	items, subtotal, err := uc.buildItems(ctx, input)
	if err != nil {
		return nil, err
	}

	discount, pointsRedeemed, err := uc.resolveDiscount(ctx, customerID, input.PointsToRedeem, channel, subtotal)
	if err != nil {
		return nil, err
	}

	total := round2(subtotal - discount)
	pointsEarned := int(math.Floor(total / earnDivisor))

	now := uc.now()
	o := &model.Order{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrderNumber:    uc.orderNumber(ctx, cafe, customerID, channel, now),
		UserID:         customerID,
		CafeID:         input.CafeID,
		Status:         model.StatusReceived,
		Channel:        channel,
		Subtotal:       subtotal,
		Discount:       discount,
		TotalAmount:    total,
		PaymentMethod:  input.PaymentMethod,
		DeliveryBlock:  input.DeliveryBlock,
		PointsEarned:   pointsEarned,
		PointsRedeemed: pointsRedeemed,
		Items:          items,
	}
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
		o.Items[i].CreatedAt = now
	}

	// Redeemed points are debited before the order row exists; if the insert
	// then fails the debit is compensated with a refund entry.
	if pointsRedeemed > 0 {
		_, err = uc.points.Debit(ctx, &ldto.LedgerInput{
			UserID:      customerID,
			CafeID:      &o.CafeID,
			OrderID:     &o.ID,
			Points:      pointsRedeemed,
			Description: fmt.Sprintf("Redeemed on order %s", o.OrderNumber),
		})
		if err != nil {
			return nil, err
		}
	}

	if err := uc.repo.CreateWithItems(ctx, o); err != nil {
		if pointsRedeemed > 0 {
			uc.refundPoints(ctx, o, "Refund for failed order")
		}
		return nil, err
	}

	uc.publishEvent(ctx, "OrderPlaced", o)
	uc.notifyCafe(ctx, o, "order_placed",
		fmt.Sprintf("New order %s (%d items)", o.OrderNumber, len(o.Items)))

	uc.logger.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("cafe_id", o.CafeID),
		zap.Float64("total", o.TotalAmount))
	return o, nil
}

func (uc *orderUseCase) buildItems(ctx context.Context, input *dto.PlaceOrderInput) ([]model.OrderItem, float64, error) {
	ids := make([]string, 0, len(input.Items))
	for _, line := range input.Items {
		ids = append(ids, line.MenuItemID)
	}

	rows, err := uc.menu.BatchGet(ctx, input.CafeID, ids)
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[string]model.MenuItem, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	items := make([]model.OrderItem, 0, len(input.Items))
	var subtotal float64
	for _, line := range input.Items {
		row, ok := byID[line.MenuItemID]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %s", order.ErrItemUnavailable, line.MenuItemID)
		}
		if !row.IsAvailable || row.OutOfStock {
			return nil, 0, fmt.Errorf("%w: %s", order.ErrItemUnavailable, row.Name)
		}

		lineTotal := round2(row.Price * float64(line.Quantity))
		subtotal += lineTotal
		items = append(items, model.OrderItem{
			ID:           uuid.New().String(),
			MenuItemID:   row.ID,
			Name:         row.Name,
			Quantity:     line.Quantity,
			UnitPrice:    row.Price,
			TotalPrice:   lineTotal,
			Instructions: line.Notes,
		})
	}
	return items, round2(subtotal), nil
}

// resolveDiscount applies either point redemption (app orders) or the tier
// percentage (counter orders scanned at the till). Redemption is clamped to
// the live balance and to half the subtotal; points convert one-to-one into
// currency.
func (uc *orderUseCase) resolveDiscount(ctx context.Context, customerID string, pointsToRedeem int, channel model.OrderChannel, subtotal float64) (float64, int, error) {
	if channel == model.ChannelOffline {
		tier, err := uc.points.TierOf(ctx, customerID)
		if err != nil {
			return 0, 0, err
		}
		return round2(subtotal * float64(tier.DiscountPercent) / 100), 0, nil
	}

	if pointsToRedeem <= 0 {
		return 0, 0, nil
	}

	balance, err := uc.points.BalanceOf(ctx, customerID)
	if err != nil {
		return 0, 0, err
	}

	redeem := pointsToRedeem
	if balance < redeem {
		redeem = balance
	}
	if limit := int(math.Floor(subtotal * redeemCapRate)); limit < redeem {
		redeem = limit
	}
	if redeem <= 0 {
		return 0, 0, nil
	}
	return float64(redeem), redeem, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 || filters.PageSize > 100 {
		filters.PageSize = 20
	}
	return uc.repo.FindAll(ctx, filters)
}

func (uc *orderUseCase) AdvanceOrder(ctx context.Context, input *dto.AdvanceOrderInput) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, order.ErrOrderNotFound
	}

	allowed, err := uc.cafes.CanManage(ctx, o.CafeID, input.ActorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, order.ErrForbidden
	}

	next, ok := model.NextStatus(o.Status)
	if !ok {
		// A completed order whose earn credit failed keeps points_credited
		// false; advancing it again retries just the credit.
		if o.Status == model.StatusCompleted && !o.PointsCredited && o.PointsEarned > 0 {
			return uc.retryEarnCredit(ctx, o)
		}
		return nil, order.ErrTerminalStatus
	}

	now := uc.now()
	moved, err := uc.repo.Advance(ctx, o.ID, o.Status, next, now)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, order.ErrConflict
	}

	if next == model.StatusCompleted && o.PointsEarned > 0 {
		uc.creditEarnedPoints(ctx, o)
	}

	uc.notifyUser(ctx, o, "order_status",
		fmt.Sprintf("Order %s is now %s", o.OrderNumber, next))

	o.Status = next
	o.UpdatedAt = now
	return o, nil
}

// creditEarnedPoints runs after the guarded completed transition, which fires
// at most once per order. The ledger's own uniqueness backs that up, so a
// duplicate entry is ignored rather than treated as a failure.
func (uc *orderUseCase) creditEarnedPoints(ctx context.Context, o *model.Order) {
	_, err := uc.points.Credit(ctx, &ldto.LedgerInput{
		UserID:      o.UserID,
		CafeID:      &o.CafeID,
		OrderID:     &o.ID,
		Type:        string(model.LoyaltyEarned),
		Points:      o.PointsEarned,
		Description: fmt.Sprintf("Earned on order %s", o.OrderNumber),
	})
	if err == nil || errors.Is(err, loyalty.ErrDuplicateEntry) {
		return
	}

	uc.logger.Error("failed to credit earned points",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("user_id", o.UserID),
		zap.Int("points", o.PointsEarned),
		zap.Error(err))
	// Reopen the credit so the next advance call retries it; the ledger's
	// (order_id, type) uniqueness still keeps it exactly-once.
	if rerr := uc.repo.ClearPointsCredited(ctx, o.ID); rerr != nil {
		uc.logger.Error("failed to reopen earn credit",
			zap.String("order_id", o.ID), zap.Error(rerr))
	}
}

// retryEarnCredit re-fires a completion credit that failed earlier, guarded
// by the same points_credited flip so parallel retries collapse to one.
func (uc *orderUseCase) retryEarnCredit(ctx context.Context, o *model.Order) (*model.Order, error) {
	flipped, err := uc.repo.MarkPointsCredited(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if !flipped {
		return nil, order.ErrConflict
	}
	uc.creditEarnedPoints(ctx, o)
	return o, nil
}

func (uc *orderUseCase) CancelOrder(ctx context.Context, input *dto.CancelOrderInput) (*model.Order, error) {
	o, err := uc.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, order.ErrOrderNotFound
	}
	if o.Status.Terminal() {
		return nil, order.ErrTerminalStatus
	}

	now := uc.now()
	cancelledBy := "customer"
	if input.ActorID == o.UserID {
		if now.Sub(o.CreatedAt) > uc.cancelWindow {
			return nil, order.ErrCancelWindowClosed
		}
	} else {
		allowed, err := uc.cafes.CanManage(ctx, o.CafeID, input.ActorID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, order.ErrForbidden
		}
		cancelledBy = "cafe"
	}

	cancelled, err := uc.repo.Cancel(ctx, o.ID, cancelledBy, input.Reason, now)
	if err != nil {
		return nil, err
	}
	if !cancelled {
		return nil, order.ErrConflict
	}

	if o.PointsRedeemed > 0 {
		uc.refundPoints(ctx, o, fmt.Sprintf("Refund for cancelled order %s", o.OrderNumber))
	}

	uc.publishEvent(ctx, "OrderCancelled", o)
	uc.notifyUser(ctx, o, "order_cancelled",
		fmt.Sprintf("Order %s was cancelled", o.OrderNumber))
	if cancelledBy == "customer" {
		uc.notifyCafe(ctx, o, "order_cancelled",
			fmt.Sprintf("Order %s was cancelled by the customer", o.OrderNumber))
	}

	o.Status = model.StatusCancelled
	o.CancelledAt = &now
	o.CancelledBy = &cancelledBy
	o.UpdatedAt = now
	return o, nil
}

func (uc *orderUseCase) refundPoints(ctx context.Context, o *model.Order, description string) {
	_, err := uc.points.Credit(ctx, &ldto.LedgerInput{
		UserID:      o.UserID,
		CafeID:      &o.CafeID,
		OrderID:     &o.ID,
		Type:        string(model.LoyaltyRefunded),
		Points:      o.PointsRedeemed,
		Description: description,
	})
	if err != nil && !errors.Is(err, loyalty.ErrDuplicateEntry) {
		uc.logger.Error("failed to refund redeemed points",
			zap.String("order_id", o.ID), zap.Error(err))
	}
}

func (uc *orderUseCase) PurgeCafeOrders(ctx context.Context, cafeID, actorID string) (int64, error) {
	cafe, err := uc.cafes.GetCafe(ctx, cafeID)
	if err != nil {
		return 0, err
	}
	if cafe == nil {
		return 0, order.ErrCafeNotFound
	}
	if cafe.OwnerID != actorID {
		return 0, order.ErrForbidden
	}

	purged, err := uc.repo.PurgeByCafe(ctx, cafeID)
	if err != nil {
		return 0, err
	}
	uc.logger.Warn("purged cafe order history",
		zap.String("cafe_id", cafeID),
		zap.String("actor_id", actorID),
		zap.Int64("orders", purged))
	return purged, nil
}

type orderEvent struct {
	EventID   string            `json:"event_id"`
	EventType string            `json:"event_type"`
	Payload   orderEventPayload `json:"payload"`
	Timestamp time.Time         `json:"timestamp"`
}

type orderEventPayload struct {
	ID     string           `json:"id"`
	CafeID string           `json:"cafe_id"`
	UserID string           `json:"user_id"`
	Items  []orderEventLine `json:"items"`
}

type orderEventLine struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

// publishEvent is best effort. Stock sync drifting is recoverable through a
// manual adjustment; a lost order is not, so publish failures never fail the
// request.
func (uc *orderUseCase) publishEvent(ctx context.Context, eventType string, o *model.Order) {
	lines := make([]orderEventLine, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, orderEventLine{MenuItemID: item.MenuItemID, Quantity: item.Quantity})
	}
	event := orderEvent{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Payload: orderEventPayload{
			ID:     o.ID,
			CafeID: o.CafeID,
			UserID: o.UserID,
			Items:  lines,
		},
		Timestamp: uc.now(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		uc.logger.Error("failed to marshal order event", zap.Error(err))
		return
	}
	if err := uc.publisher.Publish(ctx, []byte(o.CafeID), value); err != nil {
		uc.logger.Error("failed to publish order event",
			zap.String("event_type", eventType),
			zap.String("order_id", o.ID),
			zap.Error(err))
	}
}

func (uc *orderUseCase) notifyUser(ctx context.Context, o *model.Order, notifType, message string) {
	if err := uc.notifier.NotifyUser(ctx, o.UserID, &o.ID, notifType, message); err != nil {
		uc.logger.Error("failed to notify user", zap.String("order_id", o.ID), zap.Error(err))
	}
}

func (uc *orderUseCase) notifyCafe(ctx context.Context, o *model.Order, notifType, message string) {
	if err := uc.notifier.NotifyCafe(ctx, o.CafeID, &o.ID, notifType, message); err != nil {
		uc.logger.Error("failed to notify cafe", zap.String("order_id", o.ID), zap.Error(err))
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
