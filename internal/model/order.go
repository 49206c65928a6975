package model

import "time"

type OrderStatus string

const (
	StatusReceived  OrderStatus = "received"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusOnTheWay  OrderStatus = "on_the_way"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

// NextStatus returns the single forward transition from s. The second return
// is false for terminal or unknown states. Cancellation is a separate path
// and never appears here.
func NextStatus(s OrderStatus) (OrderStatus, bool) {
	switch s {
	case StatusReceived:
		return StatusConfirmed, true
	case StatusConfirmed:
		return StatusPreparing, true
	case StatusPreparing:
		return StatusOnTheWay, true
	case StatusOnTheWay:
		return StatusCompleted, true
	}
	return "", false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type OrderChannel string

const (
	ChannelOnline  OrderChannel = "online"
	ChannelOffline OrderChannel = "offline" // staff-entered via the QR scanner flow
)

type Order struct {
	BaseModel
	OrderNumber    string       `db:"order_number" json:"order_number"`
	UserID         string       `db:"user_id" json:"user_id"`
	CafeID         string       `db:"cafe_id" json:"cafe_id"`
	Status         OrderStatus  `db:"status" json:"status"`
	Channel        OrderChannel `db:"channel" json:"channel"`
	Subtotal       float64      `db:"subtotal" json:"subtotal"`
	Discount       float64      `db:"discount" json:"discount"`
	TotalAmount    float64      `db:"total_amount" json:"total_amount"`
	PaymentMethod  string       `db:"payment_method" json:"payment_method"`
	DeliveryBlock  *string      `db:"delivery_block" json:"delivery_block"`
	PointsEarned   int          `db:"points_earned" json:"points_earned"`
	PointsRedeemed int          `db:"points_redeemed" json:"points_redeemed"`
	PointsCredited bool         `db:"points_credited" json:"points_credited"`

	AcceptedAt       *time.Time `db:"accepted_at" json:"accepted_at"`
	PreparingAt      *time.Time `db:"preparing_at" json:"preparing_at"`
	OutForDeliveryAt *time.Time `db:"out_for_delivery_at" json:"out_for_delivery_at"`
	CompletedAt      *time.Time `db:"completed_at" json:"completed_at"`
	CancelledAt      *time.Time `db:"cancelled_at" json:"cancelled_at"`
	CancelledBy      *string    `db:"cancelled_by" json:"cancelled_by"`
	CancelReason     *string    `db:"cancel_reason" json:"cancel_reason"`

	Items []OrderItem `db:"-" json:"items"`
}

type OrderItem struct {
	ID         string  `db:"id" json:"id"`
	OrderID    string  `db:"order_id" json:"order_id"`
	MenuItemID string  `db:"menu_item_id" json:"menu_item_id"`
	// Name is snapshotted at placement so later menu edits do not rewrite
	// order history.
	Name         string    `db:"name" json:"name"`
	Quantity     int       `db:"quantity" json:"quantity"`
	UnitPrice    float64   `db:"unit_price" json:"unit_price"`
	TotalPrice   float64   `db:"total_price" json:"total_price"`
	Instructions *string   `db:"instructions" json:"instructions"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
