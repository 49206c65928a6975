package dto

type CartLine struct {
	MenuItemID string  `json:"menu_item_id"`
	Quantity   int     `json:"quantity"`
	Notes      *string `json:"notes"`
}

type PlaceOrderInput struct {
	// PlacedBy is the authenticated caller, taken from the gateway identity
	// and never from the body.
	PlacedBy string `json:"-"`
	// CustomerID names the scanned customer a counter order is rung up for.
	// Only honoured on the offline channel, and only for cafe staff.
	CustomerID     string     `json:"customer_id"`
	CafeID         string     `json:"cafe_id"`
	Items          []CartLine `json:"items"`
	PaymentMethod  string     `json:"payment_method"`
	DeliveryBlock  *string    `json:"delivery_block"`
	PointsToRedeem int        `json:"points_to_redeem"`
	// Channel distinguishes the staff-entered counter flow from app orders.
	// Anything other than 'offline' is treated as 'online'.
	Channel string `json:"channel"`
}

type OrderFilters struct {
	UserID    string `json:"user_id"`
	CafeID    string `json:"cafe_id"`
	Status    string `json:"status"`
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
}

type AdvanceOrderInput struct {
	OrderID string
	ActorID string
}

type CancelOrderInput struct {
	OrderID string
	ActorID string
	Reason  string
}
