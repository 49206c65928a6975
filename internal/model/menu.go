package model

import "time"

type MenuItem struct {
	BaseModel
	CafeID      string  `db:"cafe_id" json:"cafe_id"`
	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description"`
	Category    string  `db:"category" json:"category"`
	Price       float64 `db:"price" json:"price"`
	ImageURL    *string `db:"image_url" json:"image_url"`
	IsAvailable bool    `db:"is_available" json:"is_available"`
	OutOfStock  bool    `db:"out_of_stock" json:"out_of_stock"`
	// Vegetarian is a tri-state: true, false, or nil for "not set".
	Vegetarian *bool `db:"vegetarian" json:"vegetarian"`
	// Nil stock quantities mean the item is not stock-tracked.
	DailyStockQuantity   *int `db:"daily_stock_quantity" json:"daily_stock_quantity"`
	CurrentStockQuantity *int `db:"current_stock_quantity" json:"current_stock_quantity"`
}

// Oversold reports whether tracked stock has gone negative. Negative stock is
// tolerated and surfaced rather than prevented.
func (m *MenuItem) Oversold() bool {
	return m.CurrentStockQuantity != nil && *m.CurrentStockQuantity < 0
}

type StockMovement struct {
	ID             string    `db:"id" json:"id"`
	CafeID         string    `db:"cafe_id" json:"cafe_id"`
	MenuItemID     string    `db:"menu_item_id" json:"menu_item_id"`
	QuantityChange int       `db:"quantity_change" json:"quantity_change"`
	QuantityBefore int       `db:"quantity_before" json:"quantity_before"`
	QuantityAfter  int       `db:"quantity_after" json:"quantity_after"`
	ReferenceType  *string   `db:"reference_type" json:"reference_type"` // 'sale', 'cancellation', 'manual_adjustment', 'daily_reset'
	ReferenceID    *string   `db:"reference_id" json:"reference_id"`
	Notes          string    `db:"notes" json:"notes"`
	CreatedBy      *string   `db:"created_by" json:"created_by"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
