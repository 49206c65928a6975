package model

import "time"

type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    *string   `db:"user_id" json:"user_id"`
	CafeID    *string   `db:"cafe_id" json:"cafe_id"`
	OrderID   *string   `db:"order_id" json:"order_id"`
	Type      string    `db:"type" json:"type"` // 'order_placed', 'order_status', 'order_cancelled'
	Message   string    `db:"message" json:"message"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
