package model

import "time"

type Cafe struct {
	BaseModel
	OwnerID         string  `db:"owner_id" json:"owner_id"`
	Name            string  `db:"name" json:"name"`
	Slug            string  `db:"slug" json:"slug"`
	Description     *string `db:"description" json:"description"`
	Location        *string `db:"location" json:"location"`
	ImageURL        *string `db:"image_url" json:"image_url"`
	AcceptingOrders bool    `db:"accepting_orders" json:"accepting_orders"`
	WhatsappNumber  *string `db:"whatsapp_number" json:"whatsapp_number"`
	WhatsappEnabled bool    `db:"whatsapp_enabled" json:"whatsapp_enabled"`
	AverageRating   float64 `db:"average_rating" json:"average_rating"`
	TotalRatings    int     `db:"total_ratings" json:"total_ratings"`
}

type CafeStaff struct {
	ID        string    `db:"id" json:"id"`
	CafeID    string    `db:"cafe_id" json:"cafe_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Role      string    `db:"role" json:"role"` // owner | staff
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
