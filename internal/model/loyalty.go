package model

import "time"

type LoyaltyTransactionType string

const (
	LoyaltyEarned   LoyaltyTransactionType = "earned"
	LoyaltyRedeemed LoyaltyTransactionType = "redeemed"
	LoyaltyRefunded LoyaltyTransactionType = "refunded"
)

// LoyaltyTransaction is one row of the append-only points ledger. The cached
// balance on the profile is only ever written in the same transaction as a
// ledger row, so the ledger stays the source of truth.
type LoyaltyTransaction struct {
	ID           string                 `db:"id" json:"id"`
	UserID       string                 `db:"user_id" json:"user_id"`
	CafeID       *string                `db:"cafe_id" json:"cafe_id"` // nil for campus-wide entries
	OrderID      *string                `db:"order_id" json:"order_id"`
	Type         LoyaltyTransactionType `db:"type" json:"type"`
	PointsChange int                    `db:"points_change" json:"points_change"`
	PointsBefore int                    `db:"points_before" json:"points_before"`
	PointsAfter  int                    `db:"points_after" json:"points_after"`
	Description  string                 `db:"description" json:"description"`
	CreatedAt    time.Time              `db:"created_at" json:"created_at"`
}

type Tier struct {
	Name            string `json:"name"`
	MinPoints       int    `json:"min_points"`
	DiscountPercent int    `json:"discount_percent"`
}

// The single canonical tier table. Every caller, the offline scanner flow
// included, resolves tiers through TierFor.
var tiers = []Tier{
	{Name: "Bronze", MinPoints: 0, DiscountPercent: 5},
	{Name: "Silver", MinPoints: 200, DiscountPercent: 10},
	{Name: "Gold", MinPoints: 500, DiscountPercent: 15},
	{Name: "Diamond", MinPoints: 1000, DiscountPercent: 20},
}

func TierFor(points int) Tier {
	current := tiers[0]
	for _, t := range tiers {
		if points >= t.MinPoints {
			current = t
		}
	}
	return current
}

func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}
