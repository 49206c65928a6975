package model

const (
	UserTypeStudent   = "student"
	UserTypeCafeOwner = "cafe_owner"
	UserTypeCafeStaff = "cafe_staff"
)

type Profile struct {
	BaseModel
	FullName      string  `db:"full_name" json:"full_name"`
	Email         string  `db:"email" json:"email"`
	Phone         *string `db:"phone" json:"phone"`
	Block         *string `db:"block" json:"block"`
	UserType      string  `db:"user_type" json:"user_type"`
	LoyaltyPoints int     `db:"loyalty_points" json:"loyalty_points"`
	TotalOrders   int     `db:"total_orders" json:"total_orders"`
	TotalSpent    float64 `db:"total_spent" json:"total_spent"`
}
