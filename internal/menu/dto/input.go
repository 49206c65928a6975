package dto

type CreateMenuItemInput struct {
	CafeID             string
	Name               string
	Description        string
	Category           string
	Price              float64
	ImageURL           string
	Vegetarian         *bool
	DailyStockQuantity *int
}

type UpdateMenuItemInput struct {
	ID                 string
	CafeID             string
	Name               string
	Description        string
	Category           string
	Price              float64
	ImageURL           string
	IsAvailable        bool
	OutOfStock         bool
	Vegetarian         *bool
	DailyStockQuantity *int
}

const (
	PriceModePercentage = "percentage"
	PriceModeFixed      = "fixed"
)

type BulkPriceInput struct {
	Filter BulkFilter
	Mode   string // PriceModePercentage or PriceModeFixed
	Value  float64
}

type BulkAvailabilityInput struct {
	Filter    BulkFilter
	Available bool
}

type AdjustStockInput struct {
	MenuItemID     string
	QuantityChange int
	Reason         string
	ReferenceID    string
	ReferenceType  string // 'sale', 'cancellation', 'manual_adjustment'
	UserID         string
}
