package dto

type MenuFilters struct {
	CafeID        string `json:"cafe_id"`
	Category      string `json:"category"`
	SearchQuery   string `json:"search_query"`
	Vegetarian    *bool  `json:"vegetarian"`
	AvailableOnly bool   `json:"available_only"`
	SortBy        string `json:"sort_by"`
	SortOrder     string `json:"sort_order"`
	Page          int    `json:"page"`
	PageSize      int    `json:"page_size"`
}

// BulkFilter selects the rows a bulk edit applies to.
type BulkFilter struct {
	CafeID   string
	Scope    string // 'all', 'category', 'veg', 'non_veg'
	Category string // required when Scope == 'category'
}

// OrderLine is the slice of an order the stock listener cares about.
type OrderLine struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}
