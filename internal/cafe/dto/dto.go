package dto

type CafeFilters struct {
	SearchQuery   string
	AcceptingOnly bool
	// OrderBy defaults to rating (highest first).
	OrderBy  string // 'rating', 'name', 'created_at'
	Page     int
	PageSize int
}

type CreateCafeInput struct {
	OwnerID        string
	Name           string
	Slug           string
	Description    string
	Location       string
	ImageURL       string
	WhatsappNumber string
}

type UpdateCafeInput struct {
	ID              string
	Name            string
	Description     string
	Location        string
	ImageURL        string
	WhatsappNumber  string
	WhatsappEnabled bool
}
