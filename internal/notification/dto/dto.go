package dto

type NotificationFilters struct {
	UserID     string
	CafeID     string
	UnreadOnly bool
	Page       int
	PageSize   int
}
