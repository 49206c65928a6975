package dto

type EnsureProfileInput struct {
	UserID   string
	FullName string
	Email    string
	UserType string
}

type UpdateProfileInput struct {
	UserID   string
	FullName string
	Phone    string
	Block    string
}
