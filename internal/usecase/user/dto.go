package user

import domain "user-fixture-service/internal/domain/user"

// AddUserRequest represents the request payload for appending a user record.
// ID is caller-chosen; duplicates are accepted.
type AddUserRequest struct {
	ID    int64  `validate:"gte=0"`
	Name  string `validate:"required,max=100"`
	Email string `validate:"omitempty,address"`
}

// AddUserResponse represents the response payload after appending a user.
type AddUserResponse struct {
	ID int64
}

// FetchUserRequest represents the request payload for looking up a user.
type FetchUserRequest struct {
	ID int64
}

// FetchUserResponse represents the first stored record with the requested ID.
type FetchUserResponse struct {
	ID          int64
	Name        string
	Email       string
	DisplayName string
}

// ListUsersRequest represents the request payload for listing users.
// Query filters by name or email fragment.
type ListUsersRequest struct {
	Query string
	Page  int64
	Limit int64
}

// ListUsersResponse represents the response payload for user listing.
type ListUsersResponse struct {
	Users      []User
	Pagination *domain.Pagination
}

// User represents a user DTO for API responses.
type User struct {
	ID    int64
	Name  string
	Email string
}

// ValidateEmailRequest carries the address to check.
type ValidateEmailRequest struct {
	Address string
}

// ValidateEmailResponse reports whether the address is well formed.
type ValidateEmailResponse struct {
	Address string
	Valid   bool
}

// FormatNameRequest carries the name parts to format.
type FormatNameRequest struct {
	First string
	Last  string
}

// FormatNameResponse carries the formatted full name.
type FormatNameResponse struct {
	FullName string
}

// LoadConfigResponse carries the loaded settings.
type LoadConfigResponse struct {
	Settings map[string]any
}
