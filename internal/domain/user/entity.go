package user

// Admin record values returned by NewAdmin.
const (
	AdminID    int64 = 0
	AdminName        = "admin"
	AdminEmail       = "admin@example.com"
)

// User represents a user record held by the service.
// Identifiers are unique by convention only; nothing enforces it.
type User struct {
	ID    int64  `json:"id"`              // ID identifies the record
	Name  string `json:"name"`            // Name is the user's name as given
	Email string `json:"email,omitempty"` // Email is the optional contact address; empty means none
}

// HasEmail reports whether the record carries a contact address.
func (u User) HasEmail() bool {
	return u.Email != ""
}

// NewAdmin returns the built-in administrator record.
func NewAdmin() User {
	return User{ID: AdminID, Name: AdminName, Email: AdminEmail}
}
