package user

import "time"

// Role is the coarse authorization level attached to an account.
type Role string

const (
	RoleUser   Role = "user"
	RoleSeller Role = "seller"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	return r == RoleUser || r == RoleSeller
}

// FullName is the structured display name sub-document.
type FullName struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Address is a shipping address owned by a user. At most one address is the
// default.
type Address struct {
	ID        string `json:"id"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Country   string `json:"country"`
	Zip       string `json:"zip"`
	IsDefault bool   `json:"isDefault"`
}

// User is an account record. PasswordHash is excluded from default store reads
// and never serialized.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FullName     FullName  `json:"fullName"`
	Role         Role      `json:"role"`
	Addresses    []Address `json:"addresses,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
