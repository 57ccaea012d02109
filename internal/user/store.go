package user

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("user: not found")
	ErrAlreadyExists = errors.New("user: already exists")
)

// Store manages account records. Reads exclude the password hash unless the
// method says otherwise.
type Store interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*User, error)
	// FindForLogin matches by username or email and includes the password
	// hash. Only the login path may call it.
	FindForLogin(ctx context.Context, username, email string) (*User, error)
	UpdateAddresses(ctx context.Context, userID string, addresses []Address) error
}
