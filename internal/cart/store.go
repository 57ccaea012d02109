package cart

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("cart: not found")

// Store persists carts keyed by user.
type Store interface {
	Find(ctx context.Context, userID string) (*Cart, error)
	// Save upserts the cart; concurrent saves for the same user converge
	// on the last write.
	Save(ctx context.Context, c *Cart) error
}
