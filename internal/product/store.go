package product

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("product: not found")

// Filter narrows a catalog listing. Nil price bounds mean unbounded.
type Filter struct {
	Query    string
	MinPrice *float64
	MaxPrice *float64
	Skip     int
	Limit    int
}

// Store manages catalog records.
type Store interface {
	Create(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	// List returns the filtered page and the total match count.
	List(ctx context.Context, f Filter) ([]*Product, int, error)
	ListBySeller(ctx context.Context, sellerID string, skip, limit int) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}
