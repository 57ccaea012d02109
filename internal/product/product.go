package product

import "time"

const DefaultCurrency = "INR"

// Money is a price with its currency.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Image is a stored product image reference.
type Image struct {
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
	ID        string `json:"id"`
}

// Product is a catalog listing owned by a seller.
type Product struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       Money     `json:"price"`
	Images      []Image   `json:"images"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
