package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"supernova.org/internal/auth"
	"supernova.org/internal/cart"
	"supernova.org/internal/product"
	"supernova.org/internal/user"
)

type addCartItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type setCartQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

func (a *API) handleCart(w http.ResponseWriter, r *http.Request) {
	if !requireRole(w, r, string(user.RoleUser)) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		a.getCart(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet)
	}
}

func (a *API) handleCartResource(w http.ResponseWriter, r *http.Request) {
	if !requireRole(w, r, string(user.RoleUser)) {
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/cart/")
	switch {
	case path == "items":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		a.addCartItem(w, r)
	case strings.HasPrefix(path, "items/"):
		productID := strings.TrimPrefix(path, "items/")
		if productID == "" || strings.Contains(productID, "/") {
			writeMessage(w, http.StatusNotFound, "Item not found")
			return
		}
		switch r.Method {
		case http.MethodPatch:
			a.setCartQuantity(w, r, productID)
		case http.MethodDelete:
			a.removeCartItem(w, r, productID)
		default:
			methodNotAllowed(w, r, http.MethodPatch, http.MethodDelete)
		}
	case path == "clear":
		if r.Method != http.MethodDelete {
			methodNotAllowed(w, r, http.MethodDelete)
			return
		}
		a.clearCart(w, r)
	default:
		writeMessage(w, http.StatusNotFound, "Not found")
	}
}

func (a *API) getCart(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.IdentityFromContext(r.Context())

	c, err := a.carts.Find(r.Context(), u.ID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{"items": []cart.Item{}})
			return
		}
		writeServerError(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": c.Items})
}

func (a *API) addCartItem(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.IdentityFromContext(r.Context())

	var req addCartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	// Reject unknown products up front; a cart line for a deleted product is
	// useless to everyone.
	if _, err := a.products.FindByID(r.Context(), req.ProductID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Product not found")
			return
		}
		writeServerError(w)
		return
	}

	c, err := a.carts.Find(r.Context(), u.ID)
	if err != nil {
		if !errors.Is(err, cart.ErrNotFound) {
			writeServerError(w)
			return
		}
		c = cart.New(u.ID)
	}
	c.AddItem(req.ProductID, req.Quantity)

	if err := a.carts.Save(r.Context(), c); err != nil {
		writeServerError(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Item added to cart",
		"cart":    c,
	})
}

func (a *API) setCartQuantity(w http.ResponseWriter, r *http.Request, productID string) {
	u, _ := auth.IdentityFromContext(r.Context())

	var req setCartQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	c, err := a.carts.Find(r.Context(), u.ID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Cart not found")
			return
		}
		writeServerError(w)
		return
	}
	if !c.SetQuantity(productID, req.Quantity) {
		writeMessage(w, http.StatusNotFound, "Item not found")
		return
	}

	if err := a.carts.Save(r.Context(), c); err != nil {
		writeServerError(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Cart updated",
		"cart":    c,
	})
}

func (a *API) removeCartItem(w http.ResponseWriter, r *http.Request, productID string) {
	u, _ := auth.IdentityFromContext(r.Context())

	c, err := a.carts.Find(r.Context(), u.ID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Cart not found")
			return
		}
		writeServerError(w)
		return
	}

	before := len(c.Items)
	c.RemoveItem(productID)
	if len(c.Items) == before {
		writeMessage(w, http.StatusNotFound, "Item not found")
		return
	}

	if err := a.carts.Save(r.Context(), c); err != nil {
		writeServerError(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Item removed from cart",
		"cart":    c,
	})
}

func (a *API) clearCart(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.IdentityFromContext(r.Context())

	c, err := a.carts.Find(r.Context(), u.ID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Cart not found")
			return
		}
		writeServerError(w)
		return
	}
	c.Clear()

	if err := a.carts.Save(r.Context(), c); err != nil {
		writeServerError(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Cart cleared",
		"cart":    c,
	})
}
