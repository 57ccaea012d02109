package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"supernova.org/internal/audit"
	"supernova.org/internal/auth"
	"supernova.org/internal/ids"
	"supernova.org/internal/product"
	"supernova.org/internal/user"
)

const (
	defaultPageSize = 10
	maxPageSize     = 20
	maxImages       = 5
	maxUploadBytes  = 32 << 20
)

type updateProductRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description"`
	PriceAmount *float64 `json:"priceAmount" validate:"omitempty,gt=0"`
	Currency    *string  `json:"priceCurrency" validate:"omitempty,len=3"`
}

func (a *API) handleProductCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listProducts(w, r)
	case http.MethodPost:
		r, ok := a.authenticate(w, r)
		if !ok {
			return
		}
		if !requireRole(w, r, string(user.RoleSeller)) {
			return
		}
		a.createProduct(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleProductResource(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/products/")
	if path == "" || strings.Contains(path, "/") {
		writeMessage(w, http.StatusNotFound, "Product not found")
		return
	}

	if path == "seller" {
		r, ok := a.authenticate(w, r)
		if !ok {
			return
		}
		if !requireRole(w, r, string(user.RoleSeller)) {
			return
		}
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		a.listSellerProducts(w, r)
		return
	}

	if !ids.Valid(path) {
		writeMessage(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getProduct(w, r, path)
	case http.MethodPatch:
		r, ok := a.authenticate(w, r)
		if !ok {
			return
		}
		a.updateProduct(w, r, path)
	case http.MethodDelete:
		r, ok := a.authenticate(w, r)
		if !ok {
			return
		}
		a.deleteProduct(w, r, path)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

func (a *API) createProduct(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.IdentityFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"errors": []fieldError{{Msg: "title is required", Path: "title"}},
		})
		return
	}
	amount, err := strconv.ParseFloat(r.FormValue("priceAmount"), 64)
	if err != nil || amount <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"errors": []fieldError{{Msg: "priceAmount must be a positive number", Path: "priceAmount"}},
		})
		return
	}
	currency := strings.ToUpper(strings.TrimSpace(r.FormValue("priceCurrency")))
	if currency == "" {
		currency = product.DefaultCurrency
	}

	files := r.MultipartForm.File["images"]
	if len(files) > maxImages {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"errors": []fieldError{{Msg: "at most 5 images are allowed", Path: "images"}},
		})
		return
	}
	if len(files) > 0 && a.images == nil {
		writeMessage(w, http.StatusServiceUnavailable, "Image storage is not configured")
		return
	}

	stored := []product.Image{}
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeServerError(w)
			return
		}
		up, err := a.images.Put(r.Context(), f, fh.Size, fh.Header.Get("Content-Type"))
		f.Close()
		if err != nil {
			writeServerError(w)
			return
		}
		stored = append(stored, product.Image{URL: up.URL, Thumbnail: up.Thumbnail, ID: up.ID})
	}

	p := &product.Product{
		SellerID:    u.ID,
		Title:       title,
		Description: strings.TrimSpace(r.FormValue("description")),
		Price:       product.Money{Amount: amount, Currency: currency},
		Images:      stored,
	}
	if err := a.products.Create(r.Context(), p); err != nil {
		writeServerError(w)
		return
	}

	audit.LogEvent(r.Context(), audit.EventProductCreate, map[string]any{
		"product_id": p.ID,
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Product created successfully",
		"product": p,
	})
}

func (a *API) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := product.Filter{
		Query: strings.TrimSpace(q.Get("q")),
		Skip:  parseIntDefault(q.Get("skip"), 0),
		Limit: clampLimit(parseIntDefault(q.Get("limit"), defaultPageSize)),
	}
	if v, err := strconv.ParseFloat(q.Get("minPrice"), 64); err == nil {
		f.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(q.Get("maxPrice"), 64); err == nil {
		f.MaxPrice = &v
	}

	products, total, err := a.products.List(r.Context(), f)
	if err != nil {
		writeServerError(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Products fetched successfully",
		"products": products,
		"total":    total,
	})
}

func (a *API) listSellerProducts(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.IdentityFromContext(r.Context())
	q := r.URL.Query()
	skip := parseIntDefault(q.Get("skip"), 0)
	limit := clampLimit(parseIntDefault(q.Get("limit"), defaultPageSize))

	products, err := a.products.ListBySeller(r.Context(), u.ID, skip, limit)
	if err != nil {
		writeServerError(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Products fetched successfully",
		"products": products,
	})
}

func (a *API) getProduct(w http.ResponseWriter, r *http.Request, id string) {
	p, err := a.products.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Product not found")
			return
		}
		writeServerError(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Product fetched successfully",
		"product": p,
	})
}

func (a *API) updateProduct(w http.ResponseWriter, r *http.Request, id string) {
	u, _ := auth.IdentityFromContext(r.Context())

	p, err := a.products.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Product not found")
			return
		}
		writeServerError(w)
		return
	}
	if p.SellerID != u.ID {
		writeMessage(w, http.StatusForbidden, "Forbidden")
		return
	}

	var req updateProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	if req.Title != nil {
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
	}
	if req.PriceAmount != nil {
		p.Price.Amount = *req.PriceAmount
	}
	if req.Currency != nil {
		p.Price.Currency = strings.ToUpper(*req.Currency)
	}

	if err := a.products.Update(r.Context(), p); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Product not found")
			return
		}
		writeServerError(w)
		return
	}

	audit.LogEvent(r.Context(), audit.EventProductUpdate, map[string]any{
		"product_id": p.ID,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Product updated successfully",
		"product": p,
	})
}

func (a *API) deleteProduct(w http.ResponseWriter, r *http.Request, id string) {
	u, _ := auth.IdentityFromContext(r.Context())

	p, err := a.products.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Product not found")
			return
		}
		writeServerError(w)
		return
	}
	if p.SellerID != u.ID {
		writeMessage(w, http.StatusForbidden, "Forbidden")
		return
	}

	if err := a.products.Delete(r.Context(), id); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Product not found")
			return
		}
		writeServerError(w)
		return
	}

	audit.LogEvent(r.Context(), audit.EventProductDelete, map[string]any{
		"product_id": id,
	})

	writeMessage(w, http.StatusOK, "Product deleted successfully")
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func clampLimit(n int) int {
	if n <= 0 {
		return defaultPageSize
	}
	if n > maxPageSize {
		return maxPageSize
	}
	return n
}
