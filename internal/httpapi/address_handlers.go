package httpapi

import (
	"net/http"
	"strings"

	"supernova.org/internal/auth"
	"supernova.org/internal/ids"
	"supernova.org/internal/user"
)

type addressRequest struct {
	Street    string `json:"street" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	Country   string `json:"country" validate:"required"`
	Zip       string `json:"zip" validate:"required"`
	IsDefault bool   `json:"isDefault"`
}

func (a *API) handleAddressCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listAddresses(w, r)
	case http.MethodPost:
		a.addAddress(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleAddressResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/users/me/addresses/")
	if id == "" || strings.Contains(id, "/") {
		writeMessage(w, http.StatusNotFound, "Address not found")
		return
	}
	switch r.Method {
	case http.MethodDelete:
		a.deleteAddress(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodDelete)
	}
}

func (a *API) listAddresses(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	addresses := u.Addresses
	if addresses == nil {
		addresses = []user.Address{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"addresses": addresses})
}

func (a *API) addAddress(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req addressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	addr := user.Address{
		ID:        ids.New(),
		Street:    strings.TrimSpace(req.Street),
		City:      strings.TrimSpace(req.City),
		State:     strings.TrimSpace(req.State),
		Country:   strings.TrimSpace(req.Country),
		Zip:       strings.TrimSpace(req.Zip),
		IsDefault: req.IsDefault,
	}

	addresses := append([]user.Address{}, u.Addresses...)
	if addr.IsDefault {
		for i := range addresses {
			addresses[i].IsDefault = false
		}
	}
	addresses = append(addresses, addr)

	if err := a.users.UpdateAddresses(r.Context(), u.ID, addresses); err != nil {
		writeServerError(w)
		return
	}
	u.Addresses = addresses

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Address added successfully",
		"address": addr,
	})
}

func (a *API) deleteAddress(w http.ResponseWriter, r *http.Request, id string) {
	u, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	kept := make([]user.Address, 0, len(u.Addresses))
	found := false
	for _, addr := range u.Addresses {
		if addr.ID == id {
			found = true
			continue
		}
		kept = append(kept, addr)
	}
	if !found {
		writeMessage(w, http.StatusNotFound, "Address not found")
		return
	}

	if err := a.users.UpdateAddresses(r.Context(), u.ID, kept); err != nil {
		writeServerError(w)
		return
	}
	u.Addresses = kept

	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Address removed successfully",
		"addresses": kept,
	})
}
