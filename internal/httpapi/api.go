// Package httpapi is the HTTP layer of the storefront service.
package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"supernova.org/internal/cart"
	"supernova.org/internal/images"
	"supernova.org/internal/obs"
	"supernova.org/internal/product"
	"supernova.org/internal/session"
	"supernova.org/internal/user"
)

// ReadyProbe checks backing-store readiness (DB ping).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Deps are the domain services the HTTP layer fronts. Images may be nil; image
// upload is then disabled.
type Deps struct {
	Users      user.Store
	Products   product.Store
	Carts      cart.Store
	Images     images.Store
	Issuer     *session.Issuer
	Verifier   *session.Verifier
	Terminator *session.Terminator
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	users      user.Store
	products   product.Store
	carts      cart.Store
	images     images.Store
	issuer     *session.Issuer
	verifier   *session.Verifier
	terminator *session.Terminator
}

func New(rp ReadyProbe, version string, deps Deps) *API {
	a := &API{
		mux:        http.NewServeMux(),
		readyProbe: rp,
		version:    version,
		users:      deps.Users,
		products:   deps.Products,
		carts:      deps.Carts,
		images:     deps.Images,
		issuer:     deps.Issuer,
		verifier:   deps.Verifier,
		terminator: deps.Terminator,
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// accounts and sessions
	a.mux.HandleFunc("/register", a.handleRegister)
	a.mux.HandleFunc("/login", a.handleLogin)
	a.mux.HandleFunc("/logout", a.handleLogout)
	a.mux.Handle("/me", a.requireSession(http.HandlerFunc(a.handleMe)))

	// address book
	a.mux.Handle("/users/me/addresses", a.requireSession(http.HandlerFunc(a.handleAddressCollection)))
	a.mux.Handle("/users/me/addresses/", a.requireSession(http.HandlerFunc(a.handleAddressResource)))

	// catalog
	a.mux.HandleFunc("/products", a.handleProductCollection)
	a.mux.HandleFunc("/products/", a.handleProductResource)

	// cart
	a.mux.Handle("/cart", a.requireSession(http.HandlerFunc(a.handleCart)))
	a.mux.Handle("/cart/", a.requireSession(http.HandlerFunc(a.handleCartResource)))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler returns the fully wrapped http.Handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = RequestID(h)
	h = Logging(h)
	h = SecurityHeaders(h)
	h = CORS(h)
	return obs.Instrument(h)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "supernova-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "supernova-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}
