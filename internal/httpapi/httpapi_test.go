package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"supernova.org/internal/auth"
	"supernova.org/internal/cart"
	"supernova.org/internal/ids"
	"supernova.org/internal/images"
	"supernova.org/internal/product"
	"supernova.org/internal/revocation"
	"supernova.org/internal/session"
	"supernova.org/internal/user"
)

// --- in-memory fakes ---

type memUserStore struct {
	mu    sync.Mutex
	users map[string]*user.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*user.User)}
}

func (s *memUserStore) Create(_ context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return user.ErrAlreadyExists
		}
	}
	if u.ID == "" {
		u.ID = ids.New()
	}
	if u.Role == "" {
		u.Role = user.RoleUser
	}
	clone := *u
	s.users[u.ID] = &clone
	return nil
}

func (s *memUserStore) FindByID(_ context.Context, id string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	clone := *u
	clone.PasswordHash = ""
	return &clone, nil
}

func (s *memUserStore) FindByUsernameOrEmail(_ context.Context, username, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			clone := *u
			clone.PasswordHash = ""
			return &clone, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *memUserStore) FindForLogin(_ context.Context, username, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, user.ErrNotFound
}

func (s *memUserStore) UpdateAddresses(_ context.Context, userID string, addrs []user.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return user.ErrNotFound
	}
	u.Addresses = addrs
	return nil
}

type memProductStore struct {
	mu       sync.Mutex
	products map[string]*product.Product
}

func newMemProductStore() *memProductStore {
	return &memProductStore{products: make(map[string]*product.Product)}
}

func (s *memProductStore) Create(_ context.Context, p *product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = ids.New()
	}
	clone := *p
	s.products[p.ID] = &clone
	return nil
}

func (s *memProductStore) FindByID(_ context.Context, id string) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (s *memProductStore) List(_ context.Context, f product.Filter) ([]*product.Product, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*product.Product
	for _, p := range s.products {
		if f.Query != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(f.Query)) &&
			!strings.Contains(strings.ToLower(p.Description), strings.ToLower(f.Query)) {
			continue
		}
		if f.MinPrice != nil && p.Price.Amount < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.Price.Amount > *f.MaxPrice {
			continue
		}
		clone := *p
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	total := len(matched)
	if f.Skip < len(matched) {
		matched = matched[f.Skip:]
	} else {
		matched = nil
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	if matched == nil {
		matched = []*product.Product{}
	}
	return matched, total, nil
}

func (s *memProductStore) ListBySeller(_ context.Context, sellerID string, skip, limit int) ([]*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*product.Product
	for _, p := range s.products {
		if p.SellerID == sellerID {
			clone := *p
			matched = append(matched, &clone)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	if skip < len(matched) {
		matched = matched[skip:]
	} else {
		matched = nil
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	if matched == nil {
		matched = []*product.Product{}
	}
	return matched, nil
}

func (s *memProductStore) Update(_ context.Context, p *product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return product.ErrNotFound
	}
	clone := *p
	s.products[p.ID] = &clone
	return nil
}

func (s *memProductStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return product.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

type memCartStore struct {
	mu    sync.Mutex
	carts map[string]*cart.Cart
}

func newMemCartStore() *memCartStore {
	return &memCartStore{carts: make(map[string]*cart.Cart)}
}

func (s *memCartStore) Find(_ context.Context, userID string) (*cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return nil, cart.ErrNotFound
	}
	clone := *c
	clone.Items = append([]cart.Item{}, c.Items...)
	return &clone, nil
}

func (s *memCartStore) Save(_ context.Context, c *cart.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *c
	clone.Items = append([]cart.Item{}, c.Items...)
	s.carts[c.UserID] = &clone
	return nil
}

type fakeImageStore struct {
	uploads int
}

func (s *fakeImageStore) Put(_ context.Context, reader io.Reader, _ int64, _ string) (images.Upload, error) {
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return images.Upload{}, err
	}
	s.uploads++
	key := "products/" + ids.New()
	url := "http://storage.test/supernova/" + key
	return images.Upload{URL: url, Thumbnail: url, ID: key}, nil
}

// --- test harness ---

type testEnv struct {
	api      *API
	handler  http.Handler
	users    *memUserStore
	products *memProductStore
	carts    *memCartStore
	images   *fakeImageStore
	codec    *auth.Codec
	ledger   *revocation.MemoryLedger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	codec, err := auth.NewCodec("test-secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	env := &testEnv{
		users:    newMemUserStore(),
		products: newMemProductStore(),
		carts:    newMemCartStore(),
		images:   &fakeImageStore{},
		codec:    codec,
		ledger:   revocation.NewMemoryLedger(),
	}
	env.api = New(ReadyProbe{}, "test", Deps{
		Users:      env.users,
		Products:   env.products,
		Carts:      env.carts,
		Images:     env.images,
		Issuer:     session.NewIssuer(codec),
		Verifier:   session.NewVerifier(codec, env.ledger, env.users),
		Terminator: session.NewTerminator(codec, env.ledger),
	})
	env.handler = env.api.Handler()
	return env
}

// do executes one request against the API. A non-empty token rides the
// Authorization header.
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	r := httptest.NewRequest(method, path, reader)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)
	return w.Result()
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return out
}

// register creates an account through the API and returns its session token.
func (e *testEnv) register(t *testing.T, username, email, role string) string {
	t.Helper()
	body := map[string]any{
		"username": username,
		"email":    email,
		"password": "password-1",
		"fullName": map[string]string{"firstName": "Test", "lastName": "User"},
	}
	if role != "" {
		body["role"] = role
	}
	resp := e.do(t, http.MethodPost, "/register", "", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d", username, resp.StatusCode)
	}
	token := sessionCookie(resp)
	if token == "" {
		t.Fatalf("register %s: no session cookie", username)
	}
	resp.Body.Close()
	return token
}

func sessionCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == session.CookieName {
			return c.Value
		}
	}
	return ""
}
