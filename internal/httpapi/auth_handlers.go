package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"supernova.org/internal/audit"
	"supernova.org/internal/auth"
	"supernova.org/internal/session"
	"supernova.org/internal/user"
)

type registerRequest struct {
	Username string          `json:"username" validate:"required,min=3,max=32"`
	Email    string          `json:"email" validate:"required,email"`
	Password string          `json:"password" validate:"required,min=6"`
	FullName fullNameRequest `json:"fullName" validate:"required"`
	Role     string          `json:"role" validate:"omitempty,oneof=user seller"`
}

type fullNameRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"omitempty,min=3"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Cheap duplicate check before the bcrypt work; the unique constraint in
	// the store closes the race.
	if _, err := a.users.FindByUsernameOrEmail(r.Context(), username, email); err == nil {
		writeMessage(w, http.StatusConflict, "User already exists")
		return
	} else if !errors.Is(err, user.ErrNotFound) {
		writeServerError(w)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeServerError(w)
		return
	}

	u := &user.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName: user.FullName{
			FirstName: strings.TrimSpace(req.FullName.FirstName),
			LastName:  strings.TrimSpace(req.FullName.LastName),
		},
		Role: user.Role(req.Role),
	}
	if err := a.users.Create(r.Context(), u); err != nil {
		if errors.Is(err, user.ErrAlreadyExists) {
			writeMessage(w, http.StatusConflict, "User already exists")
			return
		}
		writeServerError(w)
		return
	}

	_, cookie, err := a.issuer.Issue(u)
	if err != nil {
		writeServerError(w)
		return
	}
	http.SetCookie(w, cookie)

	audit.LogEvent(r.Context(), audit.EventRegister, map[string]any{
		"user_id":  u.ID,
		"username": u.Username,
		"role":     string(u.Role),
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    u,
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}
	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" && email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"errors": []fieldError{{Msg: "username or email is required", Path: "username"}},
		})
		return
	}

	// The unknown-account and wrong-password paths answer identically so the
	// response does not confirm which accounts exist.
	u, err := a.users.FindForLogin(r.Context(), username, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			a.loginFailed(w, r, username, email)
			return
		}
		writeServerError(w)
		return
	}
	if err := auth.VerifyPassword(u.PasswordHash, req.Password); err != nil {
		a.loginFailed(w, r, username, email)
		return
	}

	_, cookie, err := a.issuer.Issue(u)
	if err != nil {
		writeServerError(w)
		return
	}
	http.SetCookie(w, cookie)

	audit.LogEvent(r.Context(), audit.EventLogin, map[string]any{
		"user_id": u.ID,
	})

	u.PasswordHash = ""
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"user":    u,
	})
}

func (a *API) loginFailed(w http.ResponseWriter, r *http.Request, username, email string) {
	fields := map[string]any{}
	if username != "" {
		fields["username"] = username
	}
	if email != "" {
		fields["email"] = email
	}
	audit.LogEvent(r.Context(), audit.EventLoginFailed, fields)
	writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
}

func (a *API) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	u, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User details fetched successfully",
		"user":    u,
	})
}

// handleLogout always succeeds: the cookie clear is guaranteed, the revocation
// write is best-effort.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	token, _ := session.ExtractToken(r)
	outcome := a.terminator.Terminate(r.Context(), token)

	http.SetCookie(w, session.ExpiredCookie())

	audit.LogEvent(r.Context(), audit.EventLogout, map[string]any{
		"outcome": string(outcome),
	})

	writeMessage(w, http.StatusOK, "Logout successful")
}
