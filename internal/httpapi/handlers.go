// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/accountd/accountd/internal/account"
	"github.com/accountd/accountd/internal/observability"
	"github.com/accountd/accountd/pkg/errutil"
)

// Registrar is the account capability the signup endpoint needs.
type Registrar interface {
	Register(ctx context.Context, reg account.Registration) (*account.User, error)
}

// Sessions is the session capability the token and me endpoints need.
type Sessions interface {
	Login(ctx context.Context, username, password string) (*account.Token, error)
	ResolveCurrentUser(ctx context.Context, token string) (*account.User, error)
	RequireActive(user *account.User) (*account.User, error)
}

// Handler implements the account API endpoints.
type Handler struct {
	registrar Registrar
	sessions  Sessions
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewHandler creates a Handler. metrics may be nil when the observability
// server is disabled.
func NewHandler(registrar Registrar, sessions Sessions, metrics *observability.Metrics, logger *slog.Logger) (*Handler, error) {
	if registrar == nil {
		return nil, oops.Errorf("registrar is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("sessions is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{registrar: registrar, sessions: sessions, metrics: metrics, logger: logger}, nil
}

type signUpRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Disabled bool   `json:"disabled"`
}

type userResponse struct {
	ID               int64     `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Surname          string    `json:"surname"`
	Disabled         bool      `json:"disabled"`
	CreatedBy        string    `json:"created_by"`
	CreatedDate      time.Time `json:"created_date"`
	LastModifiedBy   string    `json:"last_modified_by"`
	LastModifiedDate time.Time `json:"last_modified_date"`
}

// newUserResponse strips the password hash from the outward representation.
func newUserResponse(u *account.User) userResponse {
	return userResponse{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		Name:             u.Name,
		Surname:          u.Surname,
		Disabled:         u.Disabled,
		CreatedBy:        u.CreatedBy,
		CreatedDate:      u.CreatedDate,
		LastModifiedBy:   u.LastModifiedBy,
		LastModifiedDate: u.LastModifiedDate,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// SignUp handles POST /signup.
func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.countRegistration("invalid_argument")
		h.writeError(w, r, oops.Code(account.CodeInvalidArgument).Errorf("invalid request body"))
		return
	}

	user, err := h.registrar.Register(r.Context(), account.Registration{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Name:     req.Name,
		Surname:  req.Surname,
		Disabled: req.Disabled,
	})
	if err != nil {
		h.countRegistration(outcomeFor(err))
		h.writeError(w, r, err)
		return
	}

	h.countRegistration("success")
	h.writeJSON(w, r, http.StatusOK, newUserResponse(user))
}

// Token handles POST /token. Credentials arrive form-encoded.
func (h *Handler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.countLogin("invalid_argument")
		h.writeError(w, r, oops.Code(account.CodeInvalidArgument).Errorf("invalid form body"))
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		h.countLogin("invalid_argument")
		h.writeError(w, r, oops.Code(account.CodeInvalidArgument).Errorf("username and password are required"))
		return
	}

	token, err := h.sessions.Login(r.Context(), username, password)
	if err != nil {
		h.countLogin(outcomeFor(err))
		h.writeError(w, r, err)
		return
	}

	h.countLogin("success")
	h.writeJSON(w, r, http.StatusOK, tokenResponse{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
	})
}

// Me handles GET /me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	tokenString, ok := bearerToken(r)
	if !ok {
		h.countResolution("bad_credentials")
		h.writeError(w, r, oops.Code(account.CodeBadCredentials).Errorf("bad credentials"))
		return
	}

	user, err := h.sessions.ResolveCurrentUser(r.Context(), tokenString)
	if err == nil {
		user, err = h.sessions.RequireActive(user)
	}
	if err != nil {
		h.countResolution(outcomeFor(err))
		h.writeError(w, r, err)
		return
	}

	h.countResolution("success")
	h.writeJSON(w, r, http.StatusOK, newUserResponse(user))
}

// bearerToken extracts the credential from the Authorization header. The
// scheme comparison is case-insensitive.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", false
	}
	return token, true
}

type errorResponse struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// statusFor maps domain error codes onto HTTP statuses.
func statusFor(code string) int {
	switch code {
	case account.CodeInvalidArgument, account.CodeInactiveUser:
		return http.StatusBadRequest
	case account.CodeBadCredentials, account.CodeInvalidToken:
		return http.StatusUnauthorized
	case account.CodeNotFound:
		return http.StatusNotFound
	case account.CodeDuplicate:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// outcomeFor labels an error for metrics.
func outcomeFor(err error) string {
	switch code := account.ErrorCode(err); code {
	case account.CodeInvalidArgument:
		return "invalid_argument"
	case account.CodeDuplicate:
		return "duplicate"
	case account.CodeBadCredentials, account.CodeInvalidToken:
		return "bad_credentials"
	case account.CodeInactiveUser:
		return "inactive_user"
	case account.CodeNotFound:
		return "not_found"
	default:
		return "error"
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := account.ErrorCode(err)
	status := statusFor(code)

	detail := err.Error()
	if status == http.StatusInternalServerError {
		// Backend details stay in the logs.
		errutil.LogError(h.logger, "request failed", err)
		code = account.CodeInternal
		detail = "internal error"
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}

	h.writeJSON(w, r, status, errorResponse{Code: code, Detail: detail})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.ErrorContext(r.Context(), "response encoding failed", "error", err)
	}
}

func (h *Handler) countRegistration(outcome string) {
	if h.metrics != nil {
		h.metrics.RegistrationsTotal.WithLabelValues(outcome).Inc()
	}
}

func (h *Handler) countLogin(outcome string) {
	if h.metrics != nil {
		h.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}

func (h *Handler) countResolution(outcome string) {
	if h.metrics != nil {
		h.metrics.TokenResolutionsTotal.WithLabelValues(outcome).Inc()
	}
}
