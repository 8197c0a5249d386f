package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/KazimFedxD/FinCore/internal/account"
	"github.com/KazimFedxD/FinCore/internal/service"
	"github.com/KazimFedxD/FinCore/internal/session"
	"github.com/KazimFedxD/FinCore/internal/verification"
	"github.com/KazimFedxD/FinCore/pkg/validator"
)

// CookieConfig controls how session cookies are issued.
type CookieConfig struct {
	// Secure is set on cookies outside development so they only travel
	// over TLS.
	Secure        bool
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
}

// AuthHandler handles HTTP requests for auth endpoints.
type AuthHandler struct {
	service *service.AuthService
	cookies CookieConfig
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc *service.AuthService, cookies CookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, cookies: cookies, logger: logger}
}

// --- Request DTOs ---

// RegisterRequest is the JSON request body for account registration.
// Username is optional; a blank username is derived from the email local
// part.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"omitempty,min=4,max=25"`
	Password string `json:"password" validate:"required,min=7"`
}

// LoginRequest is the JSON request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyRequest is the JSON request body for email verification.
type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

// RefreshRequest is the JSON request body for token refresh. The body is
// optional: a refresh token cookie takes its place.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest is the JSON request body for changing the password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=7"`
}

// --- Handlers ---

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	acc, err := h.service.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{
		Data: map[string]any{
			"account_id": acc.ID,
			"message":    "verification code sent",
		},
	})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	acc, tokens, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrNotVerified) {
			// A fresh code was issued; the client should redirect to the
			// verification flow.
			writeJSON(w, http.StatusAccepted, response{
				Error: &errorResponse{
					Code:    "VERIFICATION_REQUIRED",
					Message: "account is not verified; a new verification code has been sent",
				},
			})
			return
		}
		h.writeAuthError(w, err)
		return
	}

	h.setSessionCookies(w, tokens.AccessToken, tokens.RefreshToken)
	writeJSON(w, http.StatusOK, response{Data: acc})
}

// Verify handles POST /api/v1/auth/verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit

	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	acc, err := h.service.Verify(r.Context(), req.Email, req.Code, verification.ReasonEmailVerification)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: acc})
}

// Refresh handles POST /api/v1/auth/refresh. The refresh token is taken from
// the cookie when present, falling back to the request body.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := ""
	if c, err := r.Cookie(RefreshTokenCookie); err == nil {
		refreshToken = c.Value
	}
	if refreshToken == "" {
		var req RefreshRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}
	if refreshToken == "" {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "missing refresh token"},
		})
		return
	}

	accessToken, err := h.service.RefreshAccess(r.Context(), refreshToken)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	h.setCookie(w, AccessTokenCookie, accessToken, "/", h.cookies.AccessMaxAge)
	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"access_token": accessToken},
	})
}

// Logout handles POST /api/v1/auth/logout. The session cookies are always
// cleared, even when revocation fails server-side.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(RefreshTokenCookie); err == nil && c.Value != "" {
		h.service.Logout(r.Context(), c.Value)
	}

	h.clearSessionCookies(w)
	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"message": "logged out"},
	})
}

// ChangePassword handles POST /api/v1/auth/change-password (auth required).
// Every live session is revoked on success, so the cookies are cleared.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	if principal == nil {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
		})
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), principal.AccountID, req.CurrentPassword, req.NewPassword); err != nil {
		h.writeAuthError(w, err)
		return
	}

	h.clearSessionCookies(w)
	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"message": "password changed; please log in again"},
	})
}

// Me handles GET /api/v1/auth/me (auth required).
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	if principal == nil {
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "UNAUTHORIZED", Message: "authentication required"},
		})
		return
	}

	acc, err := h.service.GetProfile(r.Context(), principal.AccountID)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: acc})
}

// --- Error mapping ---

// writeAuthError maps auth flow sentinels to stable error codes before
// falling through to the generic mapping.
func (h *AuthHandler) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, account.ErrInvalidEmail):
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_EMAIL", Message: "email address is not valid"},
		})
	case errors.Is(err, account.ErrEmailExists):
		writeJSON(w, http.StatusConflict, response{
			Error: &errorResponse{Code: "ALREADY_EXISTS", Message: "an account with this email already exists"},
		})
	case errors.Is(err, account.ErrInvalidUsername):
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_USERNAME", Message: err.Error()},
		})
	case errors.Is(err, service.ErrAlreadyVerified):
		writeJSON(w, http.StatusConflict, response{
			Error: &errorResponse{Code: "ALREADY_VERIFIED", Message: "account is already verified"},
		})
	case errors.Is(err, service.ErrInvalidCode), errors.Is(err, verification.ErrInvalidReason):
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_CODE", Message: "verification code is invalid"},
		})
	case errors.Is(err, verification.ErrTokenNotFound):
		writeJSON(w, http.StatusNotFound, response{
			Error: &errorResponse{Code: "CODE_NOT_FOUND", Message: "no pending verification code; request a new one by logging in"},
		})
	case errors.Is(err, session.ErrInvalidToken):
		writeJSON(w, http.StatusUnauthorized, response{
			Error: &errorResponse{Code: "INVALID_TOKEN", Message: "refresh token is invalid or expired"},
		})
	default:
		writeAppError(w, err)
	}
}

// --- Cookies ---

func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	h.setCookie(w, AccessTokenCookie, accessToken, "/", h.cookies.AccessMaxAge)
	h.setCookie(w, RefreshTokenCookie, refreshToken, "/api/v1/auth", h.cookies.RefreshMaxAge)
}

func (h *AuthHandler) clearSessionCookies(w http.ResponseWriter) {
	h.setCookie(w, AccessTokenCookie, "", "/", -time.Second)
	h.setCookie(w, RefreshTokenCookie, "", "/api/v1/auth", -time.Second)
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value, path string, maxAge time.Duration) {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, c)
}
