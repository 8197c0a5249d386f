package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/KazimFedxD/FinCore/internal/auth"
	"github.com/KazimFedxD/FinCore/internal/domain"
	"github.com/KazimFedxD/FinCore/pkg/logger"
)

// AccessTokenCookie is the cookie carrying the short-lived access token.
const AccessTokenCookie = "access_token"

// RefreshTokenCookie is the cookie carrying the long-lived refresh token.
const RefreshTokenCookie = "refresh_token"

type contextKey string

const principalKey contextKey = "principal"

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// CookieTokenExtractor bridges cookie-based credentials to header-based auth:
// when the request has no Authorization header but carries the access token
// cookie, the cookie value is promoted to a bearer token. Requests that
// already carry an Authorization header are passed through untouched, so API
// clients keep working without cookies.
func CookieTokenExtractor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
				r.Header.Set("Authorization", "Bearer "+c.Value)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Auth validates the bearer token and attaches the authenticated principal
// to the request context. Requests without a valid token are rejected with
// 401 before reaching the handler.
func Auth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeJSON(w, http.StatusUnauthorized, response{
					Error: &errorResponse{Code: "UNAUTHORIZED", Message: "missing credentials"},
				})
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeJSON(w, http.StatusUnauthorized, response{
					Error: &errorResponse{Code: "UNAUTHORIZED", Message: "invalid authorization header"},
				})
				return
			}

			claims, err := jwtManager.ValidateAccessToken(token)
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, response{
					Error: &errorResponse{Code: "UNAUTHORIZED", Message: "invalid or expired token"},
				})
				return
			}

			principal := &domain.Principal{
				AccountID: claims.AccountID,
				Email:     claims.Email,
				Username:  claims.Username,
				Role:      claims.Role,
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			ctx = logger.WithAccountID(ctx, principal.AccountID)
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With("account_id", principal.AccountID))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the authenticated principal, or nil when the
// request did not pass the Auth middleware.
func PrincipalFromContext(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(principalKey).(*domain.Principal)
	return p
}
