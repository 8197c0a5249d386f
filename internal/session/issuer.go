package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/KazimFedxD/FinCore/internal/auth"
	"github.com/KazimFedxD/FinCore/internal/domain"
	"github.com/KazimFedxD/FinCore/internal/repository"
	apperrors "github.com/KazimFedxD/FinCore/pkg/errors"
)

// ErrInvalidToken is returned for malformed, expired, or revoked refresh tokens.
var ErrInvalidToken = errors.New("invalid or expired refresh token")

// Issuer produces credential pairs bound to an account and supports refresh
// and revocation. Refresh tokens are individually revocable: the SHA-256 hash
// of every issued refresh token is stored with its expiry, and revocation
// marks the stored row.
type Issuer struct {
	jwtManager  *auth.JWTManager
	tokenRepo   repository.RefreshTokenRepository
	accountRepo repository.AccountRepository
}

// NewIssuer creates a new session issuer.
func NewIssuer(
	jwtManager *auth.JWTManager,
	tokenRepo repository.RefreshTokenRepository,
	accountRepo repository.AccountRepository,
) *Issuer {
	return &Issuer{
		jwtManager:  jwtManager,
		tokenRepo:   tokenRepo,
		accountRepo: accountRepo,
	}
}

// Issue produces an access/refresh token pair for the account and stores the
// refresh token hash for later revocation.
func (i *Issuer) Issue(ctx context.Context, acc *domain.Account) (*domain.TokenPair, error) {
	accessToken, err := i.jwtManager.GenerateAccessToken(acc.ID, acc.Email, acc.Username, acc.Role())
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := i.jwtManager.GenerateRefreshToken(acc.ID)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	refreshClaims, err := i.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("validate refresh token for expiry: %w", err)
	}

	if err := i.tokenRepo.Create(ctx, acc.ID, hashToken(refreshToken), refreshClaims.ExpiresAt.Time); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh validates a refresh token and issues a new access token for the
// same account. The refresh token is not rotated. Malformed, expired,
// unknown, or revoked tokens all surface as ErrInvalidToken.
func (i *Issuer) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := i.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", ErrInvalidToken
	}

	stored, err := i.tokenRepo.GetByHash(ctx, hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("lookup refresh token: %w", err)
	}

	if stored.RevokedAt != nil {
		return "", ErrInvalidToken
	}
	if time.Now().UTC().After(stored.ExpiresAt) {
		return "", ErrInvalidToken
	}

	acc, err := i.accountRepo.GetByID(ctx, claims.AccountID)
	if err != nil {
		return "", fmt.Errorf("get account for token refresh: %w", err)
	}

	accessToken, err := i.jwtManager.GenerateAccessToken(acc.ID, acc.Email, acc.Username, acc.Role())
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}

	return accessToken, nil
}

// Revoke marks the refresh token's stored hash revoked. Revoking an unknown
// or already-revoked token is not an error: logout must always succeed from
// the client's perspective, so failures are logged by the caller and swallowed.
func (i *Issuer) Revoke(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	if err := i.tokenRepo.Revoke(ctx, hashToken(refreshToken)); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAll revokes every live refresh token for the account, forcing
// re-login on all devices.
func (i *Issuer) RevokeAll(ctx context.Context, accountID string) error {
	if err := i.tokenRepo.RevokeByAccountID(ctx, accountID); err != nil {
		return fmt.Errorf("revoke refresh tokens for account: %w", err)
	}
	return nil
}

// hashToken returns the SHA-256 hex digest of the given token string.
func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
