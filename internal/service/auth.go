package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/KazimFedxD/FinCore/internal/account"
	"github.com/KazimFedxD/FinCore/internal/domain"
	"github.com/KazimFedxD/FinCore/internal/event"
	"github.com/KazimFedxD/FinCore/internal/repository"
	"github.com/KazimFedxD/FinCore/internal/session"
	"github.com/KazimFedxD/FinCore/internal/verification"
	apperrors "github.com/KazimFedxD/FinCore/pkg/errors"
	"github.com/KazimFedxD/FinCore/pkg/validator"
)

// Auth flow conditions that callers branch on.
var (
	// ErrNotVerified marks an account that exists but has not confirmed its
	// email. It is intentionally distinguishable from a credential failure so
	// the login flow can branch into resend-verification.
	ErrNotVerified = errors.New("account not verified")

	// ErrAlreadyVerified marks a verify attempt against an account that is
	// already verified. The pending code, if any, is not consumed.
	ErrAlreadyVerified = errors.New("account already verified")

	// ErrInvalidCode marks a verification attempt with a code that does not
	// match the live token.
	ErrInvalidCode = errors.New("verification code does not match")
)

// AuthService implements registration, login, verification, and session
// lifecycle on top of the account manager, verification registry, and
// session issuer.
type AuthService struct {
	accounts    *account.Manager
	registry    *verification.Registry
	sessions    *session.Issuer
	accountRepo repository.AccountRepository
	producer    *event.Producer
	logger      *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	accounts *account.Manager,
	registry *verification.Registry,
	sessions *session.Issuer,
	accountRepo repository.AccountRepository,
	producer *event.Producer,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		accounts:    accounts,
		registry:    registry,
		sessions:    sessions,
		accountRepo: accountRepo,
		producer:    producer,
		logger:      logger,
	}
}

// RegisterInput holds the parameters for registering a new account.
type RegisterInput struct {
	Email    string
	Username string // optional
	Password string
}

// Register creates an unverified account, generates a verification code, and
// publishes the events that drive out-of-band code delivery. Event publishing
// is best-effort and never blocks the caller.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.Account, error) {
	acc, err := s.accounts.Create(ctx, account.CreateInput{
		Email:    input.Email,
		Username: input.Username,
		Password: input.Password,
	})
	if err != nil {
		return nil, err
	}

	code := s.registry.Generate(acc.ID, verification.ReasonEmailVerification, false)

	if err := s.producer.PublishAccountRegistered(ctx, acc); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish account.registered event",
			slog.String("account_id", acc.ID),
			slog.String("error", err.Error()),
		)
	}
	if err := s.producer.PublishVerificationRequested(ctx, acc, code, verification.ReasonEmailVerification); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish account.verification_requested event",
			slog.String("account_id", acc.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "account registered",
		slog.String("account_id", acc.ID),
		slog.String("email", acc.Email),
	)

	return acc, nil
}

// Authenticate checks credentials and produces the account on a full match.
// A syntactically invalid email fails with account.ErrInvalidEmail before any
// lookup. An absent account or a wrong password both return (nil, nil): "no
// match" is not an error. An unverified account fails with ErrNotVerified,
// checked before the password so callers can re-issue a verification code.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.Account, error) {
	if err := validator.Validate(struct {
		Email string `validate:"required,email"`
	}{Email: email}); err != nil {
		return nil, account.ErrInvalidEmail
	}

	acc, err := s.accounts.LookupByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, nil
	}

	if !acc.Verified {
		return nil, ErrNotVerified
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, nil
	}

	return acc, nil
}

// Login authenticates and issues a credential pair. An unverified account
// surfaces ErrNotVerified after regenerating its verification code (same
// code, lifetime reset) and re-publishing the delivery event — a recovery
// path for users who lost the original email. A plain credential mismatch
// returns a generic unauthorized error so accounts cannot be enumerated.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Account, *domain.TokenPair, error) {
	acc, err := s.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, ErrNotVerified) {
			s.resendVerification(ctx, email)
		}
		return nil, nil, err
	}
	if acc == nil {
		return nil, nil, apperrors.Unauthorized("invalid email or password")
	}

	now := time.Now().UTC()
	if err := s.accountRepo.UpdateLastLogin(ctx, acc.ID, now); err != nil {
		s.logger.ErrorContext(ctx, "failed to update last login",
			slog.String("account_id", acc.ID),
			slog.String("error", err.Error()),
		)
	}
	acc.LastLogin = &now

	tokens, err := s.sessions.Issue(ctx, acc)
	if err != nil {
		return nil, nil, fmt.Errorf("issue tokens: %w", err)
	}

	s.logger.InfoContext(ctx, "account logged in",
		slog.String("account_id", acc.ID),
	)

	return acc, tokens, nil
}

// resendVerification regenerates the account's verification code (lifetime
// reset, code kept) and publishes the delivery event.
func (s *AuthService) resendVerification(ctx context.Context, email string) {
	acc, err := s.accounts.LookupByEmail(ctx, email)
	if err != nil || acc == nil {
		return
	}

	code := s.registry.Generate(acc.ID, verification.ReasonEmailVerification, false)
	if err := s.producer.PublishVerificationRequested(ctx, acc, code, verification.ReasonEmailVerification); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish account.verification_requested event",
			slog.String("account_id", acc.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "verification code re-issued",
		slog.String("account_id", acc.ID),
	)
}

// Verify consumes a verification code and marks the account verified.
// An absent account behaves exactly like a missing token so the endpoint
// does not leak account existence.
func (s *AuthService) Verify(ctx context.Context, email, code, reason string) (*domain.Account, error) {
	acc, err := s.accounts.LookupByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, verification.ErrTokenNotFound
	}

	if acc.Verified {
		return nil, ErrAlreadyVerified
	}

	ok, err := s.registry.Check(acc.ID, code, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidCode
	}

	acc.Verified = true
	acc.UpdatedAt = time.Now().UTC()
	if err := s.accountRepo.Update(ctx, acc); err != nil {
		return nil, fmt.Errorf("mark account verified: %w", err)
	}

	if err := s.producer.PublishAccountVerified(ctx, acc); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish account.verified event",
			slog.String("account_id", acc.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "account verified",
		slog.String("account_id", acc.ID),
	)

	return acc, nil
}

// Logout revokes the refresh token best-effort. It never fails: revocation
// errors are logged and swallowed so the client-visible logout always
// succeeds.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	if err := s.sessions.Revoke(ctx, refreshToken); err != nil {
		s.logger.WarnContext(ctx, "best-effort refresh token revocation failed",
			slog.String("error", err.Error()),
		)
	}
}

// RefreshAccess exchanges a valid refresh token for a new access token.
func (s *AuthService) RefreshAccess(ctx context.Context, refreshToken string) (string, error) {
	return s.sessions.Refresh(ctx, refreshToken)
}

// ChangePassword verifies the current password, stores a new hash, and
// revokes every live session for the account.
func (s *AuthService) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	acc, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("get account for password change: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(currentPassword)); err != nil {
		return apperrors.Unauthorized("current password is incorrect")
	}

	if err := s.accounts.SetPassword(ctx, acc, newPassword); err != nil {
		return err
	}

	if err := s.sessions.RevokeAll(ctx, acc.ID); err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke refresh tokens after password change",
			slog.String("account_id", acc.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "password changed",
		slog.String("account_id", acc.ID),
	)

	return nil
}

// GetProfile returns the account backing a principal.
func (s *AuthService) GetProfile(ctx context.Context, accountID string) (*domain.Account, error) {
	acc, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("get account profile: %w", err)
	}
	return acc, nil
}
