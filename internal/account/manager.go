package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/KazimFedxD/FinCore/internal/domain"
	"github.com/KazimFedxD/FinCore/internal/repository"
	apperrors "github.com/KazimFedxD/FinCore/pkg/errors"
	"github.com/KazimFedxD/FinCore/pkg/validator"
)

// Validation failures surfaced to callers field-by-field.
var (
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrEmailExists     = errors.New("email already registered")
	ErrInvalidUsername = errors.New("username must be between 4 and 25 characters")
)

const (
	minUsernameLength = 4
	maxUsernameLength = 25
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// Manager layers validation rules and account creation/lookup logic atop the
// account store.
type Manager struct {
	repo repository.AccountRepository
	cost int
}

// NewManager creates a new account manager.
func NewManager(repo repository.AccountRepository) *Manager {
	return &Manager{repo: repo, cost: bcryptCost}
}

// CreateInput holds the parameters for creating an account.
type CreateInput struct {
	Email    string
	Username string // optional; derived from the email local part when empty
	Password string

	IsStaff     bool
	IsSuperuser bool
	Verified    bool
}

// Validate checks email syntax, email uniqueness, and username length.
// An empty username is not an error here: it means the username will be
// derived from the email local part, and derived usernames are accepted
// as-is regardless of length.
func (m *Manager) Validate(ctx context.Context, email, username string) error {
	if err := validator.Validate(emailCheck{Email: email}); err != nil {
		return ErrInvalidEmail
	}

	existing, err := m.LookupByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check email uniqueness: %w", err)
	}
	if existing != nil {
		return ErrEmailExists
	}

	if username != "" {
		if len(username) < minUsernameLength || len(username) > maxUsernameLength {
			return ErrInvalidUsername
		}
	}

	return nil
}

// Create validates the input, derives the username when omitted, hashes the
// password, and inserts the account. A creation race lost to a concurrent
// insert surfaces as ErrEmailExists.
func (m *Manager) Create(ctx context.Context, in CreateInput) (*domain.Account, error) {
	if err := m.Validate(ctx, in.Email, in.Username); err != nil {
		return nil, err
	}

	username := in.Username
	if username == "" {
		username = in.Email[:strings.Index(in.Email, "@")]
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), m.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	acc := &domain.Account{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(in.Email),
		Username:     username,
		PasswordHash: string(hashedPassword),
		Verified:     in.Verified,
		IsStaff:      in.IsStaff,
		IsSuperuser:  in.IsSuperuser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := m.repo.Create(ctx, acc); err != nil {
		// The unique index is the authority; a lost race between Validate and
		// Create surfaces here.
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	return acc, nil
}

// CreateSuperuser creates an account with staff and superuser flags set, used
// by the operator CLI. Superusers are created verified.
func (m *Manager) CreateSuperuser(ctx context.Context, in CreateInput) (*domain.Account, error) {
	in.IsStaff = true
	in.IsSuperuser = true
	in.Verified = true
	return m.Create(ctx, in)
}

// SetPassword re-hashes and stores a new password for the account.
func (m *Manager) SetPassword(ctx context.Context, acc *domain.Account, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), m.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	acc.PasswordHash = string(hashedPassword)
	if err := m.repo.Update(ctx, acc); err != nil {
		return fmt.Errorf("update account password: %w", err)
	}
	return nil
}

// LookupByEmail returns the account for the given email, or (nil, nil) when
// no account exists. Absence is not an error.
func (m *Manager) LookupByEmail(ctx context.Context, email string) (*domain.Account, error) {
	acc, err := m.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup account by email: %w", err)
	}
	return acc, nil
}

// emailCheck adapts a bare email string to struct-tag validation.
type emailCheck struct {
	Email string `validate:"required,email"`
}
