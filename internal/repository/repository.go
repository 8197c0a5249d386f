package repository

import (
	"context"
	"time"

	"github.com/KazimFedxD/FinCore/internal/domain"
)

// AccountRepository defines the interface for account persistence operations.
type AccountRepository interface {
	// Create inserts a new account into the store.
	Create(ctx context.Context, account *domain.Account) error

	// GetByID retrieves an account by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Account, error)

	// GetByEmail retrieves an account by email address. The match is
	// case-insensitive.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)

	// Update modifies an existing account in the store.
	Update(ctx context.Context, account *domain.Account) error

	// UpdateLastLogin stamps the account's last-login timestamp.
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// RefreshTokenRepository defines the interface for refresh token persistence operations.
type RefreshTokenRepository interface {
	// Create stores a new refresh token hash.
	Create(ctx context.Context, accountID, tokenHash string, expiresAt time.Time) error

	// GetByHash retrieves a refresh token record by its hash.
	GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)

	// Revoke revokes a specific refresh token by its hash.
	Revoke(ctx context.Context, tokenHash string) error

	// RevokeByAccountID revokes all refresh tokens for the given account.
	RevokeByAccountID(ctx context.Context, accountID string) error
}

// CategoryRepository defines the interface for category persistence operations.
type CategoryRepository interface {
	// Create inserts a new category into the store.
	Create(ctx context.Context, category *domain.Category) error

	// GetByName retrieves a category by name within one account.
	GetByName(ctx context.Context, accountID, name string) (*domain.Category, error)

	// ListByAccountID returns all categories for the given account.
	ListByAccountID(ctx context.Context, accountID string) ([]domain.Category, error)

	// Delete removes a category owned by the account.
	Delete(ctx context.Context, accountID, id string) error
}

// IncomeRepository defines the interface for income persistence operations.
type IncomeRepository interface {
	// Create inserts a new income record into the store.
	Create(ctx context.Context, income *domain.Income) error

	// ListByAccountID returns all income records for the given account.
	ListByAccountID(ctx context.Context, accountID string) ([]domain.Income, error)

	// ListPage returns one page of income records for the given account.
	ListPage(ctx context.Context, accountID string, limit, offset int) ([]domain.Income, error)

	// CountByAccountID returns the number of income records for the given account.
	CountByAccountID(ctx context.Context, accountID string) (int, error)

	// Delete removes an income record owned by the account.
	Delete(ctx context.Context, accountID, id string) error

	// SumByAccountID returns the total income amount for the given account.
	SumByAccountID(ctx context.Context, accountID string) (int64, error)
}

// ExpenseRepository defines the interface for expense persistence operations.
type ExpenseRepository interface {
	// Create inserts a new expense record into the store.
	Create(ctx context.Context, expense *domain.Expense) error

	// ListByAccountID returns all expense records for the given account.
	ListByAccountID(ctx context.Context, accountID string) ([]domain.Expense, error)

	// ListPage returns one page of expense records for the given account.
	ListPage(ctx context.Context, accountID string, limit, offset int) ([]domain.Expense, error)

	// CountByAccountID returns the number of expense records for the given account.
	CountByAccountID(ctx context.Context, accountID string) (int, error)

	// Delete removes an expense record owned by the account.
	Delete(ctx context.Context, accountID, id string) error

	// SumByAccountID returns the total expense amount for the given account.
	SumByAccountID(ctx context.Context, accountID string) (int64, error)
}
