package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/KazimFedxD/FinCore/internal/domain"
	apperrors "github.com/KazimFedxD/FinCore/pkg/errors"
)

// CategoryRepository implements repository.CategoryRepository using PostgreSQL.
type CategoryRepository struct {
	db DB
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(db DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a new category.
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	query := `
		INSERT INTO categories (id, account_id, name, parent_id, root, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		c.ID,
		c.AccountID,
		c.Name,
		c.ParentID,
		c.Root,
		c.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("category", "name", c.Name)
		}
		return fmt.Errorf("insert category: %w", err)
	}

	return nil
}

// GetByName retrieves an account's category by name.
func (r *CategoryRepository) GetByName(ctx context.Context, accountID, name string) (*domain.Category, error) {
	query := `
		SELECT id, account_id, name, parent_id, root, created_at
		FROM categories
		WHERE account_id = $1 AND name = $2`

	var c domain.Category
	err := r.db.QueryRow(ctx, query, accountID, name).Scan(
		&c.ID,
		&c.AccountID,
		&c.Name,
		&c.ParentID,
		&c.Root,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}

	return &c, nil
}

// ListByAccountID returns every category owned by the account.
func (r *CategoryRepository) ListByAccountID(ctx context.Context, accountID string) ([]domain.Category, error) {
	query := `
		SELECT id, account_id, name, parent_id, root, created_at
		FROM categories
		WHERE account_id = $1
		ORDER BY name`

	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.AccountID, &c.Name, &c.ParentID, &c.Root, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

// Delete removes a category owned by the account.
func (r *CategoryRepository) Delete(ctx context.Context, accountID, id string) error {
	query := `DELETE FROM categories WHERE account_id = $1 AND id = $2`

	ct, err := r.db.Exec(ctx, query, accountID, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("category", id)
	}

	return nil
}

// --- Income Repository ---

// IncomeRepository implements repository.IncomeRepository using PostgreSQL.
type IncomeRepository struct {
	db DB
}

// NewIncomeRepository creates a new PostgreSQL-backed income repository.
func NewIncomeRepository(db DB) *IncomeRepository {
	return &IncomeRepository{db: db}
}

// Create inserts a new income record.
func (r *IncomeRepository) Create(ctx context.Context, in *domain.Income) error {
	query := `
		INSERT INTO incomes (id, account_id, category_id, amount, description, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		in.ID,
		in.AccountID,
		in.CategoryID,
		in.Amount,
		in.Description,
		in.Date,
		in.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert income: %w", err)
	}

	return nil
}

// ListByAccountID returns every income record owned by the account, newest
// first.
func (r *IncomeRepository) ListByAccountID(ctx context.Context, accountID string) ([]domain.Income, error) {
	query := `
		SELECT id, account_id, category_id, amount, description, date, created_at
		FROM incomes
		WHERE account_id = $1
		ORDER BY date DESC, created_at DESC`

	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("query incomes: %w", err)
	}
	defer rows.Close()

	incomes := []domain.Income{}
	for rows.Next() {
		var in domain.Income
		if err := rows.Scan(&in.ID, &in.AccountID, &in.CategoryID, &in.Amount, &in.Description, &in.Date, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan income row: %w", err)
		}
		incomes = append(incomes, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incomes: %w", err)
	}

	return incomes, nil
}

// ListPage returns one page of the account's income records, newest first.
func (r *IncomeRepository) ListPage(ctx context.Context, accountID string, limit, offset int) ([]domain.Income, error) {
	query := `
		SELECT id, account_id, category_id, amount, description, date, created_at
		FROM incomes
		WHERE account_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query incomes page: %w", err)
	}
	defer rows.Close()

	incomes := []domain.Income{}
	for rows.Next() {
		var in domain.Income
		if err := rows.Scan(&in.ID, &in.AccountID, &in.CategoryID, &in.Amount, &in.Description, &in.Date, &in.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan income row: %w", err)
		}
		incomes = append(incomes, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate incomes: %w", err)
	}

	return incomes, nil
}

// CountByAccountID returns how many income records the account has.
func (r *IncomeRepository) CountByAccountID(ctx context.Context, accountID string) (int, error) {
	query := `SELECT COUNT(*) FROM incomes WHERE account_id = $1`

	var count int
	if err := r.db.QueryRow(ctx, query, accountID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count incomes: %w", err)
	}

	return count, nil
}

// Delete removes an income record owned by the account.
func (r *IncomeRepository) Delete(ctx context.Context, accountID, id string) error {
	query := `DELETE FROM incomes WHERE account_id = $1 AND id = $2`

	ct, err := r.db.Exec(ctx, query, accountID, id)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("income", id)
	}

	return nil
}

// SumByAccountID returns the total income amount for the account in minor
// units.
func (r *IncomeRepository) SumByAccountID(ctx context.Context, accountID string) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM incomes WHERE account_id = $1`

	var total int64
	if err := r.db.QueryRow(ctx, query, accountID).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum incomes: %w", err)
	}

	return total, nil
}

// --- Expense Repository ---

// ExpenseRepository implements repository.ExpenseRepository using PostgreSQL.
type ExpenseRepository struct {
	db DB
}

// NewExpenseRepository creates a new PostgreSQL-backed expense repository.
func NewExpenseRepository(db DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create inserts a new expense record.
func (r *ExpenseRepository) Create(ctx context.Context, e *domain.Expense) error {
	query := `
		INSERT INTO expenses (id, account_id, category_id, amount, description, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		e.ID,
		e.AccountID,
		e.CategoryID,
		e.Amount,
		e.Description,
		e.Date,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	return nil
}

// ListByAccountID returns every expense record owned by the account, newest
// first.
func (r *ExpenseRepository) ListByAccountID(ctx context.Context, accountID string) ([]domain.Expense, error) {
	query := `
		SELECT id, account_id, category_id, amount, description, date, created_at
		FROM expenses
		WHERE account_id = $1
		ORDER BY date DESC, created_at DESC`

	rows, err := r.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(&e.ID, &e.AccountID, &e.CategoryID, &e.Amount, &e.Description, &e.Date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense row: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	return expenses, nil
}

// ListPage returns one page of the account's expense records, newest first.
func (r *ExpenseRepository) ListPage(ctx context.Context, accountID string, limit, offset int) ([]domain.Expense, error) {
	query := `
		SELECT id, account_id, category_id, amount, description, date, created_at
		FROM expenses
		WHERE account_id = $1
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query expenses page: %w", err)
	}
	defer rows.Close()

	expenses := []domain.Expense{}
	for rows.Next() {
		var e domain.Expense
		if err := rows.Scan(&e.ID, &e.AccountID, &e.CategoryID, &e.Amount, &e.Description, &e.Date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expense row: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}

	return expenses, nil
}

// CountByAccountID returns how many expense records the account has.
func (r *ExpenseRepository) CountByAccountID(ctx context.Context, accountID string) (int, error) {
	query := `SELECT COUNT(*) FROM expenses WHERE account_id = $1`

	var count int
	if err := r.db.QueryRow(ctx, query, accountID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count expenses: %w", err)
	}

	return count, nil
}

// Delete removes an expense record owned by the account.
func (r *ExpenseRepository) Delete(ctx context.Context, accountID, id string) error {
	query := `DELETE FROM expenses WHERE account_id = $1 AND id = $2`

	ct, err := r.db.Exec(ctx, query, accountID, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("expense", id)
	}

	return nil
}

// SumByAccountID returns the total expense amount for the account in minor
// units.
func (r *ExpenseRepository) SumByAccountID(ctx context.Context, accountID string) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE account_id = $1`

	var total int64
	if err := r.db.QueryRow(ctx, query, accountID).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum expenses: %w", err)
	}

	return total, nil
}
