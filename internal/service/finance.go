package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/KazimFedxD/FinCore/internal/domain"
	"github.com/KazimFedxD/FinCore/internal/repository"
	apperrors "github.com/KazimFedxD/FinCore/pkg/errors"
	"github.com/KazimFedxD/FinCore/pkg/pagination"
)

// FinanceService implements category, income, and expense CRUD plus the
// aggregate report. Every operation is scoped to the authenticated
// principal's account id; rows belonging to other accounts are invisible.
type FinanceService struct {
	categoryRepo repository.CategoryRepository
	incomeRepo   repository.IncomeRepository
	expenseRepo  repository.ExpenseRepository
	logger       *slog.Logger
}

// NewFinanceService creates a new finance service.
func NewFinanceService(
	categoryRepo repository.CategoryRepository,
	incomeRepo repository.IncomeRepository,
	expenseRepo repository.ExpenseRepository,
	logger *slog.Logger,
) *FinanceService {
	return &FinanceService{
		categoryRepo: categoryRepo,
		incomeRepo:   incomeRepo,
		expenseRepo:  expenseRepo,
		logger:       logger,
	}
}

// CreateCategoryInput holds the parameters for creating a category.
type CreateCategoryInput struct {
	Name   string
	Parent string // optional parent category, referenced by name
	Root   bool
}

// RecordInput holds the parameters for creating an income or expense record.
type RecordInput struct {
	Amount      int64
	Date        time.Time
	Category    string // optional, referenced by name
	Description string
}

// --- Categories ---

// ListCategories returns all categories for the account.
func (s *FinanceService) ListCategories(ctx context.Context, accountID string) ([]domain.Category, error) {
	categories, err := s.categoryRepo.ListByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// CreateCategory creates a category, optionally attached to a parent
// referenced by name.
func (s *FinanceService) CreateCategory(ctx context.Context, accountID string, input CreateCategoryInput) (*domain.Category, error) {
	if input.Name == "" {
		return nil, apperrors.InvalidInput("category name is required")
	}

	category := &domain.Category{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Name:      input.Name,
		Root:      input.Root,
		CreatedAt: time.Now().UTC(),
	}

	if input.Parent != "" {
		parent, err := s.categoryRepo.GetByName(ctx, accountID, input.Parent)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NotFound("category", input.Parent)
			}
			return nil, fmt.Errorf("resolve parent category: %w", err)
		}
		category.ParentID = &parent.ID
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.logger.InfoContext(ctx, "category created",
		slog.String("account_id", accountID),
		slog.String("category_id", category.ID),
	)

	return category, nil
}

// DeleteCategory removes a category owned by the account.
func (s *FinanceService) DeleteCategory(ctx context.Context, accountID, id string) error {
	if err := s.categoryRepo.Delete(ctx, accountID, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// --- Incomes ---

// ListIncomes returns one page of the account's income records with the
// paging envelope.
func (s *FinanceService) ListIncomes(ctx context.Context, accountID string, params pagination.Params) (*pagination.Result[domain.Income], error) {
	incomes, err := s.incomeRepo.ListPage(ctx, accountID, params.PerPage, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	total, err := s.incomeRepo.CountByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("count incomes: %w", err)
	}
	result := pagination.NewResult(incomes, total, params)
	return &result, nil
}

// CreateIncome creates an income record for the account.
func (s *FinanceService) CreateIncome(ctx context.Context, accountID string, input RecordInput) (*domain.Income, error) {
	categoryID, err := s.resolveCategory(ctx, accountID, input.Category)
	if err != nil {
		return nil, err
	}
	if err := validateRecord(input); err != nil {
		return nil, err
	}

	income := &domain.Income{
		ID:          uuid.New().String(),
		AccountID:   accountID,
		CategoryID:  categoryID,
		Amount:      input.Amount,
		Description: input.Description,
		Date:        input.Date,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.incomeRepo.Create(ctx, income); err != nil {
		return nil, fmt.Errorf("create income: %w", err)
	}

	return income, nil
}

// DeleteIncome removes an income record owned by the account.
func (s *FinanceService) DeleteIncome(ctx context.Context, accountID, id string) error {
	if err := s.incomeRepo.Delete(ctx, accountID, id); err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	return nil
}

// --- Expenses ---

// ListExpenses returns one page of the account's expense records with the
// paging envelope.
func (s *FinanceService) ListExpenses(ctx context.Context, accountID string, params pagination.Params) (*pagination.Result[domain.Expense], error) {
	expenses, err := s.expenseRepo.ListPage(ctx, accountID, params.PerPage, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	total, err := s.expenseRepo.CountByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("count expenses: %w", err)
	}
	result := pagination.NewResult(expenses, total, params)
	return &result, nil
}

// CreateExpense creates an expense record for the account.
func (s *FinanceService) CreateExpense(ctx context.Context, accountID string, input RecordInput) (*domain.Expense, error) {
	categoryID, err := s.resolveCategory(ctx, accountID, input.Category)
	if err != nil {
		return nil, err
	}
	if err := validateRecord(input); err != nil {
		return nil, err
	}

	expense := &domain.Expense{
		ID:          uuid.New().String(),
		AccountID:   accountID,
		CategoryID:  categoryID,
		Amount:      input.Amount,
		Description: input.Description,
		Date:        input.Date,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.expenseRepo.Create(ctx, expense); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}

	return expense, nil
}

// DeleteExpense removes an expense record owned by the account.
func (s *FinanceService) DeleteExpense(ctx context.Context, accountID, id string) error {
	if err := s.expenseRepo.Delete(ctx, accountID, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return nil
}

// --- Report ---

// Report returns income/expense totals, the balance, and per-entry detail
// for the account.
func (s *FinanceService) Report(ctx context.Context, accountID string) (*domain.Report, error) {
	totalIncome, err := s.incomeRepo.SumByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("sum incomes: %w", err)
	}
	totalExpense, err := s.expenseRepo.SumByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("sum expenses: %w", err)
	}

	incomes, err := s.incomeRepo.ListByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list incomes for report: %w", err)
	}
	expenses, err := s.expenseRepo.ListByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list expenses for report: %w", err)
	}

	return &domain.Report{
		TotalIncome:  totalIncome,
		TotalExpense: totalExpense,
		Balance:      totalIncome - totalExpense,
		Incomes:      incomes,
		Expenses:     expenses,
	}, nil
}

// --- Helpers ---

// resolveCategory maps an optional category name to its id.
func (s *FinanceService) resolveCategory(ctx context.Context, accountID, name string) (*string, error) {
	if name == "" {
		return nil, nil
	}
	category, err := s.categoryRepo.GetByName(ctx, accountID, name)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("category", name)
		}
		return nil, fmt.Errorf("resolve category: %w", err)
	}
	return &category.ID, nil
}

func validateRecord(input RecordInput) error {
	if input.Amount <= 0 {
		return apperrors.InvalidInput("amount must be positive")
	}
	if input.Date.IsZero() {
		return apperrors.InvalidInput("date is required")
	}
	return nil
}
