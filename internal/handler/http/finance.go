package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/KazimFedxD/FinCore/internal/service"
	"github.com/KazimFedxD/FinCore/pkg/pagination"
	"github.com/KazimFedxD/FinCore/pkg/validator"
)

// FinanceHandler handles HTTP requests for category, income, expense, and
// report endpoints. Every route requires an authenticated principal; rows
// are scoped to that principal's account.
type FinanceHandler struct {
	service *service.FinanceService
	logger  *slog.Logger
}

// NewFinanceHandler creates a new finance HTTP handler.
func NewFinanceHandler(svc *service.FinanceService, logger *slog.Logger) *FinanceHandler {
	return &FinanceHandler{service: svc, logger: logger}
}

// --- Request DTOs ---

// CategoryRequest is the JSON request body for creating a category.
type CategoryRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=100"`
	Parent string `json:"parent" validate:"omitempty,max=100"`
	Root   bool   `json:"root"`
}

// RecordRequest is the JSON request body for creating an income or expense.
// Amount is in minor units (cents).
type RecordRequest struct {
	Amount      int64     `json:"amount" validate:"required,gt=0"`
	Date        time.Time `json:"date" validate:"required"`
	Category    string    `json:"category" validate:"omitempty,max=100"`
	Description string    `json:"description" validate:"max=500"`
}

// --- Categories ---

// ListCategories handles GET /api/v1/categories
func (h *FinanceHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	categories, err := h.service.ListCategories(r.Context(), principal.AccountID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: categories})
}

// CreateCategory handles POST /api/v1/categories
func (h *FinanceHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	var req CategoryRequest
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

	category, err := h.service.CreateCategory(r.Context(), principal.AccountID, service.CreateCategoryInput{
		Name:   req.Name,
		Parent: req.Parent,
		Root:   req.Root,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: category})
}

// DeleteCategory handles DELETE /api/v1/categories/{id}
func (h *FinanceHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	if err := h.service.DeleteCategory(r.Context(), principal.AccountID, chi.URLParam(r, "id")); err != nil {
		writeAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Incomes ---

// ListIncomes handles GET /api/v1/incomes (paginated via page/per_page).
func (h *FinanceHandler) ListIncomes(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	result, err := h.service.ListIncomes(r.Context(), principal.AccountID, pagination.FromRequest(r))
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: result})
}

// CreateIncome handles POST /api/v1/incomes
func (h *FinanceHandler) CreateIncome(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	req, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}

	income, err := h.service.CreateIncome(r.Context(), principal.AccountID, service.RecordInput{
		Amount:      req.Amount,
		Date:        req.Date,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: income})
}

// DeleteIncome handles DELETE /api/v1/incomes/{id}
func (h *FinanceHandler) DeleteIncome(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	if err := h.service.DeleteIncome(r.Context(), principal.AccountID, chi.URLParam(r, "id")); err != nil {
		writeAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Expenses ---

// ListExpenses handles GET /api/v1/expenses (paginated via page/per_page).
func (h *FinanceHandler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	result, err := h.service.ListExpenses(r.Context(), principal.AccountID, pagination.FromRequest(r))
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: result})
}

// CreateExpense handles POST /api/v1/expenses
func (h *FinanceHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	req, ok := h.decodeRecord(w, r)
	if !ok {
		return
	}

	expense, err := h.service.CreateExpense(r.Context(), principal.AccountID, service.RecordInput{
		Amount:      req.Amount,
		Date:        req.Date,
		Category:    req.Category,
		Description: req.Description,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: expense})
}

// DeleteExpense handles DELETE /api/v1/expenses/{id}
func (h *FinanceHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	if err := h.service.DeleteExpense(r.Context(), principal.AccountID, chi.URLParam(r, "id")); err != nil {
		writeAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Report ---

// Report handles GET /api/v1/report
func (h *FinanceHandler) Report(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())

	report, err := h.service.Report(r.Context(), principal.AccountID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: report})
}

// --- Helpers ---

func (h *FinanceHandler) decodeRecord(w http.ResponseWriter, r *http.Request) (*RecordRequest, bool) {
	var req RecordRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{
			Error: &errorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return nil, false
	}

	if err := validator.Validate(req); err != nil {
		writeValidationError(w, err)
		return nil, false
	}

	return &req, true
}
