package domain

import (
	"time"
)

// Category groups income and expense records for one account.
// Categories form a shallow tree: a root category has no parent.
type Category struct {
	ID        string    `json:"id"`
	AccountID string    `json:"-"`
	Name      string    `json:"name"`
	ParentID  *string   `json:"parent_id,omitempty"`
	Root      bool      `json:"root"`
	CreatedAt time.Time `json:"created_at"`
}

// Income is a single income record. Amount is in minor currency units (cents).
type Income struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"-"`
	CategoryID  *string   `json:"category_id,omitempty"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

// Expense is a single expense record. Amount is in minor currency units (cents).
type Expense struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"-"`
	CategoryID  *string   `json:"category_id,omitempty"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

// Report is the aggregate view over one account's records.
type Report struct {
	TotalIncome  int64     `json:"total_income"`
	TotalExpense int64     `json:"total_expense"`
	Balance      int64     `json:"balance"`
	Incomes      []Income  `json:"incomes"`
	Expenses     []Expense `json:"expenses"`
}
