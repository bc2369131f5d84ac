package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account types accepted on create and update.
var AccountTypes = map[string]bool{
	"checking":   true,
	"savings":    true,
	"credit":     true,
	"investment": true,
	"cash":       true,
}

// Account is a ledger whose balance equals the sum of its transactions'
// signed amounts plus the opening balance given at creation.
type Account struct {
	ID          int64           `db:"id" json:"id"`
	OwnerID     string          `db:"owner_id" json:"owner_id"`
	Name        string          `db:"name" json:"name"`
	AccountType string          `db:"account_type" json:"account_type"`
	Balance     decimal.Decimal `db:"balance" json:"balance"`
	Currency    string          `db:"currency" json:"currency"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// Transaction amounts are signed: positive for income, negative for expense.
type Transaction struct {
	ID              int64           `db:"id" json:"id"`
	AccountID       int64           `db:"account_id" json:"account_id"`
	CategoryID      *int64          `db:"category_id" json:"category_id"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	TransactionType string          `db:"transaction_type" json:"transaction_type"`
	Description     *string         `db:"description" json:"description"`
	Date            time.Time       `db:"date" json:"date"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

type Category struct {
	ID           int64   `db:"id" json:"id"`
	OwnerID      string  `db:"owner_id" json:"owner_id"`
	Name         string  `db:"name" json:"name"`
	CategoryType string  `db:"category_type" json:"category_type"`
	Color        *string `db:"color" json:"color"`
}

// Budget is a monthly spending limit for one category.
type Budget struct {
	ID         int64           `db:"id" json:"id"`
	OwnerID    string          `db:"owner_id" json:"owner_id"`
	CategoryID int64           `db:"category_id" json:"category_id"`
	Amount     decimal.Decimal `db:"amount" json:"amount"`
	Year       int             `db:"year" json:"year"`
	Month      int             `db:"month" json:"month"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
