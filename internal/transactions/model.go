package transactions

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CreateInput is the body of POST /api/transactions. Amount may carry either
// sign; the stored sign follows TransactionType.
type CreateInput struct {
	AccountID       int64           `json:"account_id"`
	CategoryID      *int64          `json:"category_id"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType string          `json:"transaction_type"`
	Description     *string         `json:"description"`
	Date            string          `json:"date"` // YYYY-MM-DD or RFC 3339, defaults to today
}

type UpdateInput struct {
	CategoryID  *int64  `json:"category_id"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
}

// NewTransaction is a row ready for insertion; Amount is already signed.
type NewTransaction struct {
	AccountID   int64
	CategoryID  *int64
	Amount      decimal.Decimal
	Type        string
	Description *string
	Date        time.Time
}

// Filter narrows List; zero values mean no constraint.
type Filter struct {
	AccountID int64
	Type      string
	Start     *time.Time
	End       *time.Time
	Limit     int
	Offset    int
}

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// ParseDay accepts a calendar date or an RFC 3339 timestamp and returns the
// calendar date in UTC.
func ParseDay(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func normalizeType(t string) string {
	t = strings.TrimSpace(strings.ToLower(t))
	if t == "income" || t == "expense" {
		return t
	}
	return ""
}
