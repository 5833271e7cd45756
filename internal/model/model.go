// Package model defines the domain records stored and served by the API.
package model

import "time"

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Frequency is the recurrence step of a recurring transaction.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// RuleStatus is the lifecycle state of a recurring transaction.
type RuleStatus string

const (
	RuleStatusActive RuleStatus = "active"
	RuleStatusEnded  RuleStatus = "ended"
)

// Transaction is a single ledger entry. It is produced either by direct user
// entry or by materialization of a RecurringTransaction; once created it has
// no back-reference to its origin rule.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Type        TransactionType `json:"type"`
	CategoryID  string          `json:"categoryId"`
	Tags        []string        `json:"tags,omitempty"`
	// ReceiptPath is the storage object holding the source document, when
	// the transaction came from a receipt or statement upload.
	ReceiptPath string    `json:"receiptPath,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Category classifies transactions. Categories are per-user.
type Category struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Name      string          `json:"name"`
	Type      TransactionType `json:"type"`
	Icon      string          `json:"icon,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// RecurringTransaction is a user-defined template that periodically produces
// concrete transactions.
//
// NextDueDate is always the earliest not-yet-materialized occurrence, at or
// after StartDate and at or before EndDate when one is set.
type RecurringTransaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Type        TransactionType `json:"type"`
	CategoryID  string          `json:"categoryId"`
	Frequency   Frequency       `json:"frequency"`
	StartDate   time.Time       `json:"startDate"`
	NextDueDate time.Time       `json:"nextDueDate"`
	EndDate     *time.Time      `json:"endDate,omitempty"`
	Status      RuleStatus      `json:"status"`
	Tags        []string        `json:"tags,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Clone returns a deep copy of the rule. The materializer works on copies so
// callers keep an unmodified view of the stored rule list.
func (r *RecurringTransaction) Clone() *RecurringTransaction {
	c := *r
	if r.EndDate != nil {
		end := *r.EndDate
		c.EndDate = &end
	}
	if r.Tags != nil {
		c.Tags = append([]string(nil), r.Tags...)
	}
	return &c
}

// Budget caps spending for one category over a repeating period.
type Budget struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	CategoryID string    `json:"categoryId"`
	Amount     float64   `json:"amount"`
	Period     Frequency `json:"period"`
	StartDate  time.Time `json:"startDate"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// BudgetProgress reports spend against a budget as of a given date.
type BudgetProgress struct {
	BudgetID    string    `json:"budgetId"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
	Spent       float64   `json:"spent"`
	Remaining   float64   `json:"remaining"`
	Percent     float64   `json:"percent"`
}

// Goal is a savings target.
type Goal struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Name          string    `json:"name"`
	TargetAmount  float64   `json:"targetAmount"`
	CurrentAmount float64   `json:"currentAmount"`
	TargetDate    time.Time `json:"targetDate"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Investment is a holding whose current price may be refreshed via the
// assistant's best-effort price lookup.
type Investment struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Name          string     `json:"name"`
	Symbol        string     `json:"symbol,omitempty"`
	Quantity      float64    `json:"quantity"`
	PurchasePrice float64    `json:"purchasePrice"`
	CurrentPrice  float64    `json:"currentPrice"`
	LastPricedAt  *time.Time `json:"lastPricedAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// User is the owner of a namespaced data set.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Snapshot is a user's full financial picture, fed to the advisory report.
type Snapshot struct {
	Transactions []*Transaction `json:"transactions"`
	Budgets      []*Budget      `json:"budgets"`
	Goals        []*Goal        `json:"goals"`
	Investments  []*Investment  `json:"investments"`
}

// DateOnly normalizes t to midnight UTC. All calendar-day fields (transaction
// dates, rule cursors) are stored in this form.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
