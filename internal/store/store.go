// Package store defines persistence for the domain records and provides
// in-memory and Firestore-backed implementations.
package store

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/pravs-cyber/finances/internal/model"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for all database operations used by the service.
// Every read and write is scoped to a single user; implementations isolate one
// user's records from another's.
type Store interface {
	// Transaction operations
	CreateTransaction(ctx context.Context, tx *model.Transaction) error
	GetTransaction(ctx context.Context, txID string) (*model.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *model.Transaction) error
	DeleteTransaction(ctx context.Context, txID string) error
	ListTransactions(ctx context.Context, userID string, startDate, endDate *time.Time, pageSize int32, pageToken string) ([]*model.Transaction, string, error)

	// Category operations
	CreateCategory(ctx context.Context, category *model.Category) error
	GetCategory(ctx context.Context, categoryID string) (*model.Category, error)
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, categoryID string) error
	ListCategories(ctx context.Context, userID string) ([]*model.Category, error)

	// Recurring transaction operations
	CreateRecurringTransaction(ctx context.Context, rt *model.RecurringTransaction) error
	GetRecurringTransaction(ctx context.Context, rtID string) (*model.RecurringTransaction, error)
	UpdateRecurringTransaction(ctx context.Context, rt *model.RecurringTransaction) error
	DeleteRecurringTransaction(ctx context.Context, rtID string) error
	ListRecurringTransactions(ctx context.Context, userID string, status model.RuleStatus, pageSize int32, pageToken string) ([]*model.RecurringTransaction, string, error)

	// ApplyMaterialization persists the materializer's dual output as a single
	// logical update: the new transactions and the advanced rule cursors land
	// together or not at all.
	ApplyMaterialization(ctx context.Context, txs []*model.Transaction, rules []*model.RecurringTransaction) error

	// Budget operations
	CreateBudget(ctx context.Context, budget *model.Budget) error
	GetBudget(ctx context.Context, budgetID string) (*model.Budget, error)
	UpdateBudget(ctx context.Context, budget *model.Budget) error
	DeleteBudget(ctx context.Context, budgetID string) error
	ListBudgets(ctx context.Context, userID string) ([]*model.Budget, error)

	// Goal operations
	CreateGoal(ctx context.Context, goal *model.Goal) error
	GetGoal(ctx context.Context, goalID string) (*model.Goal, error)
	UpdateGoal(ctx context.Context, goal *model.Goal) error
	DeleteGoal(ctx context.Context, goalID string) error
	ListGoals(ctx context.Context, userID string) ([]*model.Goal, error)

	// Investment operations
	CreateInvestment(ctx context.Context, inv *model.Investment) error
	GetInvestment(ctx context.Context, invID string) (*model.Investment, error)
	UpdateInvestment(ctx context.Context, inv *model.Investment) error
	DeleteInvestment(ctx context.Context, invID string) error
	ListInvestments(ctx context.Context, userID string) ([]*model.Investment, error)

	// User operations
	GetUser(ctx context.Context, userID string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
}

// EncodePageToken encodes a document ID into a page token.
func EncodePageToken(docID string) string {
	if docID == "" {
		return ""
	}
	return base64.URLEncoding.EncodeToString([]byte(docID))
}

// DecodePageToken decodes a page token back to a document ID.
func DecodePageToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
