package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pravs-cyber/finances/internal/model"
)

// Collection names. One collection per record type; records carry their
// owner's user ID so every query is namespaced per user.
const (
	colTransactions = "transactions"
	colCategories   = "categories"
	colRecurring    = "recurringTransactions"
	colBudgets      = "budgets"
	colGoals        = "goals"
	colInvestments  = "investments"
	colUsers        = "users"
)

// FirestoreStore implements the Store interface using Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store.
func NewFirestoreStore(client *firestore.Client) Store {
	return &FirestoreStore{client: client}
}

func notFound(err error, kind, id string) error {
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return err
}

// applyCursorPagination adds OrderBy + StartAfter + Limit to a query for
// cursor-based pagination. It fetches pageSize+1 docs so the caller can detect
// whether a next page exists.
func applyCursorPagination(query firestore.Query, pageSize int32, pageToken string) (firestore.Query, error) {
	query = query.OrderBy(firestore.DocumentID, firestore.Asc)

	if pageToken != "" {
		docID, err := DecodePageToken(pageToken)
		if err != nil {
			return query, fmt.Errorf("invalid page token: %w", err)
		}
		query = query.StartAfter(docID)
	}

	if pageSize <= 0 {
		pageSize = 100
	}
	query = query.Limit(int(pageSize) + 1)
	return query, nil
}

// Transaction operations

func (s *FirestoreStore) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	_, err := s.client.Collection(colTransactions).Doc(tx.ID).Set(ctx, tx)
	return err
}

func (s *FirestoreStore) GetTransaction(ctx context.Context, txID string) (*model.Transaction, error) {
	doc, err := s.client.Collection(colTransactions).Doc(txID).Get(ctx)
	if err != nil {
		return nil, notFound(err, "transaction", txID)
	}
	var tx model.Transaction
	if err := doc.DataTo(&tx); err != nil {
		return nil, fmt.Errorf("failed to parse transaction: %w", err)
	}
	return &tx, nil
}

func (s *FirestoreStore) UpdateTransaction(ctx context.Context, tx *model.Transaction) error {
	_, err := s.client.Collection(colTransactions).Doc(tx.ID).Set(ctx, tx)
	return err
}

func (s *FirestoreStore) DeleteTransaction(ctx context.Context, txID string) error {
	_, err := s.client.Collection(colTransactions).Doc(txID).Delete(ctx)
	return err
}

func (s *FirestoreStore) ListTransactions(ctx context.Context, userID string, startDate, endDate *time.Time, pageSize int32, pageToken string) ([]*model.Transaction, string, error) {
	query := s.client.Collection(colTransactions).Query

	// Field names must match the Go struct field names; that is how Firestore
	// serializes plain structs.
	if userID != "" {
		query = query.Where("UserID", "==", userID)
	}

	hasDateFilter := startDate != nil || endDate != nil
	if startDate != nil {
		query = query.Where("Date", ">=", *startDate)
	}
	if endDate != nil {
		query = query.Where("Date", "<=", *endDate)
	}

	var err error
	if hasDateFilter {
		query, err = s.applyDateAwarePagination(ctx, query, colTransactions, pageSize, pageToken)
	} else {
		query, err = applyCursorPagination(query, pageSize, pageToken)
	}
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list transactions: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 100
	}
	var nextToken string
	if int32(len(docs)) > pageSize {
		docs = docs[:pageSize]
		nextToken = EncodePageToken(docs[len(docs)-1].Ref.ID)
	}

	result := make([]*model.Transaction, 0, len(docs))
	for _, doc := range docs {
		var tx model.Transaction
		if err := doc.DataTo(&tx); err != nil {
			return nil, "", fmt.Errorf("failed to parse transaction: %w", err)
		}
		result = append(result, &tx)
	}
	return result, nextToken, nil
}

// applyDateAwarePagination handles pagination for queries with date range
// filters. Firestore requires OrderBy on inequality fields first, so we use
// OrderBy("Date") + OrderBy(__name__). The cursor includes both the Date value
// and the document ID.
func (s *FirestoreStore) applyDateAwarePagination(ctx context.Context, query firestore.Query, collection string, pageSize int32, pageToken string) (firestore.Query, error) {
	query = query.OrderBy("Date", firestore.Asc).OrderBy(firestore.DocumentID, firestore.Asc)

	if pageToken != "" {
		docID, err := DecodePageToken(pageToken)
		if err != nil {
			return query, fmt.Errorf("invalid page token: %w", err)
		}
		cursorDoc, err := s.client.Collection(collection).Doc(docID).Get(ctx)
		if err != nil {
			return query, fmt.Errorf("failed to fetch cursor document: %w", err)
		}
		dateVal := cursorDoc.Data()["Date"]
		query = query.StartAfter(dateVal, docID)
	}

	if pageSize <= 0 {
		pageSize = 100
	}
	query = query.Limit(int(pageSize) + 1)
	return query, nil
}

// Category operations

func (s *FirestoreStore) CreateCategory(ctx context.Context, category *model.Category) error {
	_, err := s.client.Collection(colCategories).Doc(category.ID).Set(ctx, category)
	return err
}

func (s *FirestoreStore) GetCategory(ctx context.Context, categoryID string) (*model.Category, error) {
	doc, err := s.client.Collection(colCategories).Doc(categoryID).Get(ctx)
	if err != nil {
		return nil, notFound(err, "category", categoryID)
	}
	var c model.Category
	if err := doc.DataTo(&c); err != nil {
		return nil, fmt.Errorf("failed to parse category: %w", err)
	}
	return &c, nil
}

func (s *FirestoreStore) UpdateCategory(ctx context.Context, category *model.Category) error {
	_, err := s.client.Collection(colCategories).Doc(category.ID).Set(ctx, category)
	return err
}

func (s *FirestoreStore) DeleteCategory(ctx context.Context, categoryID string) error {
	_, err := s.client.Collection(colCategories).Doc(categoryID).Delete(ctx)
	return err
}

func (s *FirestoreStore) ListCategories(ctx context.Context, userID string) ([]*model.Category, error) {
	query := s.client.Collection(colCategories).Query
	if userID != "" {
		query = query.Where("UserID", "==", userID)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	result := make([]*model.Category, 0, len(docs))
	for _, doc := range docs {
		var c model.Category
		if err := doc.DataTo(&c); err != nil {
			return nil, fmt.Errorf("failed to parse category: %w", err)
		}
		result = append(result, &c)
	}
	return result, nil
}

// Recurring transaction operations

func (s *FirestoreStore) CreateRecurringTransaction(ctx context.Context, rt *model.RecurringTransaction) error {
	_, err := s.client.Collection(colRecurring).Doc(rt.ID).Set(ctx, rt)
	return err
}

func (s *FirestoreStore) GetRecurringTransaction(ctx context.Context, rtID string) (*model.RecurringTransaction, error) {
	doc, err := s.client.Collection(colRecurring).Doc(rtID).Get(ctx)
	if err != nil {
		return nil, notFound(err, "recurring transaction", rtID)
	}
	var rt model.RecurringTransaction
	if err := doc.DataTo(&rt); err != nil {
		return nil, fmt.Errorf("failed to parse recurring transaction: %w", err)
	}
	return &rt, nil
}

func (s *FirestoreStore) UpdateRecurringTransaction(ctx context.Context, rt *model.RecurringTransaction) error {
	_, err := s.client.Collection(colRecurring).Doc(rt.ID).Set(ctx, rt)
	return err
}

func (s *FirestoreStore) DeleteRecurringTransaction(ctx context.Context, rtID string) error {
	_, err := s.client.Collection(colRecurring).Doc(rtID).Delete(ctx)
	return err
}

func (s *FirestoreStore) ListRecurringTransactions(ctx context.Context, userID string, status model.RuleStatus, pageSize int32, pageToken string) ([]*model.RecurringTransaction, string, error) {
	query := s.client.Collection(colRecurring).Query
	if userID != "" {
		query = query.Where("UserID", "==", userID)
	}
	if status != "" {
		query = query.Where("Status", "==", string(status))
	}

	query, err := applyCursorPagination(query, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list recurring transactions: %w", err)
	}

	if pageSize <= 0 {
		pageSize = 100
	}
	var nextToken string
	if int32(len(docs)) > pageSize {
		docs = docs[:pageSize]
		nextToken = EncodePageToken(docs[len(docs)-1].Ref.ID)
	}

	result := make([]*model.RecurringTransaction, 0, len(docs))
	for _, doc := range docs {
		var rt model.RecurringTransaction
		if err := doc.DataTo(&rt); err != nil {
			return nil, "", fmt.Errorf("failed to parse recurring transaction: %w", err)
		}
		result = append(result, &rt)
	}
	return result, nextToken, nil
}

// ApplyMaterialization commits the new transactions and the advanced rule
// cursors in one Firestore write batch, so both halves of the materializer's
// output land atomically.
func (s *FirestoreStore) ApplyMaterialization(ctx context.Context, txs []*model.Transaction, rules []*model.RecurringTransaction) error {
	batch := s.client.Batch()
	for _, tx := range txs {
		batch.Set(s.client.Collection(colTransactions).Doc(tx.ID), tx)
	}
	for _, rt := range rules {
		batch.Set(s.client.Collection(colRecurring).Doc(rt.ID), rt)
	}
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("failed to apply materialization: %w", err)
	}
	return nil
}

// Budget operations

func (s *FirestoreStore) CreateBudget(ctx context.Context, budget *model.Budget) error {
	_, err := s.client.Collection(colBudgets).Doc(budget.ID).Set(ctx, budget)
	return err
}

func (s *FirestoreStore) GetBudget(ctx context.Context, budgetID string) (*model.Budget, error) {
	doc, err := s.client.Collection(colBudgets).Doc(budgetID).Get(ctx)
	if err != nil {
		return nil, notFound(err, "budget", budgetID)
	}
	var b model.Budget
	if err := doc.DataTo(&b); err != nil {
		return nil, fmt.Errorf("failed to parse budget: %w", err)
	}
	return &b, nil
}

func (s *FirestoreStore) UpdateBudget(ctx context.Context, budget *model.Budget) error {
	_, err := s.client.Collection(colBudgets).Doc(budget.ID).Set(ctx, budget)
	return err
}

func (s *FirestoreStore) DeleteBudget(ctx context.Context, budgetID string) error {
	_, err := s.client.Collection(colBudgets).Doc(budgetID).Delete(ctx)
	return err
}

func (s *FirestoreStore) ListBudgets(ctx context.Context, userID string) ([]*model.Budget, error) {
	query := s.client.Collection(colBudgets).Query
	if userID != "" {
		query = query.Where("UserID", "==", userID)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list budgets: %w", err)
	}

	result := make([]*model.Budget, 0, len(docs))
	for _, doc := range docs {
		var b model.Budget
		if err := doc.DataTo(&b); err != nil {
			return nil, fmt.Errorf("failed to parse budget: %w", err)
		}
		result = append(result, &b)
	}
	return result, nil
}

// Goal operations

func (s *FirestoreStore) CreateGoal(ctx context.Context, goal *model.Goal) error {
	_, err := s.client.Collection(colGoals).Doc(goal.ID).Set(ctx, goal)
	return err
}

func (s *FirestoreStore) GetGoal(ctx context.Context, goalID string) (*model.Goal, error) {
	doc, err := s.client.Collection(colGoals).Doc(goalID).Get(ctx)
	if err != nil {
		return nil, notFound(err, "goal", goalID)
	}
	var g model.Goal
	if err := doc.DataTo(&g); err != nil {
		return nil, fmt.Errorf("failed to parse goal: %w", err)
	}
	return &g, nil
}

func (s *FirestoreStore) UpdateGoal(ctx context.Context, goal *model.Goal) error {
	_, err := s.client.Collection(colGoals).Doc(goal.ID).Set(ctx, goal)
	return err
}

func (s *FirestoreStore) DeleteGoal(ctx context.Context, goalID string) error {
	_, err := s.client.Collection(colGoals).Doc(goalID).Delete(ctx)
	return err
}

func (s *FirestoreStore) ListGoals(ctx context.Context, userID string) ([]*model.Goal, error) {
	query := s.client.Collection(colGoals).Query
	if userID != "" {
		query = query.Where("UserID", "==", userID)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	result := make([]*model.Goal, 0, len(docs))
	for _, doc := range docs {
		var g model.Goal
		if err := doc.DataTo(&g); err != nil {
			return nil, fmt.Errorf("failed to parse goal: %w", err)
		}
		result = append(result, &g)
	}
	return result, nil
}

// Investment operations

func (s *FirestoreStore) CreateInvestment(ctx context.Context, inv *model.Investment) error {
	_, err := s.client.Collection(colInvestments).Doc(inv.ID).Set(ctx, inv)
	return err
}

func (s *FirestoreStore) GetInvestment(ctx context.Context, invID string) (*model.Investment, error) {
	doc, err := s.client.Collection(colInvestments).Doc(invID).Get(ctx)
	if err != nil {
		return nil, notFound(err, "investment", invID)
	}
	var inv model.Investment
	if err := doc.DataTo(&inv); err != nil {
		return nil, fmt.Errorf("failed to parse investment: %w", err)
	}
	return &inv, nil
}

func (s *FirestoreStore) UpdateInvestment(ctx context.Context, inv *model.Investment) error {
	_, err := s.client.Collection(colInvestments).Doc(inv.ID).Set(ctx, inv)
	return err
}

func (s *FirestoreStore) DeleteInvestment(ctx context.Context, invID string) error {
	_, err := s.client.Collection(colInvestments).Doc(invID).Delete(ctx)
	return err
}

func (s *FirestoreStore) ListInvestments(ctx context.Context, userID string) ([]*model.Investment, error) {
	query := s.client.Collection(colInvestments).Query
	if userID != "" {
		query = query.Where("UserID", "==", userID)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}

	result := make([]*model.Investment, 0, len(docs))
	for _, doc := range docs {
		var inv model.Investment
		if err := doc.DataTo(&inv); err != nil {
			return nil, fmt.Errorf("failed to parse investment: %w", err)
		}
		result = append(result, &inv)
	}
	return result, nil
}

// User operations

func (s *FirestoreStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	doc, err := s.client.Collection(colUsers).Doc(userID).Get(ctx)
	if err != nil {
		return nil, notFound(err, "user", userID)
	}
	var u model.User
	if err := doc.DataTo(&u); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	return &u, nil
}

func (s *FirestoreStore) UpdateUser(ctx context.Context, user *model.User) error {
	_, err := s.client.Collection(colUsers).Doc(user.ID).Set(ctx, user)
	return err
}
