package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pravs-cyber/finances/internal/model"
)

// MemoryStore implements Store with in-memory maps. It is used for local
// development and tests.
type MemoryStore struct {
	mu sync.RWMutex

	transactions map[string]*model.Transaction
	categories   map[string]*model.Category
	recurring    map[string]*model.RecurringTransaction
	budgets      map[string]*model.Budget
	goals        map[string]*model.Goal
	investments  map[string]*model.Investment
	users        map[string]*model.User
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[string]*model.Transaction),
		categories:   make(map[string]*model.Category),
		recurring:    make(map[string]*model.RecurringTransaction),
		budgets:      make(map[string]*model.Budget),
		goals:        make(map[string]*model.Goal),
		investments:  make(map[string]*model.Investment),
		users:        make(map[string]*model.User),
	}
}

// paginateIDs applies cursor-based pagination to a sorted slice of IDs.
// Returns the paginated IDs and the next page token (empty if no more pages).
func paginateIDs(ids []string, pageSize int32, pageToken string) ([]string, string) {
	if pageSize <= 0 {
		pageSize = 100
	}

	sort.Strings(ids)

	startIdx := 0
	if pageToken != "" {
		cursorID, err := DecodePageToken(pageToken)
		if err == nil {
			for i, id := range ids {
				if id > cursorID {
					startIdx = i
					break
				}
				if i == len(ids)-1 {
					return nil, ""
				}
			}
		}
	}

	ids = ids[startIdx:]

	var nextToken string
	if int32(len(ids)) > pageSize {
		nextToken = EncodePageToken(ids[pageSize-1])
		ids = ids[:pageSize]
	}

	return ids, nextToken
}

// Transaction operations

func (m *MemoryStore) CreateTransaction(ctx context.Context, tx *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	m.transactions[tx.ID] = tx
	return nil
}

func (m *MemoryStore) GetTransaction(ctx context.Context, txID string) (*model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tx, ok := m.transactions[txID]
	if !ok {
		return nil, fmt.Errorf("transaction %s: %w", txID, ErrNotFound)
	}
	return tx, nil
}

func (m *MemoryStore) UpdateTransaction(ctx context.Context, tx *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transactions[tx.ID]; !ok {
		return fmt.Errorf("transaction %s: %w", tx.ID, ErrNotFound)
	}
	m.transactions[tx.ID] = tx
	return nil
}

func (m *MemoryStore) DeleteTransaction(ctx context.Context, txID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transactions[txID]; !ok {
		return fmt.Errorf("transaction %s: %w", txID, ErrNotFound)
	}
	delete(m.transactions, txID)
	return nil
}

func (m *MemoryStore) ListTransactions(ctx context.Context, userID string, startDate, endDate *time.Time, pageSize int32, pageToken string) ([]*model.Transaction, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for id, tx := range m.transactions {
		if userID != "" && tx.UserID != userID {
			continue
		}
		if startDate != nil && tx.Date.Before(*startDate) {
			continue
		}
		if endDate != nil && tx.Date.After(*endDate) {
			continue
		}
		ids = append(ids, id)
	}

	ids, nextToken := paginateIDs(ids, pageSize, pageToken)

	result := make([]*model.Transaction, 0, len(ids))
	for _, id := range ids {
		result = append(result, m.transactions[id])
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date.Equal(result[j].Date) {
			return result[i].ID < result[j].ID
		}
		return result[i].Date.Before(result[j].Date)
	})
	return result, nextToken, nil
}

// Category operations

func (m *MemoryStore) CreateCategory(ctx context.Context, category *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	m.categories[category.ID] = category
	return nil
}

func (m *MemoryStore) GetCategory(ctx context.Context, categoryID string) (*model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.categories[categoryID]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", categoryID, ErrNotFound)
	}
	return c, nil
}

func (m *MemoryStore) UpdateCategory(ctx context.Context, category *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[category.ID]; !ok {
		return fmt.Errorf("category %s: %w", category.ID, ErrNotFound)
	}
	m.categories[category.ID] = category
	return nil
}

func (m *MemoryStore) DeleteCategory(ctx context.Context, categoryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[categoryID]; !ok {
		return fmt.Errorf("category %s: %w", categoryID, ErrNotFound)
	}
	delete(m.categories, categoryID)
	return nil
}

func (m *MemoryStore) ListCategories(ctx context.Context, userID string) ([]*model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*model.Category
	for _, c := range m.categories {
		if userID == "" || c.UserID == userID {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// Recurring transaction operations

func (m *MemoryStore) CreateRecurringTransaction(ctx context.Context, rt *model.RecurringTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rt.ID == "" {
		rt.ID = uuid.New().String()
	}
	m.recurring[rt.ID] = rt
	return nil
}

func (m *MemoryStore) GetRecurringTransaction(ctx context.Context, rtID string) (*model.RecurringTransaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rt, ok := m.recurring[rtID]
	if !ok {
		return nil, fmt.Errorf("recurring transaction %s: %w", rtID, ErrNotFound)
	}
	return rt, nil
}

func (m *MemoryStore) UpdateRecurringTransaction(ctx context.Context, rt *model.RecurringTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.recurring[rt.ID]; !ok {
		return fmt.Errorf("recurring transaction %s: %w", rt.ID, ErrNotFound)
	}
	m.recurring[rt.ID] = rt
	return nil
}

func (m *MemoryStore) DeleteRecurringTransaction(ctx context.Context, rtID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.recurring[rtID]; !ok {
		return fmt.Errorf("recurring transaction %s: %w", rtID, ErrNotFound)
	}
	delete(m.recurring, rtID)
	return nil
}

func (m *MemoryStore) ListRecurringTransactions(ctx context.Context, userID string, status model.RuleStatus, pageSize int32, pageToken string) ([]*model.RecurringTransaction, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for id, rt := range m.recurring {
		if userID != "" && rt.UserID != userID {
			continue
		}
		if status != "" && rt.Status != status {
			continue
		}
		ids = append(ids, id)
	}

	ids, nextToken := paginateIDs(ids, pageSize, pageToken)

	result := make([]*model.RecurringTransaction, 0, len(ids))
	for _, id := range ids {
		result = append(result, m.recurring[id])
	}
	return result, nextToken, nil
}

// ApplyMaterialization writes the new transactions and the advanced rule
// cursors under a single lock acquisition, so a concurrent reader never sees
// one half of the update.
func (m *MemoryStore) ApplyMaterialization(ctx context.Context, txs []*model.Transaction, rules []*model.RecurringTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, rt := range rules {
		if _, ok := m.recurring[rt.ID]; !ok {
			return fmt.Errorf("recurring transaction %s: %w", rt.ID, ErrNotFound)
		}
	}

	for _, tx := range txs {
		if tx.ID == "" {
			tx.ID = uuid.New().String()
		}
		m.transactions[tx.ID] = tx
	}
	for _, rt := range rules {
		m.recurring[rt.ID] = rt
	}
	return nil
}

// Budget operations

func (m *MemoryStore) CreateBudget(ctx context.Context, budget *model.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if budget.ID == "" {
		budget.ID = uuid.New().String()
	}
	m.budgets[budget.ID] = budget
	return nil
}

func (m *MemoryStore) GetBudget(ctx context.Context, budgetID string) (*model.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.budgets[budgetID]
	if !ok {
		return nil, fmt.Errorf("budget %s: %w", budgetID, ErrNotFound)
	}
	return b, nil
}

func (m *MemoryStore) UpdateBudget(ctx context.Context, budget *model.Budget) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.budgets[budget.ID]; !ok {
		return fmt.Errorf("budget %s: %w", budget.ID, ErrNotFound)
	}
	m.budgets[budget.ID] = budget
	return nil
}

func (m *MemoryStore) DeleteBudget(ctx context.Context, budgetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.budgets[budgetID]; !ok {
		return fmt.Errorf("budget %s: %w", budgetID, ErrNotFound)
	}
	delete(m.budgets, budgetID)
	return nil
}

func (m *MemoryStore) ListBudgets(ctx context.Context, userID string) ([]*model.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*model.Budget
	for _, b := range m.budgets {
		if userID == "" || b.UserID == userID {
			result = append(result, b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Goal operations

func (m *MemoryStore) CreateGoal(ctx context.Context, goal *model.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if goal.ID == "" {
		goal.ID = uuid.New().String()
	}
	m.goals[goal.ID] = goal
	return nil
}

func (m *MemoryStore) GetGoal(ctx context.Context, goalID string) (*model.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.goals[goalID]
	if !ok {
		return nil, fmt.Errorf("goal %s: %w", goalID, ErrNotFound)
	}
	return g, nil
}

func (m *MemoryStore) UpdateGoal(ctx context.Context, goal *model.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.goals[goal.ID]; !ok {
		return fmt.Errorf("goal %s: %w", goal.ID, ErrNotFound)
	}
	m.goals[goal.ID] = goal
	return nil
}

func (m *MemoryStore) DeleteGoal(ctx context.Context, goalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.goals[goalID]; !ok {
		return fmt.Errorf("goal %s: %w", goalID, ErrNotFound)
	}
	delete(m.goals, goalID)
	return nil
}

func (m *MemoryStore) ListGoals(ctx context.Context, userID string) ([]*model.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*model.Goal
	for _, g := range m.goals {
		if userID == "" || g.UserID == userID {
			result = append(result, g)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Investment operations

func (m *MemoryStore) CreateInvestment(ctx context.Context, inv *model.Investment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	m.investments[inv.ID] = inv
	return nil
}

func (m *MemoryStore) GetInvestment(ctx context.Context, invID string) (*model.Investment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inv, ok := m.investments[invID]
	if !ok {
		return nil, fmt.Errorf("investment %s: %w", invID, ErrNotFound)
	}
	return inv, nil
}

func (m *MemoryStore) UpdateInvestment(ctx context.Context, inv *model.Investment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.investments[inv.ID]; !ok {
		return fmt.Errorf("investment %s: %w", inv.ID, ErrNotFound)
	}
	m.investments[inv.ID] = inv
	return nil
}

func (m *MemoryStore) DeleteInvestment(ctx context.Context, invID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.investments[invID]; !ok {
		return fmt.Errorf("investment %s: %w", invID, ErrNotFound)
	}
	delete(m.investments, invID)
	return nil
}

func (m *MemoryStore) ListInvestments(ctx context.Context, userID string) ([]*model.Investment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*model.Investment
	for _, inv := range m.investments {
		if userID == "" || inv.UserID == userID {
			result = append(result, inv)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// User operations

func (m *MemoryStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return u, nil
}

func (m *MemoryStore) UpdateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[user.ID] = user
	return nil
}
