package service

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pravs-cyber/finances/internal/auth"
	"github.com/pravs-cyber/finances/internal/model"
	"github.com/pravs-cyber/finances/internal/store"
)

func validateBudget(b *model.Budget) error {
	if b.CategoryID == "" {
		return errBadRequest("categoryId is required")
	}
	if b.Amount <= 0 {
		return errBadRequest("amount must be positive")
	}
	if !b.Period.Valid() {
		return errBadRequest("period must be one of daily, weekly, monthly, yearly")
	}
	if b.StartDate.IsZero() {
		return errBadRequest("startDate is required")
	}
	return nil
}

func (s *FinanceService) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var budget model.Budget
	if err := readJSON(r, &budget); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateBudget(&budget); err != nil {
		s.writeError(w, r, err)
		return
	}

	now := time.Now().UTC()
	budget.ID = uuid.NewString()
	budget.UserID = claims.UID
	budget.StartDate = model.DateOnly(budget.StartDate)
	budget.CreatedAt = now
	budget.UpdatedAt = now

	if err := s.store.CreateBudget(r.Context(), &budget); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, &budget)
}

type listBudgetsResponse struct {
	Budgets []*model.Budget `json:"budgets"`
}

func (s *FinanceService) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	budgets, err := s.store.ListBudgets(r.Context(), claims.UID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listBudgetsResponse{Budgets: budgets})
}

func (s *FinanceService) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	existing, err := s.ownedBudget(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var budget model.Budget
	if err := readJSON(r, &budget); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateBudget(&budget); err != nil {
		s.writeError(w, r, err)
		return
	}

	budget.ID = existing.ID
	budget.UserID = existing.UserID
	budget.StartDate = model.DateOnly(budget.StartDate)
	budget.CreatedAt = existing.CreatedAt
	budget.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateBudget(r.Context(), &budget); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &budget)
}

func (s *FinanceService) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	budget, err := s.ownedBudget(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.store.DeleteBudget(r.Context(), budget.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *FinanceService) handleBudgetProgress(w http.ResponseWriter, r *http.Request) {
	budget, err := s.ownedBudget(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	progress, err := s.budgetProgress(r.Context(), budget, time.Now().UTC())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

// budgetProgress sums the category's expenses inside the budget period
// containing asOf. Periods step from the budget's start date.
func (s *FinanceService) budgetProgress(ctx context.Context, budget *model.Budget, asOf time.Time) (*model.BudgetProgress, error) {
	periodStart, periodEnd := currentPeriod(budget.StartDate, budget.Period, model.DateOnly(asOf))

	spent := 0.0
	pageToken := ""
	for {
		txs, nextToken, err := s.store.ListTransactions(ctx, budget.UserID, &periodStart, &periodEnd, 500, pageToken)
		if err != nil {
			return nil, err
		}
		for _, tx := range txs {
			if tx.Type == model.TransactionTypeExpense && tx.CategoryID == budget.CategoryID {
				spent += tx.Amount
			}
		}
		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}

	remaining := budget.Amount - spent
	percent := 0.0
	if budget.Amount > 0 {
		percent = spent / budget.Amount * 100
	}

	return &model.BudgetProgress{
		BudgetID:    budget.ID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Spent:       spent,
		Remaining:   remaining,
		Percent:     percent,
	}, nil
}

// currentPeriod returns the [start, end] day range of the period containing
// asOf, stepping from the anchor date. asOf before the anchor clamps to the
// first period.
func currentPeriod(anchor time.Time, period model.Frequency, asOf time.Time) (time.Time, time.Time) {
	start := model.DateOnly(anchor)
	if asOf.Before(start) {
		return start, advanceDueDate(start, period).AddDate(0, 0, -1)
	}
	for {
		next := advanceDueDate(start, period)
		if next.After(asOf) {
			return start, next.AddDate(0, 0, -1)
		}
		start = next
	}
}

func (s *FinanceService) ownedBudget(r *http.Request) (*model.Budget, error) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		return nil, err
	}

	budget, err := s.store.GetBudget(r.Context(), r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	if budget.UserID != claims.UID {
		return nil, store.ErrNotFound
	}
	return budget, nil
}
