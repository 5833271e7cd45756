package service

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pravs-cyber/finances/internal/auth"
	"github.com/pravs-cyber/finances/internal/model"
	"github.com/pravs-cyber/finances/internal/store"
)

func validateRecurring(rt *model.RecurringTransaction) error {
	if rt.Description == "" {
		return errBadRequest("description is required")
	}
	if rt.Amount <= 0 {
		return errBadRequest("amount must be positive")
	}
	if !rt.Type.Valid() {
		return errBadRequest("type must be %q or %q", model.TransactionTypeIncome, model.TransactionTypeExpense)
	}
	if !rt.Frequency.Valid() {
		return errBadRequest("frequency must be one of daily, weekly, monthly, yearly")
	}
	if rt.StartDate.IsZero() {
		return errBadRequest("startDate is required")
	}
	if rt.EndDate != nil && rt.EndDate.Before(rt.StartDate) {
		return errBadRequest("endDate must not be before startDate")
	}
	return nil
}

func (s *FinanceService) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var rt model.RecurringTransaction
	if err := readJSON(r, &rt); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateRecurring(&rt); err != nil {
		s.writeError(w, r, err)
		return
	}

	now := time.Now().UTC()
	rt.ID = uuid.NewString()
	rt.UserID = claims.UID
	rt.StartDate = model.DateOnly(rt.StartDate)
	// The cursor begins at the first occurrence.
	rt.NextDueDate = rt.StartDate
	if rt.EndDate != nil {
		end := model.DateOnly(*rt.EndDate)
		rt.EndDate = &end
	}
	rt.Status = model.RuleStatusActive
	rt.CreatedAt = now
	rt.UpdatedAt = now

	if err := s.store.CreateRecurringTransaction(r.Context(), &rt); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, &rt)
}

func (s *FinanceService) handleGetRecurring(w http.ResponseWriter, r *http.Request) {
	rt, err := s.ownedRecurring(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

type listRecurringResponse struct {
	RecurringTransactions []*model.RecurringTransaction `json:"recurringTransactions"`
	NextPageToken         string                        `json:"nextPageToken,omitempty"`
}

func (s *FinanceService) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := model.RuleStatus(r.URL.Query().Get("status"))
	pageSize := int32(parseIntParam(r, "pageSize", 100))

	rts, nextToken, err := s.store.ListRecurringTransactions(r.Context(), claims.UID, status, pageSize, r.URL.Query().Get("pageToken"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listRecurringResponse{RecurringTransactions: rts, NextPageToken: nextToken})
}

func (s *FinanceService) handleUpdateRecurring(w http.ResponseWriter, r *http.Request) {
	existing, err := s.ownedRecurring(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var rt model.RecurringTransaction
	if err := readJSON(r, &rt); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateRecurring(&rt); err != nil {
		s.writeError(w, r, err)
		return
	}

	rt.ID = existing.ID
	rt.UserID = existing.UserID
	rt.StartDate = model.DateOnly(rt.StartDate)
	if rt.EndDate != nil {
		end := model.DateOnly(*rt.EndDate)
		rt.EndDate = &end
	}
	// The cursor is owned by the materializer; user edits cannot rewind it
	// below the start date.
	if rt.NextDueDate.IsZero() {
		rt.NextDueDate = existing.NextDueDate
	} else {
		rt.NextDueDate = model.DateOnly(rt.NextDueDate)
	}
	if rt.NextDueDate.Before(rt.StartDate) {
		rt.NextDueDate = rt.StartDate
	}
	if rt.Status != model.RuleStatusActive && rt.Status != model.RuleStatusEnded {
		rt.Status = existing.Status
	}
	rt.CreatedAt = existing.CreatedAt
	rt.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateRecurringTransaction(r.Context(), &rt); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &rt)
}

func (s *FinanceService) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	rt, err := s.ownedRecurring(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// Already-materialized transactions are kept; deleting a rule only stops
	// future occurrences.
	if err := s.store.DeleteRecurringTransaction(r.Context(), rt.ID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *FinanceService) ownedRecurring(r *http.Request) (*model.RecurringTransaction, error) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		return nil, err
	}

	rt, err := s.store.GetRecurringTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	if rt.UserID != claims.UID {
		return nil, store.ErrNotFound
	}
	return rt, nil
}
