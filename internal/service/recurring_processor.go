package service

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pravs-cyber/finances/internal/auth"
	"github.com/pravs-cyber/finances/internal/model"
)

// ProcessRecurringResult summarizes one materialization pass.
type ProcessRecurringResult struct {
	EmittedCount int `json:"emittedCount"`
	RuleCount    int `json:"ruleCount"`
	EndedCount   int `json:"endedCount"`
}

// handleProcessRecurring runs a materialization pass for the caller. Clients
// invoke it on session start, before the first transaction list read, so
// newly due occurrences are visible immediately.
func (s *FinanceService) handleProcessRecurring(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.ProcessRecurring(r.Context(), claims.UID, time.Now().UTC())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ProcessRecurring materializes every due occurrence of the user's active
// rules as of today. The new transactions and the advanced cursors are
// persisted as one logical update, so a re-run after a failed pass starts
// from the same cursors and produces the same output.
func (s *FinanceService) ProcessRecurring(ctx context.Context, userID string, today time.Time) (*ProcessRecurringResult, error) {
	var rules []*model.RecurringTransaction
	pageToken := ""
	for {
		page, nextToken, err := s.store.ListRecurringTransactions(ctx, userID, model.RuleStatusActive, 1000, pageToken)
		if err != nil {
			return nil, err
		}
		rules = append(rules, page...)
		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}

	result := Materialize(today, rules)

	now := time.Now().UTC()
	for _, tx := range result.Transactions {
		tx.ID = uuid.NewString()
		tx.CreatedAt = now
		tx.UpdatedAt = now
	}

	// Rules whose advanced cursor passed their end date will never emit
	// again; flip them to ended so future passes stop fetching them.
	ended := 0
	for _, rule := range result.UpdatedRules {
		rule.UpdatedAt = now
		if rule.EndDate != nil && rule.NextDueDate.After(*rule.EndDate) {
			rule.Status = model.RuleStatusEnded
			ended++
		}
	}

	if err := s.store.ApplyMaterialization(ctx, result.Transactions, result.UpdatedRules); err != nil {
		return nil, err
	}

	for _, tx := range result.Transactions {
		s.indexTransaction(ctx, tx)
	}

	s.log.Info().
		Str("userId", userID).
		Int("emitted", len(result.Transactions)).
		Int("rulesAdvanced", len(result.UpdatedRules)).
		Int("ended", ended).
		Msg("recurring pass completed")

	return &ProcessRecurringResult{
		EmittedCount: len(result.Transactions),
		RuleCount:    len(result.UpdatedRules),
		EndedCount:   ended,
	}, nil
}
