package service

import (
	"context"

	"github.com/pravs-cyber/finances/internal/model"
)

// buildSnapshot loads the user's full financial picture for the advisory
// report.
func (s *FinanceService) buildSnapshot(ctx context.Context, userID string) (*model.Snapshot, error) {
	snapshot := &model.Snapshot{}

	pageToken := ""
	for {
		txs, nextToken, err := s.store.ListTransactions(ctx, userID, nil, nil, 500, pageToken)
		if err != nil {
			return nil, err
		}
		snapshot.Transactions = append(snapshot.Transactions, txs...)
		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}

	var err error
	if snapshot.Budgets, err = s.store.ListBudgets(ctx, userID); err != nil {
		return nil, err
	}
	if snapshot.Goals, err = s.store.ListGoals(ctx, userID); err != nil {
		return nil, err
	}
	if snapshot.Investments, err = s.store.ListInvestments(ctx, userID); err != nil {
		return nil, err
	}

	return snapshot, nil
}
