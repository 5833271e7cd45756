package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pravs-cyber/finances/internal/model"
)

func seedRule(t *testing.T, svc *FinanceService, rt *model.RecurringTransaction) {
	t.Helper()
	rt.UserID = testUserID
	if rt.Status == "" {
		rt.Status = model.RuleStatusActive
	}
	require.NoError(t, svc.store.CreateRecurringTransaction(testCtx(), rt))
}

func TestProcessRecurring_EmitsAndAdvances(t *testing.T) {
	svc, mem := newTestService()
	ctx := testCtx()

	seedRule(t, svc, &model.RecurringTransaction{
		ID:          "rule-1",
		Description: "Rent",
		Amount:      1800,
		Type:        model.TransactionTypeExpense,
		CategoryID:  "cat-housing",
		Frequency:   model.FrequencyMonthly,
		StartDate:   date(2024, 1, 15),
		NextDueDate: date(2024, 1, 15),
	})

	result, err := svc.ProcessRecurring(ctx, testUserID, date(2024, 4, 20))
	require.NoError(t, err)
	assert.Equal(t, 4, result.EmittedCount)
	assert.Equal(t, 1, result.RuleCount)
	assert.Equal(t, 0, result.EndedCount)

	txs, _, err := mem.ListTransactions(ctx, testUserID, nil, nil, 100, "")
	require.NoError(t, err)
	require.Len(t, txs, 4)
	for _, tx := range txs {
		assert.NotEmpty(t, tx.ID)
		assert.Equal(t, testUserID, tx.UserID)
		assert.Equal(t, "Rent", tx.Description)
	}

	rule, err := mem.GetRecurringTransaction(ctx, "rule-1")
	require.NoError(t, err)
	assert.Equal(t, date(2024, 5, 15), rule.NextDueDate)
	assert.Equal(t, model.RuleStatusActive, rule.Status)
}

func TestProcessRecurring_SecondPassEmitsNothing(t *testing.T) {
	svc, mem := newTestService()
	ctx := testCtx()

	seedRule(t, svc, &model.RecurringTransaction{
		ID:          "rule-1",
		Description: "Coffee",
		Amount:      4.50,
		Type:        model.TransactionTypeExpense,
		Frequency:   model.FrequencyDaily,
		StartDate:   date(2024, 3, 1),
		NextDueDate: date(2024, 3, 1),
	})

	today := date(2024, 3, 5)
	first, err := svc.ProcessRecurring(ctx, testUserID, today)
	require.NoError(t, err)
	assert.Equal(t, 5, first.EmittedCount)

	second, err := svc.ProcessRecurring(ctx, testUserID, today)
	require.NoError(t, err)
	assert.Equal(t, 0, second.EmittedCount)

	txs, _, err := mem.ListTransactions(ctx, testUserID, nil, nil, 100, "")
	require.NoError(t, err)
	assert.Len(t, txs, 5)
}

func TestProcessRecurring_MarksExhaustedRuleEnded(t *testing.T) {
	svc, mem := newTestService()
	ctx := testCtx()

	end := date(2024, 6, 1)
	seedRule(t, svc, &model.RecurringTransaction{
		ID:          "rule-1",
		Description: "Domain renewal",
		Amount:      20,
		Type:        model.TransactionTypeExpense,
		Frequency:   model.FrequencyYearly,
		StartDate:   date(2024, 1, 1),
		NextDueDate: date(2024, 1, 1),
		EndDate:     &end,
	})

	result, err := svc.ProcessRecurring(ctx, testUserID, date(2025, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, result.EmittedCount)
	assert.Equal(t, 1, result.EndedCount)

	rule, err := mem.GetRecurringTransaction(ctx, "rule-1")
	require.NoError(t, err)
	assert.Equal(t, model.RuleStatusEnded, rule.Status)

	// An ended rule is no longer fetched, so nothing more ever comes out.
	again, err := svc.ProcessRecurring(ctx, testUserID, date(2030, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, again.EmittedCount)
}

func TestProcessRecurring_OnlyTouchesRequestedUser(t *testing.T) {
	svc, mem := newTestService()
	ctx := testCtx()

	seedRule(t, svc, &model.RecurringTransaction{
		ID:          "rule-mine",
		Description: "Mine",
		Amount:      10,
		Type:        model.TransactionTypeExpense,
		Frequency:   model.FrequencyDaily,
		StartDate:   date(2024, 3, 1),
		NextDueDate: date(2024, 3, 1),
	})
	require.NoError(t, mem.CreateRecurringTransaction(ctx, &model.RecurringTransaction{
		ID:          "rule-theirs",
		UserID:      "someone-else",
		Description: "Theirs",
		Amount:      10,
		Type:        model.TransactionTypeExpense,
		Frequency:   model.FrequencyDaily,
		StartDate:   date(2024, 3, 1),
		NextDueDate: date(2024, 3, 1),
		Status:      model.RuleStatusActive,
	}))

	_, err := svc.ProcessRecurring(ctx, testUserID, date(2024, 3, 1))
	require.NoError(t, err)

	theirs, err := mem.GetRecurringTransaction(ctx, "rule-theirs")
	require.NoError(t, err)
	assert.Equal(t, date(2024, 3, 1), theirs.NextDueDate, "other users' rules stay put")
}
