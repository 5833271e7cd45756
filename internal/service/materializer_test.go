package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pravs-cyber/finances/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dailyRule(start time.Time) *model.RecurringTransaction {
	return &model.RecurringTransaction{
		ID:          "rule-daily",
		UserID:      "user-1",
		Description: "Coffee",
		Amount:      4.50,
		Type:        model.TransactionTypeExpense,
		CategoryID:  "cat-food",
		Frequency:   model.FrequencyDaily,
		StartDate:   start,
		NextDueDate: start,
		Status:      model.RuleStatusActive,
	}
}

func TestMaterialize_DailyEmitsOnePerDay(t *testing.T) {
	start := date(2024, 3, 1)
	for _, n := range []int{0, 1, 5, 30} {
		rule := dailyRule(start)
		today := start.AddDate(0, 0, n)

		result := Materialize(today, []*model.RecurringTransaction{rule})

		require.Len(t, result.Transactions, n+1, "N=%d", n)
		for i, tx := range result.Transactions {
			assert.Equal(t, start.AddDate(0, 0, i), tx.Date)
			assert.Equal(t, "Coffee", tx.Description)
			assert.Equal(t, 4.50, tx.Amount)
			assert.Equal(t, model.TransactionTypeExpense, tx.Type)
			assert.Equal(t, "cat-food", tx.CategoryID)
			assert.Empty(t, tx.ID, "materializer must not assign IDs")
		}

		require.Len(t, result.UpdatedRules, 1)
		assert.Equal(t, start.AddDate(0, 0, n+1), result.UpdatedRules[0].NextDueDate)
	}
}

func TestMaterialize_Idempotent(t *testing.T) {
	rule := dailyRule(date(2024, 3, 1))
	today := date(2024, 3, 10)

	first := Materialize(today, []*model.RecurringTransaction{rule})
	require.NotEmpty(t, first.Transactions)
	require.Len(t, first.UpdatedRules, 1)

	second := Materialize(today, first.UpdatedRules)
	assert.Empty(t, second.Transactions)
	assert.Empty(t, second.UpdatedRules)
}

func TestMaterialize_YearlyEndDateBoundary(t *testing.T) {
	end := date(2024, 6, 1)
	rule := &model.RecurringTransaction{
		ID:          "rule-yearly",
		UserID:      "user-1",
		Description: "Domain renewal",
		Amount:      20,
		Type:        model.TransactionTypeExpense,
		CategoryID:  "cat-other",
		Frequency:   model.FrequencyYearly,
		StartDate:   date(2024, 1, 1),
		NextDueDate: date(2024, 1, 1),
		EndDate:     &end,
		Status:      model.RuleStatusActive,
	}

	result := Materialize(date(2025, 1, 1), []*model.RecurringTransaction{rule})

	require.Len(t, result.Transactions, 1)
	assert.Equal(t, date(2024, 1, 1), result.Transactions[0].Date)
	require.Len(t, result.UpdatedRules, 1)
	assert.Equal(t, date(2025, 1, 1), result.UpdatedRules[0].NextDueDate)

	// The advanced cursor is past endDate, so later passes emit nothing
	// no matter how far today moves.
	for _, today := range []time.Time{date(2025, 6, 1), date(2030, 1, 1)} {
		again := Materialize(today, result.UpdatedRules)
		assert.Empty(t, again.Transactions)
		assert.Empty(t, again.UpdatedRules)
	}
}

func TestMaterialize_SkipGuardLeavesRuleUntouched(t *testing.T) {
	end := date(2024, 1, 1)
	rule := &model.RecurringTransaction{
		ID:          "rule-expired",
		UserID:      "user-1",
		Description: "Old gym membership",
		Amount:      60,
		Type:        model.TransactionTypeExpense,
		CategoryID:  "cat-health",
		Frequency:   model.FrequencyMonthly,
		StartDate:   date(2023, 1, 1),
		NextDueDate: date(2024, 2, 1),
		EndDate:     &end,
		Status:      model.RuleStatusActive,
	}

	result := Materialize(date(2024, 6, 1), []*model.RecurringTransaction{rule})

	assert.Empty(t, result.Transactions)
	assert.Empty(t, result.UpdatedRules)
	assert.Equal(t, date(2024, 2, 1), rule.NextDueDate, "input rule must not be mutated")
}

func TestMaterialize_MultipleMissedMonths(t *testing.T) {
	rule := &model.RecurringTransaction{
		ID:          "rule-rent",
		UserID:      "user-1",
		Description: "Rent",
		Amount:      1800,
		Type:        model.TransactionTypeExpense,
		CategoryID:  "cat-housing",
		Frequency:   model.FrequencyMonthly,
		StartDate:   date(2024, 1, 15),
		NextDueDate: date(2024, 1, 15),
		Status:      model.RuleStatusActive,
	}

	result := Materialize(date(2024, 4, 20), []*model.RecurringTransaction{rule})

	require.Len(t, result.Transactions, 4)
	want := []time.Time{
		date(2024, 1, 15),
		date(2024, 2, 15),
		date(2024, 3, 15),
		date(2024, 4, 15),
	}
	for i, tx := range result.Transactions {
		assert.Equal(t, want[i], tx.Date)
	}

	require.Len(t, result.UpdatedRules, 1)
	assert.Equal(t, date(2024, 5, 15), result.UpdatedRules[0].NextDueDate)
}

func TestMaterialize_NotYetDue(t *testing.T) {
	rule := dailyRule(date(2024, 5, 1))

	result := Materialize(date(2024, 4, 30), []*model.RecurringTransaction{rule})

	assert.Empty(t, result.Transactions)
	assert.Empty(t, result.UpdatedRules)
}

func TestMaterialize_WeeklyStep(t *testing.T) {
	rule := &model.RecurringTransaction{
		ID:          "rule-weekly",
		UserID:      "user-1",
		Description: "Cleaner",
		Amount:      90,
		Type:        model.TransactionTypeExpense,
		CategoryID:  "cat-home",
		Frequency:   model.FrequencyWeekly,
		StartDate:   date(2024, 1, 1),
		NextDueDate: date(2024, 1, 1),
		Status:      model.RuleStatusActive,
	}

	result := Materialize(date(2024, 1, 21), []*model.RecurringTransaction{rule})

	require.Len(t, result.Transactions, 3)
	assert.Equal(t, date(2024, 1, 1), result.Transactions[0].Date)
	assert.Equal(t, date(2024, 1, 8), result.Transactions[1].Date)
	assert.Equal(t, date(2024, 1, 15), result.Transactions[2].Date)
	assert.Equal(t, date(2024, 1, 22), result.UpdatedRules[0].NextDueDate)
}

func TestMaterialize_MonthEndOverflowUsesNativeNormalization(t *testing.T) {
	rule := &model.RecurringTransaction{
		ID:          "rule-eom",
		UserID:      "user-1",
		Description: "Subscription",
		Amount:      15,
		Type:        model.TransactionTypeExpense,
		CategoryID:  "cat-ent",
		Frequency:   model.FrequencyMonthly,
		StartDate:   date(2024, 1, 31),
		NextDueDate: date(2024, 1, 31),
		Status:      model.RuleStatusActive,
	}

	result := Materialize(date(2024, 1, 31), []*model.RecurringTransaction{rule})

	require.Len(t, result.Transactions, 1)
	// Jan 31 + 1 month normalizes to Mar 2 in a leap year.
	assert.Equal(t, date(2024, 3, 2), result.UpdatedRules[0].NextDueDate)
}
