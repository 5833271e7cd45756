package service

import (
	"time"

	"github.com/pravs-cyber/finances/internal/model"
)

// MaterializationResult is the dual output of a materialization pass: new
// ledger entries and the rules whose cursor advanced. Both must be persisted
// together; store.ApplyMaterialization does that.
type MaterializationResult struct {
	Transactions []*model.Transaction
	UpdatedRules []*model.RecurringTransaction
}

// Materialize converts calendar time passing into concrete ledger entries.
// It is a pure function: input rules are not mutated, the emitted
// transactions carry no IDs, and persistence is the caller's job.
//
// For each rule, one transaction is emitted per occurrence that became due at
// or before today, each dated at its own due date, and the rule's cursor is
// advanced past all of them. Running the pass twice with the same today
// therefore emits nothing the second time.
//
// A rule whose endDate is already before its cursor at pass start is skipped
// entirely: no emission, no cursor change. This guard keeps an expired rule
// from ever materializing again.
func Materialize(today time.Time, rules []*model.RecurringTransaction) MaterializationResult {
	today = model.DateOnly(today)

	var result MaterializationResult
	for _, orig := range rules {
		if !orig.Frequency.Valid() {
			continue
		}

		var end *time.Time
		if orig.EndDate != nil {
			e := model.DateOnly(*orig.EndDate)
			end = &e
		}

		next := model.DateOnly(orig.NextDueDate)

		if end != nil && end.Before(next) {
			continue
		}

		rule := orig.Clone()
		advanced := false

		for !next.After(today) && (end == nil || !next.After(*end)) {
			result.Transactions = append(result.Transactions, &model.Transaction{
				UserID:      rule.UserID,
				Date:        next,
				Description: rule.Description,
				Amount:      rule.Amount,
				Type:        rule.Type,
				CategoryID:  rule.CategoryID,
				Tags:        append([]string(nil), rule.Tags...),
			})

			next = advanceDueDate(next, rule.Frequency)
			advanced = true

			if end != nil && next.After(*end) {
				break
			}
		}

		if advanced {
			rule.NextDueDate = next
			result.UpdatedRules = append(result.UpdatedRules, rule)
		}
	}

	return result
}

// advanceDueDate steps a due date forward by one frequency period. Monthly
// and yearly steps use Go's native date normalization, so Jan 31 + 1 month
// lands on Mar 2 or Mar 3 rather than clamping to the end of February.
func advanceDueDate(t time.Time, f model.Frequency) time.Time {
	switch f {
	case model.FrequencyDaily:
		return t.AddDate(0, 0, 1)
	case model.FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case model.FrequencyMonthly:
		return t.AddDate(0, 1, 0)
	case model.FrequencyYearly:
		return t.AddDate(1, 0, 0)
	}
	return t
}
