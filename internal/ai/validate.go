package ai

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ExtractedTransaction is one transaction recovered from a model response.
// Date is a YYYY-MM-DD string as returned by the model; ParsedDate returns
// the calendar value.
type ExtractedTransaction struct {
	Date        string  `json:"date"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	CategoryID  string  `json:"categoryId"`
}

// ParsedDate returns the transaction date, or ok=false if missing/unparseable.
func (t *ExtractedTransaction) ParsedDate() (time.Time, bool) {
	if t.Date == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{"2006-01-02", "2006/01/02", "02/01/2006"} {
		if parsed, err := time.Parse(layout, t.Date); err == nil {
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// validate returns an empty string for a well-formed transaction, or the
// reason it must be rejected.
func (t *ExtractedTransaction) validate() string {
	if strings.TrimSpace(t.Description) == "" {
		return "missing description"
	}
	if t.Amount <= 0 {
		return "amount must be positive"
	}
	if t.Type != "" && t.Type != "income" && t.Type != "expense" {
		return fmt.Sprintf("unknown type %q", t.Type)
	}
	if t.Date != "" {
		if _, ok := t.ParsedDate(); !ok {
			return fmt.Sprintf("unparseable date %q", t.Date)
		}
	}
	return ""
}

// decodeTransactionList parses a model response expected to contain a JSON
// array of transactions. Malformed payloads and malformed rows never error:
// they are dropped and reported as warnings, so the caller sees "zero
// results", not a crash.
func decodeTransactionList(raw string) ([]ExtractedTransaction, []string) {
	clean := cleanModelJSON(raw)
	if clean == "" {
		return nil, []string{"empty response from model"}
	}

	// Accept either a bare array or an object wrapping one.
	var rows []json.RawMessage
	if err := json.Unmarshal([]byte(clean), &rows); err != nil {
		var wrapper struct {
			Transactions []json.RawMessage `json:"transactions"`
		}
		if err := json.Unmarshal([]byte(clean), &wrapper); err != nil || wrapper.Transactions == nil {
			return nil, []string{"response is not a transaction list"}
		}
		rows = wrapper.Transactions
	}

	var result []ExtractedTransaction
	var warnings []string
	for i, row := range rows {
		var tx ExtractedTransaction
		if err := json.Unmarshal(row, &tx); err != nil {
			warnings = append(warnings, fmt.Sprintf("row %d: malformed", i))
			continue
		}
		if tx.Type == "" {
			tx.Type = "expense"
		}
		if reason := tx.validate(); reason != "" {
			warnings = append(warnings, fmt.Sprintf("row %d: %s", i, reason))
			continue
		}
		result = append(result, tx)
	}
	return result, warnings
}

// cleanModelJSON strips Markdown code fences and surrounding prose that
// models sometimes emit despite instructions, leaving the JSON payload.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	// Fall back to the outermost bracket pair when prose surrounds the JSON.
	if !strings.HasPrefix(s, "[") && !strings.HasPrefix(s, "{") {
		start := strings.IndexAny(s, "[{")
		if start < 0 {
			return ""
		}
		open := s[start]
		closing := byte(']')
		if open == '{' {
			closing = '}'
		}
		end := strings.LastIndexByte(s, closing)
		if end <= start {
			return ""
		}
		s = s[start : end+1]
	}
	return s
}
