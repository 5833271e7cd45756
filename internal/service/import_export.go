package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pravs-cyber/finances/internal/auth"
	"github.com/pravs-cyber/finances/internal/model"
)

var csvHeader = []string{"date", "description", "amount", "type", "category"}

// handleExportTransactions streams the caller's ledger as CSV, one row per
// transaction: date, description, amount, type, category name.
func (s *FinanceService) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	startDate, err := parseDateParam(r, "startDate")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	endDate, err := parseDateParam(r, "endDate")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// Category names are denormalized into the rows.
	names := map[string]string{}
	cats, err := s.store.ListCategories(r.Context(), claims.UID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	for _, cat := range cats {
		names[cat.ID] = cat.Name
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q",
		"transactions-"+time.Now().UTC().Format("2006-01-02")+".csv"))

	cw := csv.NewWriter(w)
	_ = cw.Write(csvHeader)

	pageToken := ""
	for {
		txs, nextToken, listErr := s.store.ListTransactions(r.Context(), claims.UID, startDate, endDate, 500, pageToken)
		if listErr != nil {
			// Headers are already out; log and flush what we have.
			s.log.Error().Err(listErr).Msg("export aborted mid-stream")
			break
		}
		for _, tx := range txs {
			_ = cw.Write([]string{
				tx.Date.Format("2006-01-02"),
				tx.Description,
				strconv.FormatFloat(tx.Amount, 'f', 2, 64),
				string(tx.Type),
				names[tx.CategoryID],
			})
		}
		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}
	cw.Flush()
}

type importResult struct {
	ImportedCount int      `json:"importedCount"`
	SkippedCount  int      `json:"skippedCount"`
	Warnings      []string `json:"warnings,omitempty"`
}

// handleImportTransactions reads CSV rows from the request body and appends
// valid ones to the ledger. Imported transactions always land with an empty
// categoryId for later manual assignment; the category column is only there
// for round-trip symmetry with export. Invalid rows are skipped and counted,
// never fatal.
func (s *FinanceService) handleImportTransactions(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	reader := csv.NewReader(http.MaxBytesReader(w, r.Body, 10<<20))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	result := importResult{}
	now := time.Now().UTC()
	rowNum := 0

	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			rowNum++
			result.SkippedCount++
			result.Warnings = appendWarning(result.Warnings, fmt.Sprintf("row %d: %v", rowNum, readErr))
			continue
		}
		rowNum++

		if rowNum == 1 && isHeaderRow(record) {
			continue
		}

		tx, rowErr := transactionFromCSVRow(record)
		if rowErr != nil {
			result.SkippedCount++
			result.Warnings = appendWarning(result.Warnings, fmt.Sprintf("row %d: %v", rowNum, rowErr))
			continue
		}

		tx.ID = uuid.NewString()
		tx.UserID = claims.UID
		tx.CreatedAt = now
		tx.UpdatedAt = now

		if createErr := s.store.CreateTransaction(r.Context(), tx); createErr != nil {
			s.writeError(w, r, createErr)
			return
		}
		s.indexTransaction(r.Context(), tx)
		result.ImportedCount++
	}

	writeJSON(w, http.StatusOK, result)
}

// transactionFromCSVRow validates one data row. The category column (index 4)
// is intentionally not resolved to an ID.
func transactionFromCSVRow(record []string) (*model.Transaction, error) {
	if len(record) < 4 {
		return nil, fmt.Errorf("want at least 4 columns, got %d", len(record))
	}

	date, ok := parseCSVDate(strings.TrimSpace(record[0]))
	if !ok {
		return nil, fmt.Errorf("invalid date %q", record[0])
	}

	description := strings.TrimSpace(record[1])
	if description == "" {
		return nil, fmt.Errorf("empty description")
	}

	amount, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil || amount <= 0 {
		return nil, fmt.Errorf("invalid amount %q", record[2])
	}

	txType := model.TransactionType(strings.ToLower(strings.TrimSpace(record[3])))
	if !txType.Valid() {
		return nil, fmt.Errorf("invalid type %q", record[3])
	}

	return &model.Transaction{
		Date:        date,
		Description: description,
		Amount:      amount,
		Type:        txType,
	}, nil
}

var csvDateLayouts = []string{"2006-01-02", "2006/01/02", "02/01/2006"}

func parseCSVDate(s string) (time.Time, bool) {
	for _, layout := range csvDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.DateOnly(t), true
		}
	}
	return time.Time{}, false
}

func isHeaderRow(record []string) bool {
	if len(record) == 0 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(record[0]), "date")
}

// appendWarning caps the warning list so a big malformed file cannot bloat
// the response.
func appendWarning(warnings []string, msg string) []string {
	const maxWarnings = 50
	if len(warnings) >= maxWarnings {
		return warnings
	}
	return append(warnings, msg)
}
