package service

import (
	"encoding/csv"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pravs-cyber/finances/internal/model"
)

func TestImportTransactions_ValidRows(t *testing.T) {
	svc, mem := newTestService()
	handler := testHandler(svc)

	body := strings.Join([]string{
		"date,description,amount,type,category",
		"2024-01-15,Groceries,85.50,expense,Food",
		"2024-01-31,Salary,2500.00,income,Salary",
	}, "\n")

	req := httptest.NewRequest("POST", "/v1/transactions/import", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code, rec.Body.String())

	var result importResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 2, result.ImportedCount)
	assert.Equal(t, 0, result.SkippedCount)

	txs, _, err := mem.ListTransactions(testCtx(), testUserID, nil, nil, 100, "")
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, "Groceries", txs[0].Description)
	assert.Equal(t, 85.50, txs[0].Amount)
	assert.Equal(t, model.TransactionTypeExpense, txs[0].Type)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), txs[0].Date)
	// The category column is never resolved on import; assignment stays manual.
	assert.Empty(t, txs[0].CategoryID)
	assert.Empty(t, txs[1].CategoryID)
}

func TestImportTransactions_SkipsInvalidRows(t *testing.T) {
	svc, mem := newTestService()
	handler := testHandler(svc)

	body := strings.Join([]string{
		"2024-01-15,Groceries,85.50,expense",
		"not-a-date,Broken,10.00,expense",
		"2024-01-16,,10.00,expense",
		"2024-01-17,Negative,-5.00,expense",
		"2024-01-18,BadType,5.00,transfer",
		"2024-01-19,Coffee,4.50,expense",
	}, "\n")

	req := httptest.NewRequest("POST", "/v1/transactions/import", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)

	var result importResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 2, result.ImportedCount)
	assert.Equal(t, 4, result.SkippedCount)
	assert.Len(t, result.Warnings, 4)

	txs, _, err := mem.ListTransactions(testCtx(), testUserID, nil, nil, 100, "")
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestExportImportRoundTrip(t *testing.T) {
	svc, _ := newTestService()
	ctx := testCtx()
	handler := testHandler(svc)

	cat := &model.Category{ID: "cat-food", UserID: testUserID, Name: "Food", Type: model.TransactionTypeExpense}
	require.NoError(t, svc.store.CreateCategory(ctx, cat))
	require.NoError(t, svc.store.CreateTransaction(ctx, &model.Transaction{
		ID:          "tx-1",
		UserID:      testUserID,
		Date:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Description: "Lunch",
		Amount:      18.20,
		Type:        model.TransactionTypeExpense,
		CategoryID:  "cat-food",
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/transactions/export", nil))
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"2024-02-01", "Lunch", "18.20", "expense", "Food"}, rows[1])

	// Import the export into a fresh service: the transaction appears once,
	// with categoryId left empty.
	svc2, mem2 := newTestService()
	req := httptest.NewRequest("POST", "/v1/transactions/import", strings.NewReader(rec.Body.String()))
	rec2 := httptest.NewRecorder()
	testHandler(svc2).ServeHTTP(rec2, req)
	require.Equal(t, 200, rec2.Code)

	var result importResult
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &result))
	assert.Equal(t, 1, result.ImportedCount)

	txs, _, err := mem2.ListTransactions(ctx, testUserID, nil, nil, 100, "")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Lunch", txs[0].Description)
	assert.Empty(t, txs[0].CategoryID)
}
