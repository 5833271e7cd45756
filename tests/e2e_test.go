package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pravs-cyber/finances/internal/auth"
	"github.com/pravs-cyber/finances/internal/logger"
	"github.com/pravs-cyber/finances/internal/model"
	"github.com/pravs-cyber/finances/internal/service"
	"github.com/pravs-cyber/finances/internal/store"
)

// newServer starts an in-process server backed by the memory store, with the
// local dev identity attached to every request.
func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := service.NewFinanceService(store.NewMemoryStore(), logger.NewWithWriter(io.Discard))
	server := httptest.NewServer(auth.LocalDevMiddleware(svc.Routes()))
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.Unmarshal(raw, out), "body: %s", raw)
	}
	return resp
}

func TestHealthEndpoints(t *testing.T) {
	server := newServer(t)

	for _, path := range []string{"/health", "/ping"} {
		resp, err := http.Get(server.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestUserBootstrapSeedsCategories(t *testing.T) {
	server := newServer(t)

	var user model.User
	resp := doJSON(t, "GET", server.URL+"/v1/users/me", nil, &user)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "local-dev-user", user.ID)
	assert.Equal(t, "dev@localhost", user.Email)

	var cats struct {
		Categories []*model.Category `json:"categories"`
	}
	resp = doJSON(t, "GET", server.URL+"/v1/categories", nil, &cats)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, cats.Categories)

	names := make(map[string]bool)
	for _, c := range cats.Categories {
		names[c.Name] = true
	}
	assert.True(t, names["Food"])
	assert.True(t, names["Salary"])
}

func TestTransactionLifecycle(t *testing.T) {
	server := newServer(t)

	var created model.Transaction
	resp := doJSON(t, "POST", server.URL+"/v1/transactions", map[string]any{
		"date":        "2024-03-10T00:00:00Z",
		"description": "Groceries",
		"amount":      82.40,
		"type":        "expense",
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "local-dev-user", created.UserID)

	var fetched model.Transaction
	resp = doJSON(t, "GET", server.URL+"/v1/transactions/"+created.ID, nil, &fetched)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Groceries", fetched.Description)

	var updated model.Transaction
	resp = doJSON(t, "PUT", server.URL+"/v1/transactions/"+created.ID, map[string]any{
		"date":        "2024-03-10T00:00:00Z",
		"description": "Weekly groceries",
		"amount":      82.40,
		"type":        "expense",
	}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Weekly groceries", updated.Description)

	var listed struct {
		Transactions []*model.Transaction `json:"transactions"`
	}
	resp = doJSON(t, "GET", server.URL+"/v1/transactions?startDate=2024-03-01&endDate=2024-03-31", nil, &listed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, listed.Transactions, 1)

	resp = doJSON(t, "DELETE", server.URL+"/v1/transactions/"+created.ID, nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, "GET", server.URL+"/v1/transactions/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestTransactionValidation(t *testing.T) {
	server := newServer(t)

	resp := doJSON(t, "POST", server.URL+"/v1/transactions", map[string]any{
		"date":        "2024-03-10T00:00:00Z",
		"description": "Bad amount",
		"amount":      -5,
		"type":        "expense",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUserIsolation(t *testing.T) {
	server := newServer(t)

	var created model.Transaction
	resp := doJSON(t, "POST", server.URL+"/v1/transactions", map[string]any{
		"date":        "2024-03-10T00:00:00Z",
		"description": "Mine",
		"amount":      10,
		"type":        "expense",
	}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// A different identity sees a 404, not a 403, so IDs cannot be probed.
	req, err := http.NewRequest("GET", server.URL+"/v1/transactions/"+created.ID, nil)
	require.NoError(t, err)
	req.Header.Set("X-Debug-Impersonate-User", "someone-else")
	other, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	other.Body.Close()
	assert.Equal(t, http.StatusNotFound, other.StatusCode)
}

func TestRecurringProcessing(t *testing.T) {
	server := newServer(t)

	var rule model.RecurringTransaction
	resp := doJSON(t, "POST", server.URL+"/v1/recurring", map[string]any{
		"description": "Rent",
		"amount":      1800,
		"type":        "expense",
		"frequency":   "monthly",
		"startDate":   "2024-01-01T00:00:00Z",
	}, &rule)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, model.RuleStatusActive, rule.Status)
	assert.Equal(t, rule.StartDate, rule.NextDueDate)

	var result service.ProcessRecurringResult
	resp = doJSON(t, "POST", server.URL+"/v1/recurring/process", nil, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Greater(t, result.EmittedCount, 0)

	// Processing again right away emits nothing new.
	var second service.ProcessRecurringResult
	resp = doJSON(t, "POST", server.URL+"/v1/recurring/process", nil, &second)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, second.EmittedCount)

	var listed struct {
		Transactions []*model.Transaction `json:"transactions"`
	}
	resp = doJSON(t, "GET", server.URL+"/v1/transactions?pageSize=500", nil, &listed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, listed.Transactions, result.EmittedCount)
}

func TestBudgetProgressFlow(t *testing.T) {
	server := newServer(t)

	var cat model.Category
	resp := doJSON(t, "POST", server.URL+"/v1/categories", map[string]any{
		"name": "Dining", "type": "expense",
	}, &cat)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var budget model.Budget
	resp = doJSON(t, "POST", server.URL+"/v1/budgets", map[string]any{
		"categoryId": cat.ID,
		"amount":     400,
		"period":     "monthly",
		"startDate":  "2024-01-01T00:00:00Z",
	}, &budget)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, "POST", server.URL+"/v1/transactions", map[string]any{
		"date":        "2024-01-05T00:00:00Z",
		"description": "Dinner",
		"amount":      60,
		"type":        "expense",
		"categoryId":  cat.ID,
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var progress model.BudgetProgress
	resp = doJSON(t, "GET", server.URL+"/v1/budgets/"+budget.ID+"/progress", nil, &progress)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, budget.ID, progress.BudgetID)
	// The current period contains today, not January 2024, so nothing counts.
	assert.GreaterOrEqual(t, progress.Remaining, 0.0)
}

func TestGoalContribution(t *testing.T) {
	server := newServer(t)

	var goal model.Goal
	resp := doJSON(t, "POST", server.URL+"/v1/goals", map[string]any{
		"name":         "Holiday",
		"targetAmount": 3000,
	}, &goal)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var contributed model.Goal
	resp = doJSON(t, "POST", server.URL+"/v1/goals/"+goal.ID+"/contribute", map[string]any{
		"amount": 250,
	}, &contributed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 250.0, contributed.CurrentAmount)

	resp = doJSON(t, "POST", server.URL+"/v1/goals/"+goal.ID+"/contribute", map[string]any{
		"amount": -5,
	}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestImportExportRoundTrip(t *testing.T) {
	server := newServer(t)

	csvBody := strings.Join([]string{
		"date,description,amount,type,category",
		"2024-04-01,Salary,5000.00,income,Salary",
		"2024-04-02,Groceries,110.50,expense,Food",
		"not-a-date,Broken,1.00,expense,",
	}, "\n")

	req, err := http.NewRequest("POST", server.URL+"/v1/transactions/import", strings.NewReader(csvBody))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/csv")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var result struct {
		ImportedCount int      `json:"importedCount"`
		SkippedCount  int      `json:"skippedCount"`
		Warnings      []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(raw, &result))
	assert.Equal(t, 2, result.ImportedCount)
	assert.Equal(t, 1, result.SkippedCount)

	exportResp, err := http.Get(server.URL + "/v1/transactions/export?startDate=2024-04-01&endDate=2024-04-30")
	require.NoError(t, err)
	exported, err := io.ReadAll(exportResp.Body)
	require.NoError(t, err)
	exportResp.Body.Close()
	require.Equal(t, http.StatusOK, exportResp.StatusCode)
	assert.Contains(t, exportResp.Header.Get("Content-Type"), "text/csv")

	lines := strings.Split(strings.TrimSpace(string(exported)), "\n")
	require.Len(t, lines, 3, "header plus two rows")
	assert.Equal(t, "date,description,amount,type,category", lines[0])
	assert.Contains(t, string(exported), "Groceries")
}

func TestAssistantUnavailableWithoutConfiguration(t *testing.T) {
	server := newServer(t)

	paths := []string{
		"/v1/assistant/chat",
		"/v1/assistant/suggest-category",
		"/v1/assistant/extract-text",
		"/v1/assistant/report",
	}
	for _, path := range paths {
		resp := doJSON(t, "POST", server.URL+path, map[string]any{}, nil)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, path)
	}

	// Receipt storage is likewise optional.
	archiveResp, err := http.Get(server.URL + "/v1/receipts/archive")
	require.NoError(t, err)
	archiveResp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, archiveResp.StatusCode)
}

func TestSearchFallsBackToStoreScan(t *testing.T) {
	server := newServer(t)

	seed := []map[string]any{
		{"date": "2024-05-01T00:00:00Z", "description": "Coffee at Campos", "amount": 5.50, "type": "expense"},
		{"date": "2024-05-02T00:00:00Z", "description": "Office supplies", "amount": 42.00, "type": "expense"},
		{"date": "2024-05-03T00:00:00Z", "description": "Coffee beans", "amount": 18.00, "type": "expense"},
	}
	for _, tx := range seed {
		resp := doJSON(t, "POST", server.URL+"/v1/transactions", tx, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	var result struct {
		Results    []map[string]any `json:"results"`
		TotalCount int              `json:"totalCount"`
	}
	resp := doJSON(t, "GET", server.URL+"/v1/transactions/search?q=coffee", nil, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, result.TotalCount)
	require.Len(t, result.Results, 2)

	resp = doJSON(t, "GET", server.URL+"/v1/transactions/search?q=coffee&maxAmount=10", nil, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, result.TotalCount)
	assert.Equal(t, "Coffee at Campos", result.Results[0]["description"])
}

func TestInvestmentLifecycle(t *testing.T) {
	server := newServer(t)

	var inv model.Investment
	resp := doJSON(t, "POST", server.URL+"/v1/investments", map[string]any{
		"name":          "Index Fund",
		"symbol":        "VAS",
		"quantity":      10,
		"purchasePrice": 95.50,
	}, &inv)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 95.50, inv.CurrentPrice)

	var listed struct {
		Investments []*model.Investment `json:"investments"`
	}
	resp = doJSON(t, "GET", server.URL+"/v1/investments", nil, &listed)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, listed.Investments, 1)

	// Price refresh needs the assistant.
	resp = doJSON(t, "POST", fmt.Sprintf("%s/v1/investments/%s/refresh-price", server.URL, inv.ID), nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
