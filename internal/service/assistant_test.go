package service

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pravs-cyber/finances/internal/ai"
	"github.com/pravs-cyber/finances/internal/model"
)

// fakeAssistant returns scripted results.
type fakeAssistant struct {
	chatResult *ai.ChatResult
	suggestion *ai.CategorySuggestion
	extracted  []ai.ExtractedTransaction
	warnings   []string
	price      float64
	priceOK    bool
	report     string
	err        error
}

func (f *fakeAssistant) Chat(ctx context.Context, messages []ai.Message, opts ai.ChatOptions) (*ai.ChatResult, error) {
	return f.chatResult, f.err
}

func (f *fakeAssistant) SuggestCategory(ctx context.Context, description string, categories []*model.Category) (*ai.CategorySuggestion, error) {
	return f.suggestion, f.err
}

func (f *fakeAssistant) ExtractTransactionsFromText(ctx context.Context, text string) ([]ai.ExtractedTransaction, []string, error) {
	return f.extracted, f.warnings, f.err
}

func (f *fakeAssistant) ExtractTransactionsFromImage(ctx context.Context, data []byte, mimeType string, categories []*model.Category, instructions string) ([]ai.ExtractedTransaction, []string, error) {
	return f.extracted, f.warnings, f.err
}

func (f *fakeAssistant) LookupPrice(ctx context.Context, name string) (float64, bool, error) {
	return f.price, f.priceOK, f.err
}

func (f *fakeAssistant) GenerateReport(ctx context.Context, snapshot *model.Snapshot) (string, error) {
	return f.report, f.err
}

func TestExtractText_CreatesTransactions(t *testing.T) {
	svc, mem := newTestService()
	svc.SetAssistant(&fakeAssistant{
		extracted: []ai.ExtractedTransaction{
			{Date: "2024-01-15", Description: "Groceries", Amount: 85.50, Type: "expense"},
			{Date: "2024-01-16", Description: "Taxi", Amount: 23.00, Type: "expense"},
		},
	})
	handler := testHandler(svc)

	req := httptest.NewRequest("POST", "/v1/assistant/extract-text",
		strings.NewReader(`{"text":"some bank statement text"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code, rec.Body.String())

	var resp extractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Transactions, 2)
	assert.Equal(t, "Groceries", resp.Transactions[0].Description)

	txs, _, err := mem.ListTransactions(testCtx(), testUserID, nil, nil, 100, "")
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestExtractText_EmptyUpstreamYieldsZeroTransactions(t *testing.T) {
	svc, mem := newTestService()
	svc.SetAssistant(&fakeAssistant{
		warnings: []string{"response was not valid JSON"},
	})
	handler := testHandler(svc)

	req := httptest.NewRequest("POST", "/v1/assistant/extract-text",
		strings.NewReader(`{"text":"garbled input"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)

	var resp extractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Transactions)
	assert.NotEmpty(t, resp.Warnings)

	txs, _, err := mem.ListTransactions(testCtx(), testUserID, nil, nil, 100, "")
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestExtractText_UpstreamFailureIsBadGateway(t *testing.T) {
	svc, _ := newTestService()
	svc.SetAssistant(&fakeAssistant{
		err: &ai.APIError{Code: ai.ErrUnavailable, Message: "model unavailable", Retryable: true},
	})
	handler := testHandler(svc)

	req := httptest.NewRequest("POST", "/v1/assistant/extract-text",
		strings.NewReader(`{"text":"anything"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, 502, rec.Code)
}

func TestExtractText_NoAssistantConfigured(t *testing.T) {
	svc, _ := newTestService()
	handler := testHandler(svc)

	req := httptest.NewRequest("POST", "/v1/assistant/extract-text",
		strings.NewReader(`{"text":"anything"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, 503, rec.Code)
}

func TestSuggestCategory_NoMatchIsNotAnError(t *testing.T) {
	svc, _ := newTestService()
	svc.SetAssistant(&fakeAssistant{suggestion: nil})
	handler := testHandler(svc)

	req := httptest.NewRequest("POST", "/v1/assistant/suggest-category",
		strings.NewReader(`{"description":"mystery merchant"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)

	var resp suggestCategoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Found)
	assert.Empty(t, resp.CategoryID)
}

func TestSuggestCategory_Match(t *testing.T) {
	svc, _ := newTestService()
	require.NoError(t, svc.store.CreateCategory(testCtx(), &model.Category{
		ID: "cat-food", UserID: testUserID, Name: "Food", Type: model.TransactionTypeExpense,
	}))
	svc.SetAssistant(&fakeAssistant{
		suggestion: &ai.CategorySuggestion{CategoryID: "cat-food", Type: "expense"},
	})
	handler := testHandler(svc)

	req := httptest.NewRequest("POST", "/v1/assistant/suggest-category",
		strings.NewReader(`{"description":"McDonald's"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)

	var resp suggestCategoryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Found)
	assert.Equal(t, "cat-food", resp.CategoryID)
	assert.Equal(t, model.TransactionTypeExpense, resp.Type)
}

func TestChat_AddTransactionTool(t *testing.T) {
	svc, mem := newTestService()
	svc.SetAssistant(&fakeAssistant{
		chatResult: &ai.ChatResult{
			Text: "Added your coffee purchase.",
			AddTransaction: &ai.ExtractedTransaction{
				Date: "2024-05-01", Description: "Coffee", Amount: 4.50, Type: "expense",
			},
		},
	})
	handler := testHandler(svc)

	req := httptest.NewRequest("POST", "/v1/assistant/chat",
		strings.NewReader(`{"messages":[{"role":"user","text":"add a $4.50 coffee"}],"allowAddTransaction":true}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code, rec.Body.String())

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Added your coffee purchase.", resp.Reply)
	require.NotNil(t, resp.Transaction)
	assert.Equal(t, "Coffee", resp.Transaction.Description)

	txs, _, err := mem.ListTransactions(testCtx(), testUserID, nil, nil, 100, "")
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestChat_ToolDisabledIgnoresPayload(t *testing.T) {
	svc, mem := newTestService()
	svc.SetAssistant(&fakeAssistant{
		chatResult: &ai.ChatResult{
			Text: "Here's a thought.",
			AddTransaction: &ai.ExtractedTransaction{
				Date: "2024-05-01", Description: "Coffee", Amount: 4.50, Type: "expense",
			},
		},
	})
	handler := testHandler(svc)

	req := httptest.NewRequest("POST", "/v1/assistant/chat",
		strings.NewReader(`{"messages":[{"role":"user","text":"hi"}]}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)

	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Transaction)

	txs, _, err := mem.ListTransactions(testCtx(), testUserID, nil, nil, 100, "")
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestRefreshInvestmentPrice(t *testing.T) {
	svc, _ := newTestService()
	ctx := testCtx()
	require.NoError(t, svc.store.CreateInvestment(ctx, &model.Investment{
		ID: "inv-1", UserID: testUserID, Name: "Alphabet", Symbol: "GOOG",
		Quantity: 2, PurchasePrice: 120, CurrentPrice: 120,
	}))
	svc.SetAssistant(&fakeAssistant{price: 187.33, priceOK: true})
	handler := testHandler(svc)

	req := httptest.NewRequest("POST", "/v1/investments/inv-1/refresh-price", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code, rec.Body.String())

	var resp refreshPriceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.PriceFound)
	assert.Equal(t, 187.33, resp.Investment.CurrentPrice)
	assert.NotNil(t, resp.Investment.LastPricedAt)
}

func TestRefreshInvestmentPrice_NoPriceKeepsOldValue(t *testing.T) {
	svc, mem := newTestService()
	ctx := testCtx()
	require.NoError(t, svc.store.CreateInvestment(ctx, &model.Investment{
		ID: "inv-1", UserID: testUserID, Name: "Obscure Asset",
		Quantity: 1, PurchasePrice: 50, CurrentPrice: 50,
	}))
	svc.SetAssistant(&fakeAssistant{priceOK: false})
	handler := testHandler(svc)

	req := httptest.NewRequest("POST", "/v1/investments/inv-1/refresh-price", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)

	var resp refreshPriceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.PriceFound)

	inv, err := mem.GetInvestment(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, inv.CurrentPrice)
	assert.Nil(t, inv.LastPricedAt)
}

func TestAssistantReport(t *testing.T) {
	svc, _ := newTestService()
	svc.SetAssistant(&fakeAssistant{report: "You spend a lot on coffee."})
	handler := testHandler(svc)

	req := httptest.NewRequest("POST", "/v1/assistant/report", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)

	var resp reportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "You spend a lot on coffee.", resp.Report)
}
