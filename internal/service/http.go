package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/pravs-cyber/finances/internal/ai"
	"github.com/pravs-cyber/finances/internal/auth"
	"github.com/pravs-cyber/finances/internal/store"
)

// Routes registers every API endpoint on a fresh mux. Handlers rely on the
// auth middleware having populated the request context with user claims.
func (s *FinanceService) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ping", s.handleHealth)

	mux.HandleFunc("POST /v1/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /v1/transactions", s.handleListTransactions)
	mux.HandleFunc("GET /v1/transactions/search", s.handleSearchTransactions)
	mux.HandleFunc("GET /v1/transactions/export", s.handleExportTransactions)
	mux.HandleFunc("POST /v1/transactions/import", s.handleImportTransactions)
	mux.HandleFunc("GET /v1/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("PUT /v1/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /v1/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("POST /v1/transactions/{id}/receipt", s.handleUploadReceipt)
	mux.HandleFunc("GET /v1/transactions/{id}/receipt", s.handleDownloadReceipt)

	mux.HandleFunc("POST /v1/categories", s.handleCreateCategory)
	mux.HandleFunc("GET /v1/categories", s.handleListCategories)
	mux.HandleFunc("PUT /v1/categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("DELETE /v1/categories/{id}", s.handleDeleteCategory)

	mux.HandleFunc("POST /v1/recurring", s.handleCreateRecurring)
	mux.HandleFunc("GET /v1/recurring", s.handleListRecurring)
	mux.HandleFunc("POST /v1/recurring/process", s.handleProcessRecurring)
	mux.HandleFunc("GET /v1/recurring/{id}", s.handleGetRecurring)
	mux.HandleFunc("PUT /v1/recurring/{id}", s.handleUpdateRecurring)
	mux.HandleFunc("DELETE /v1/recurring/{id}", s.handleDeleteRecurring)

	mux.HandleFunc("POST /v1/budgets", s.handleCreateBudget)
	mux.HandleFunc("GET /v1/budgets", s.handleListBudgets)
	mux.HandleFunc("GET /v1/budgets/{id}/progress", s.handleBudgetProgress)
	mux.HandleFunc("PUT /v1/budgets/{id}", s.handleUpdateBudget)
	mux.HandleFunc("DELETE /v1/budgets/{id}", s.handleDeleteBudget)

	mux.HandleFunc("POST /v1/goals", s.handleCreateGoal)
	mux.HandleFunc("GET /v1/goals", s.handleListGoals)
	mux.HandleFunc("POST /v1/goals/{id}/contribute", s.handleContributeGoal)
	mux.HandleFunc("PUT /v1/goals/{id}", s.handleUpdateGoal)
	mux.HandleFunc("DELETE /v1/goals/{id}", s.handleDeleteGoal)

	mux.HandleFunc("POST /v1/investments", s.handleCreateInvestment)
	mux.HandleFunc("GET /v1/investments", s.handleListInvestments)
	mux.HandleFunc("POST /v1/investments/{id}/refresh-price", s.handleRefreshInvestmentPrice)
	mux.HandleFunc("PUT /v1/investments/{id}", s.handleUpdateInvestment)
	mux.HandleFunc("DELETE /v1/investments/{id}", s.handleDeleteInvestment)

	mux.HandleFunc("POST /v1/assistant/chat", s.handleAssistantChat)
	mux.HandleFunc("POST /v1/assistant/suggest-category", s.handleSuggestCategory)
	mux.HandleFunc("POST /v1/assistant/extract-text", s.handleExtractText)
	mux.HandleFunc("POST /v1/assistant/extract-image", s.handleExtractImage)
	mux.HandleFunc("POST /v1/assistant/report", s.handleAssistantReport)

	mux.HandleFunc("GET /v1/receipts/archive", s.handleReceiptArchive)

	mux.HandleFunc("GET /v1/users/me", s.handleGetMe)
	mux.HandleFunc("PUT /v1/users/me", s.handleUpdateMe)

	return mux
}

func (s *FinanceService) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// validationError marks a request-shape problem; it maps to 400.
type validationError string

func (e validationError) Error() string { return string(e) }

func errBadRequest(format string, args ...any) error {
	return validationError(fmt.Sprintf(format, args...))
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 10<<20))
	if err := dec.Decode(v); err != nil {
		return errBadRequest("invalid request body: %v", err)
	}
	return nil
}

// writeError maps domain errors onto HTTP statuses.
func (s *FinanceService) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL"

	var vErr validationError
	var apiErr *ai.APIError
	switch {
	case errors.As(err, &vErr):
		status, code = http.StatusBadRequest, "INVALID_ARGUMENT"
	case errors.Is(err, store.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, auth.ErrUnauthenticated):
		status, code = http.StatusUnauthorized, "UNAUTHENTICATED"
	case errors.Is(err, auth.ErrPermissionDenied):
		status, code = http.StatusForbidden, "PERMISSION_DENIED"
	case errors.As(err, &apiErr):
		code = string(apiErr.Code)
		if apiErr.Code == ai.ErrNotConfigured {
			status = http.StatusServiceUnavailable
		} else {
			status = http.StatusBadGateway
		}
	}

	if status >= 500 {
		s.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Code: code})
}

// errServiceUnavailable is returned by endpoints whose optional backend
// (assistant, search, document store) is not configured.
func errServiceUnavailable(what string) error {
	return &ai.APIError{Code: ai.ErrNotConfigured, Message: what + " is not configured"}
}
