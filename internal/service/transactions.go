package service

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pravs-cyber/finances/internal/auth"
	"github.com/pravs-cyber/finances/internal/model"
	"github.com/pravs-cyber/finances/internal/search"
	"github.com/pravs-cyber/finances/internal/store"
)

func validateTransaction(tx *model.Transaction) error {
	if tx.Description == "" {
		return errBadRequest("description is required")
	}
	if tx.Amount <= 0 {
		return errBadRequest("amount must be positive")
	}
	if !tx.Type.Valid() {
		return errBadRequest("type must be %q or %q", model.TransactionTypeIncome, model.TransactionTypeExpense)
	}
	if tx.Date.IsZero() {
		return errBadRequest("date is required")
	}
	return nil
}

func (s *FinanceService) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var tx model.Transaction
	if err := readJSON(r, &tx); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateTransaction(&tx); err != nil {
		s.writeError(w, r, err)
		return
	}

	now := time.Now().UTC()
	tx.ID = uuid.NewString()
	tx.UserID = claims.UID
	tx.Date = model.DateOnly(tx.Date)
	tx.ReceiptPath = ""
	tx.CreatedAt = now
	tx.UpdatedAt = now

	if err := s.store.CreateTransaction(r.Context(), &tx); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.indexTransaction(r.Context(), &tx)
	writeJSON(w, http.StatusCreated, &tx)
}

func (s *FinanceService) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.ownedTransaction(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *FinanceService) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	existing, err := s.ownedTransaction(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var tx model.Transaction
	if err := readJSON(r, &tx); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := validateTransaction(&tx); err != nil {
		s.writeError(w, r, err)
		return
	}

	tx.ID = existing.ID
	tx.UserID = existing.UserID
	tx.Date = model.DateOnly(tx.Date)
	tx.ReceiptPath = existing.ReceiptPath
	tx.CreatedAt = existing.CreatedAt
	tx.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateTransaction(r.Context(), &tx); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.indexTransaction(r.Context(), &tx)
	writeJSON(w, http.StatusOK, &tx)
}

func (s *FinanceService) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.ownedTransaction(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.store.DeleteTransaction(r.Context(), tx.ID); err != nil {
		s.writeError(w, r, err)
		return
	}

	if s.searcher != nil {
		if err := s.searcher.DeleteTransaction(r.Context(), tx.ID); err != nil {
			s.log.Warn().Err(err).Str("transactionId", tx.ID).Msg("search deindex failed")
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

type listTransactionsResponse struct {
	Transactions  []*model.Transaction `json:"transactions"`
	NextPageToken string               `json:"nextPageToken,omitempty"`
}

func (s *FinanceService) handleListTransactions(w http.ResponseWriter, r *http.Request) {
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

	pageSize := int32(parseIntParam(r, "pageSize", 100))
	txs, nextToken, err := s.store.ListTransactions(r.Context(), claims.UID, startDate, endDate, pageSize, r.URL.Query().Get("pageToken"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, listTransactionsResponse{Transactions: txs, NextPageToken: nextToken})
}

func (s *FinanceService) handleSearchTransactions(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	q := r.URL.Query()
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
	amountMin, _ := strconv.ParseFloat(q.Get("minAmount"), 64)
	amountMax, _ := strconv.ParseFloat(q.Get("maxAmount"), 64)

	params := search.Params{
		Query:     q.Get("q"),
		UserID:    claims.UID,
		Category:  q.Get("category"),
		Type:      model.TransactionType(q.Get("type")),
		AmountMin: amountMin,
		AmountMax: amountMax,
		StartDate: startDate,
		EndDate:   endDate,
		Page:      parseIntParam(r, "page", 0),
		PageSize:  parseIntParam(r, "pageSize", 25),
	}

	var resp *search.Response
	if s.searcher != nil {
		resp, err = s.searcher.Search(r.Context(), params)
	} else {
		resp, err = s.scanSearch(r.Context(), params)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// scanSearch is the store-level fallback used when Algolia is not configured:
// a paginated scan with substring matching on description and category name.
func (s *FinanceService) scanSearch(ctx context.Context, params search.Params) (*search.Response, error) {
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}
	if pageSize > 100 {
		pageSize = 100
	}
	page := params.Page
	if page < 0 {
		page = 0
	}

	names := map[string]string{}
	cats, err := s.store.ListCategories(ctx, params.UserID)
	if err != nil {
		return nil, err
	}
	for _, cat := range cats {
		names[cat.ID] = cat.Name
	}

	query := strings.ToLower(params.Query)
	var matches []*search.Result
	pageToken := ""
	for {
		txs, nextToken, listErr := s.store.ListTransactions(ctx, params.UserID, params.StartDate, params.EndDate, 500, pageToken)
		if listErr != nil {
			return nil, listErr
		}
		for _, tx := range txs {
			categoryName := names[tx.CategoryID]
			if !matchesScan(tx, categoryName, query, params) {
				continue
			}
			matches = append(matches, &search.Result{
				ID:           tx.ID,
				Description:  tx.Description,
				CategoryName: categoryName,
				Amount:       tx.Amount,
				Date:         tx.Date,
				Type:         tx.Type,
			})
		}
		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}

	totalPages := (len(matches) + pageSize - 1) / pageSize
	start := page * pageSize
	if start > len(matches) {
		start = len(matches)
	}
	end := start + pageSize
	if end > len(matches) {
		end = len(matches)
	}

	return &search.Response{
		Results:    matches[start:end],
		TotalCount: len(matches),
		TotalPages: totalPages,
		Page:       page,
	}, nil
}

func matchesScan(tx *model.Transaction, categoryName, query string, params search.Params) bool {
	if query != "" &&
		!strings.Contains(strings.ToLower(tx.Description), query) &&
		!strings.Contains(strings.ToLower(categoryName), query) {
		return false
	}
	if params.Category != "" && !strings.EqualFold(categoryName, params.Category) {
		return false
	}
	if params.Type.Valid() && tx.Type != params.Type {
		return false
	}
	if params.AmountMin > 0 && tx.Amount < params.AmountMin {
		return false
	}
	if params.AmountMax > 0 && tx.Amount > params.AmountMax {
		return false
	}
	return true
}

// ownedTransaction loads the path transaction and enforces that it belongs to
// the caller. Foreign records surface as not found rather than forbidden so
// IDs are not probeable.
func (s *FinanceService) ownedTransaction(r *http.Request) (*model.Transaction, error) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		return nil, err
	}

	tx, err := s.store.GetTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	if tx.UserID != claims.UID {
		return nil, store.ErrNotFound
	}
	return tx, nil
}

// indexTransaction mirrors a write into the search index, best effort.
func (s *FinanceService) indexTransaction(ctx context.Context, tx *model.Transaction) {
	if s.searcher == nil {
		return
	}
	if err := s.searcher.IndexTransaction(ctx, tx, s.categoryName(ctx, tx.CategoryID)); err != nil {
		s.log.Warn().Err(err).Str("transactionId", tx.ID).Msg("search index failed")
	}
}

// categoryName resolves a category ID for display, empty when unset or missing.
func (s *FinanceService) categoryName(ctx context.Context, categoryID string) string {
	if categoryID == "" {
		return ""
	}
	cat, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return ""
	}
	return cat.Name
}

var dateParamLayouts = []string{"2006-01-02", time.RFC3339}

func parseDateParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateParamLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errBadRequest("invalid %s %q, want YYYY-MM-DD or RFC3339", name, raw)
}

func parseIntParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
