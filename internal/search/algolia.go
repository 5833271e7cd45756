// Package search provides full-text transaction search backed by Algolia.
// The client is optional; when unconfigured the service falls back to
// store-level listing.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/algolia/algoliasearch-client-go/v4/algolia/search"

	"github.com/pravs-cyber/finances/internal/model"
)

// Config holds Algolia configuration.
type Config struct {
	AppID     string
	APIKey    string
	IndexName string
}

// Params defines the input for a transaction search.
type Params struct {
	Query    string
	UserID   string
	Category string
	// Amount range (dollars), zero means unbounded
	AmountMin float64
	AmountMax float64
	// Date range
	StartDate *time.Time
	EndDate   *time.Time
	// "income" or "expense", empty for both
	Type model.TransactionType
	// Pagination (offset-based, Algolia native)
	Page     int
	PageSize int
}

// Result is a single search hit.
type Result struct {
	ID           string                `json:"id"`
	Description  string                `json:"description"`
	CategoryName string                `json:"categoryName"`
	Amount       float64               `json:"amount"`
	Date         time.Time             `json:"date"`
	Type         model.TransactionType `json:"type"`
}

// Response holds a page of search hits.
type Response struct {
	Results    []*Result `json:"results"`
	TotalCount int       `json:"totalCount"`
	TotalPages int       `json:"totalPages"`
	Page       int       `json:"page"`
}

// Client wraps the Algolia search API client.
type Client struct {
	client    *search.APIClient
	indexName string
}

// NewClient creates an Algolia client. AppID and APIKey are required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.AppID == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("algolia AppID and APIKey are required")
	}
	if cfg.IndexName == "" {
		cfg.IndexName = "finances"
	}

	client, err := search.NewClient(cfg.AppID, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("creating algolia client: %w", err)
	}

	return &Client{
		client:    client,
		indexName: cfg.IndexName,
	}, nil
}

// IndexTransaction upserts a transaction into the search index. The category
// name is denormalized so it is searchable without a join.
func (c *Client) IndexTransaction(ctx context.Context, tx *model.Transaction, categoryName string) error {
	body := map[string]any{
		"objectID":    tx.ID,
		"UserId":      tx.UserID,
		"Description": tx.Description,
		"Category":    categoryName,
		"Amount":      tx.Amount,
		"Date":        tx.Date.Format(time.RFC3339),
		"DateUnix":    tx.Date.Unix(),
		"Type":        string(tx.Type),
	}

	_, err := c.client.SaveObject(c.client.NewApiSaveObjectRequest(c.indexName, body))
	if err != nil {
		return fmt.Errorf("algolia save object: %w", err)
	}
	return nil
}

// DeleteTransaction removes a transaction from the search index.
func (c *Client) DeleteTransaction(ctx context.Context, transactionID string) error {
	_, err := c.client.DeleteObject(c.client.NewApiDeleteObjectRequest(c.indexName, transactionID))
	if err != nil {
		return fmt.Errorf("algolia delete object: %w", err)
	}
	return nil
}

// Search performs a full-text search via Algolia.
func (c *Client) Search(ctx context.Context, params Params) (*Response, error) {
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

	searchParams := search.SearchParamsObjectAsSearchParams(
		search.NewSearchParamsObject().
			SetQuery(params.Query).
			SetHitsPerPage(int32(pageSize)).
			SetPage(int32(page)).
			SetFilters(buildFilters(params)),
	)

	resp, err := c.client.SearchSingleIndex(c.client.NewApiSearchSingleIndexRequest(c.indexName).WithSearchParams(searchParams))
	if err != nil {
		return nil, fmt.Errorf("algolia search: %w", err)
	}

	results := make([]*Result, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		if result := hitToResult(hit.AdditionalProperties); result != nil {
			results = append(results, result)
		}
	}

	totalCount := 0
	if resp.NbHits != nil {
		totalCount = int(*resp.NbHits)
	}
	totalPages := 0
	if resp.NbPages != nil {
		totalPages = int(*resp.NbPages)
	}

	return &Response{
		Results:    results,
		TotalCount: totalCount,
		TotalPages: totalPages,
		Page:       page,
	}, nil
}

// buildFilters constructs the Algolia filter string. UserId is always
// enforced for tenant isolation.
func buildFilters(params Params) string {
	var parts []string

	if params.UserID != "" {
		parts = append(parts, fmt.Sprintf("UserId:%q", params.UserID))
	}

	if params.Category != "" {
		parts = append(parts, fmt.Sprintf("Category:%q", params.Category))
	}

	if params.Type == model.TransactionTypeExpense || params.Type == model.TransactionTypeIncome {
		parts = append(parts, fmt.Sprintf("Type:%q", string(params.Type)))
	}

	if params.AmountMin > 0 {
		parts = append(parts, fmt.Sprintf("Amount >= %f", params.AmountMin))
	}
	if params.AmountMax > 0 {
		parts = append(parts, fmt.Sprintf("Amount <= %f", params.AmountMax))
	}

	if params.StartDate != nil {
		parts = append(parts, fmt.Sprintf("DateUnix >= %d", params.StartDate.Unix()))
	}
	if params.EndDate != nil {
		parts = append(parts, fmt.Sprintf("DateUnix <= %d", params.EndDate.Unix()))
	}

	return strings.Join(parts, " AND ")
}

// hitToResult converts an Algolia hit to a Result. Hits without an objectID
// are dropped.
func hitToResult(props map[string]any) *Result {
	result := &Result{}

	if v, ok := props["objectID"].(string); ok {
		result.ID = v
	}
	if result.ID == "" {
		return nil
	}

	if v, ok := props["Description"].(string); ok {
		result.Description = v
	}
	if v, ok := props["Category"].(string); ok {
		result.CategoryName = v
	}
	if v, ok := props["Amount"].(float64); ok {
		result.Amount = v
	}

	if v, ok := props["DateUnix"].(float64); ok && v > 0 {
		result.Date = time.Unix(int64(v), 0).UTC()
	} else if v, ok := props["Date"].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			result.Date = t
		}
	}

	if v, ok := props["Type"].(string); ok {
		switch strings.ToLower(v) {
		case string(model.TransactionTypeExpense):
			result.Type = model.TransactionTypeExpense
		case string(model.TransactionTypeIncome):
			result.Type = model.TransactionTypeIncome
		}
	}

	return result
}
