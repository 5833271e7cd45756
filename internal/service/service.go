// Package service implements the HTTP API: CRUD over the domain records,
// recurring-transaction materialization, CSV import/export, document storage
// and the assistant endpoints.
package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pravs-cyber/finances/internal/ai"
	"github.com/pravs-cyber/finances/internal/docstore"
	"github.com/pravs-cyber/finances/internal/model"
	"github.com/pravs-cyber/finances/internal/search"
	"github.com/pravs-cyber/finances/internal/store"
)

// Assistant is the subset of the ai client the service consumes. It is an
// interface so tests can substitute a scripted fake.
type Assistant interface {
	Chat(ctx context.Context, messages []ai.Message, opts ai.ChatOptions) (*ai.ChatResult, error)
	SuggestCategory(ctx context.Context, description string, categories []*model.Category) (*ai.CategorySuggestion, error)
	ExtractTransactionsFromText(ctx context.Context, text string) ([]ai.ExtractedTransaction, []string, error)
	ExtractTransactionsFromImage(ctx context.Context, data []byte, mimeType string, categories []*model.Category, instructions string) ([]ai.ExtractedTransaction, []string, error)
	LookupPrice(ctx context.Context, name string) (price float64, ok bool, err error)
	GenerateReport(ctx context.Context, snapshot *model.Snapshot) (string, error)
}

// FinanceService serves the API. The assistant, search client and document
// store are optional: assistant and document endpoints return 503 when their
// backend is unset, and search degrades to a store scan.
type FinanceService struct {
	store     store.Store
	assistant Assistant
	searcher  *search.Client
	docs      *docstore.Store
	log       zerolog.Logger
}

// NewFinanceService creates a service over the given store.
func NewFinanceService(s store.Store, log zerolog.Logger) *FinanceService {
	return &FinanceService{
		store: s,
		log:   log,
	}
}

// SetAssistant wires the AI assistant.
func (s *FinanceService) SetAssistant(a Assistant) {
	s.assistant = a
}

// SetSearchClient wires the Algolia client for full-text search and indexing.
func (s *FinanceService) SetSearchClient(c *search.Client) {
	s.searcher = c
}

// SetDocStore wires the GCS document store for receipt upload and export.
func (s *FinanceService) SetDocStore(d *docstore.Store) {
	s.docs = d
}
