package service

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pravs-cyber/finances/internal/ai"
	"github.com/pravs-cyber/finances/internal/auth"
	"github.com/pravs-cyber/finances/internal/extraction"
	"github.com/pravs-cyber/finances/internal/model"
)

type chatRequest struct {
	Messages            []ai.Message `json:"messages"`
	EnableSearch        bool         `json:"enableSearch"`
	AllowAddTransaction bool         `json:"allowAddTransaction"`
}

type chatResponse struct {
	Reply string `json:"reply"`
	// Transaction is set when the assistant used its add-transaction tool
	// and the payload passed validation.
	Transaction *model.Transaction `json:"transaction,omitempty"`
}

func (s *FinanceService) handleAssistantChat(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.assistant == nil {
		s.writeError(w, r, errServiceUnavailable("assistant"))
		return
	}

	var req chatRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Messages) == 0 {
		s.writeError(w, r, errBadRequest("messages must not be empty"))
		return
	}

	result, err := s.assistant.Chat(r.Context(), req.Messages, ai.ChatOptions{
		EnableSearch:        req.EnableSearch,
		AllowAddTransaction: req.AllowAddTransaction,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := chatResponse{Reply: result.Text}
	if req.AllowAddTransaction && result.AddTransaction != nil {
		if tx := s.createExtracted(r.Context(), claims.UID, *result.AddTransaction, ""); tx != nil {
			resp.Transaction = tx
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type suggestCategoryRequest struct {
	Description string `json:"description"`
}

type suggestCategoryResponse struct {
	// Found is false when the assistant had no confident match; the other
	// fields are then empty.
	Found      bool                  `json:"found"`
	CategoryID string                `json:"categoryId,omitempty"`
	Type       model.TransactionType `json:"type,omitempty"`
}

func (s *FinanceService) handleSuggestCategory(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.assistant == nil {
		s.writeError(w, r, errServiceUnavailable("assistant"))
		return
	}

	var req suggestCategoryRequest
	if err := readJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		s.writeError(w, r, errBadRequest("description is required"))
		return
	}

	categories, err := s.store.ListCategories(r.Context(), claims.UID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	suggestion, err := s.assistant.SuggestCategory(r.Context(), req.Description, categories)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if suggestion == nil {
		writeJSON(w, http.StatusOK, suggestCategoryResponse{Found: false})
		return
	}

	writeJSON(w, http.StatusOK, suggestCategoryResponse{
		Found:      true,
		CategoryID: suggestion.CategoryID,
		Type:       model.TransactionType(suggestion.Type),
	})
}

type extractTextRequest struct {
	Text string `json:"text"`
}

type extractResponse struct {
	Transactions []*model.Transaction `json:"transactions"`
	Warnings     []string             `json:"warnings,omitempty"`
}

// handleExtractText turns unstructured text into ledger entries. A PDF body
// gets the rule-based statement parser first; when that cannot produce a
// confident result, the extracted text goes to the assistant. A malformed or
// empty assistant response yields zero transactions, never an error.
func (s *FinanceService) handleExtractText(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var text string
	var warnings []string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/pdf") {
		data, readErr := io.ReadAll(http.MaxBytesReader(w, r.Body, 20<<20))
		if readErr != nil {
			s.writeError(w, r, errBadRequest("read body: %v", readErr))
			return
		}

		analysis := extraction.AnalyzePDF(data)
		if rows, parseErr := extraction.ParseStatement(analysis); parseErr == nil {
			categoryIDs := map[string]string{}
			if cats, catErr := s.store.ListCategories(r.Context(), claims.UID); catErr == nil {
				for _, cat := range cats {
					categoryIDs[strings.ToLower(cat.Name)] = cat.ID
				}
			}

			resp := extractResponse{}
			for _, row := range rows {
				tx := s.createStatementRow(r.Context(), claims.UID, row, categoryIDs)
				if tx != nil {
					resp.Transactions = append(resp.Transactions, tx)
				}
			}
			writeJSON(w, http.StatusOK, resp)
			return
		}

		if analysis.IsScanned || analysis.Text == "" {
			writeJSON(w, http.StatusOK, extractResponse{
				Warnings: []string{"no extractable text in document"},
			})
			return
		}
		text = analysis.Text
	} else {
		var req extractTextRequest
		if err := readJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		text = req.Text
	}

	if s.assistant == nil {
		s.writeError(w, r, errServiceUnavailable("assistant"))
		return
	}
	if strings.TrimSpace(text) == "" {
		s.writeError(w, r, errBadRequest("text is required"))
		return
	}

	extracted, extractWarnings, err := s.assistant.ExtractTransactionsFromText(r.Context(), text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	warnings = append(warnings, extractWarnings...)

	resp := extractResponse{Warnings: warnings}
	for _, e := range extracted {
		if tx := s.createExtracted(r.Context(), claims.UID, e, ""); tx != nil {
			resp.Transactions = append(resp.Transactions, tx)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleExtractImage parses a receipt photo. The request body is the raw
// image; the instructions query parameter carries free-text guidance. The
// user's live category list constrains suggested category IDs. When a
// document store is wired, the original image is retained and linked from the
// created transactions.
func (s *FinanceService) handleExtractImage(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.assistant == nil {
		s.writeError(w, r, errServiceUnavailable("assistant"))
		return
	}

	mimeType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		s.writeError(w, r, errBadRequest("body must be an image, got %q", mimeType))
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 20<<20))
	if err != nil {
		s.writeError(w, r, errBadRequest("read body: %v", err))
		return
	}
	if len(data) == 0 {
		s.writeError(w, r, errBadRequest("empty image body"))
		return
	}

	categories, err := s.store.ListCategories(r.Context(), claims.UID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	extracted, warnings, err := s.assistant.ExtractTransactionsFromImage(
		r.Context(), data, mimeType, categories, r.URL.Query().Get("instructions"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	receiptPath := ""
	if s.docs != nil && len(extracted) > 0 {
		path, upErr := s.docs.Upload(r.Context(), claims.UID, "receipt"+extensionForMime(mimeType), mimeType, data)
		if upErr != nil {
			s.log.Warn().Err(upErr).Msg("receipt upload failed")
		} else {
			receiptPath = path
		}
	}

	resp := extractResponse{Warnings: warnings}
	for _, e := range extracted {
		if tx := s.createExtracted(r.Context(), claims.UID, e, receiptPath); tx != nil {
			resp.Transactions = append(resp.Transactions, tx)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type reportResponse struct {
	Report string `json:"report"`
}

func (s *FinanceService) handleAssistantReport(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.assistant == nil {
		s.writeError(w, r, errServiceUnavailable("assistant"))
		return
	}

	snapshot, err := s.buildSnapshot(r.Context(), claims.UID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	report, err := s.assistant.GenerateReport(r.Context(), snapshot)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reportResponse{Report: report})
}

// createExtracted persists one validated assistant extraction. Extractions
// that fail local validation are dropped; the extraction layer already
// reported them as warnings.
func (s *FinanceService) createExtracted(ctx context.Context, userID string, e ai.ExtractedTransaction, receiptPath string) *model.Transaction {
	date, ok := e.ParsedDate()
	if !ok {
		if e.Date != "" {
			return nil
		}
		// An omitted date means today: the tool schema and the receipt
		// prompt both allow it.
		date = model.DateOnly(time.Now().UTC())
	}

	now := time.Now().UTC()
	tx := &model.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Date:        date,
		Description: e.Description,
		Amount:      e.Amount,
		Type:        model.TransactionType(e.Type),
		CategoryID:  e.CategoryID,
		ReceiptPath: receiptPath,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		s.log.Error().Err(err).Msg("create extracted transaction failed")
		return nil
	}
	s.indexTransaction(ctx, tx)
	return tx
}

// createStatementRow persists one rule-parsed statement row, matching the
// suggested category by name against the user's categories.
func (s *FinanceService) createStatementRow(ctx context.Context, userID string, row extraction.Row, categoryIDs map[string]string) *model.Transaction {
	if row.Date.IsZero() || row.Amount <= 0 {
		return nil
	}

	txType := model.TransactionTypeExpense
	if !row.IsDebit {
		txType = model.TransactionTypeIncome
	}

	categoryID := ""
	if row.Category != "" && row.IsDebit {
		categoryID = categoryIDs[strings.ToLower(row.Category)]
	}

	now := time.Now().UTC()
	tx := &model.Transaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		Date:        model.DateOnly(row.Date),
		Description: row.Description,
		Amount:      row.Amount,
		Type:        txType,
		CategoryID:  categoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		s.log.Error().Err(err).Msg("create statement transaction failed")
		return nil
	}
	s.indexTransaction(ctx, tx)
	return tx
}

func extensionForMime(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	default:
		return ".jpg"
	}
}
