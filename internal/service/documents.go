package service

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pravs-cyber/finances/internal/auth"
	"github.com/pravs-cyber/finances/internal/model"
)

// handleUploadReceipt attaches a document to a transaction. The request body
// is the raw file; Content-Type and the filename query parameter describe it.
func (s *FinanceService) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	tx, err := s.ownedTransaction(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.docs == nil {
		s.writeError(w, r, errServiceUnavailable("document storage"))
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 20<<20))
	if err != nil {
		s.writeError(w, r, errBadRequest("read body: %v", err))
		return
	}
	if len(data) == 0 {
		s.writeError(w, r, errBadRequest("empty body"))
		return
	}

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		filename = "receipt"
	}

	path, err := s.docs.Upload(r.Context(), tx.UserID, filename, r.Header.Get("Content-Type"), data)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// The previous attachment, if any, is replaced.
	if tx.ReceiptPath != "" {
		if delErr := s.docs.Delete(r.Context(), tx.ReceiptPath); delErr != nil {
			s.log.Warn().Err(delErr).Str("path", tx.ReceiptPath).Msg("stale receipt cleanup failed")
		}
	}

	tx.ReceiptPath = path
	tx.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateTransaction(r.Context(), tx); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

func (s *FinanceService) handleDownloadReceipt(w http.ResponseWriter, r *http.Request) {
	tx, err := s.ownedTransaction(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.docs == nil {
		s.writeError(w, r, errServiceUnavailable("document storage"))
		return
	}
	if tx.ReceiptPath == "" {
		s.writeError(w, r, errBadRequest("transaction has no receipt"))
		return
	}

	data, err := s.docs.Download(r.Context(), tx.ReceiptPath)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleReceiptArchive zips every receipt in the requested date range,
// organized by category name.
func (s *FinanceService) handleReceiptArchive(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.RequireAuth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.docs == nil {
		s.writeError(w, r, errServiceUnavailable("document storage"))
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

	var withReceipts []*model.Transaction
	pageToken := ""
	for {
		txs, nextToken, listErr := s.store.ListTransactions(r.Context(), claims.UID, startDate, endDate, 500, pageToken)
		if listErr != nil {
			s.writeError(w, r, listErr)
			return
		}
		for _, tx := range txs {
			if tx.ReceiptPath != "" {
				withReceipts = append(withReceipts, tx)
			}
		}
		if nextToken == "" {
			break
		}
		pageToken = nextToken
	}

	if len(withReceipts) == 0 {
		s.writeError(w, r, errBadRequest("no receipts in the requested range"))
		return
	}

	names := map[string]string{}
	if cats, catErr := s.store.ListCategories(r.Context(), claims.UID); catErr == nil {
		for _, cat := range cats {
			names[cat.ID] = cat.Name
		}
	}

	archive, err := s.docs.BuildArchive(r.Context(), withReceipts, names)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", archive.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", archive.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive.Data)
}
