// Package docstore stores uploaded source documents (receipts, statements)
// in a GCS bucket and builds ZIP archives of them for export.
package docstore

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/pravs-cyber/finances/internal/model"
)

// Store wraps a GCS bucket holding user documents. Objects are keyed
// users/<userID>/documents/<uuid><ext> so per-user listing stays cheap.
type Store struct {
	bucket *storage.BucketHandle
}

// New creates a Store over the named bucket.
func New(ctx context.Context, bucketName string) (*Store, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("document bucket name is required")
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &Store{bucket: client.Bucket(bucketName)}, nil
}

// NewWithBucket wires an existing bucket handle, used by tests with a fake
// storage server.
func NewWithBucket(bucket *storage.BucketHandle) *Store {
	return &Store{bucket: bucket}
}

// Upload stores document bytes and returns the object path.
func (s *Store) Upload(ctx context.Context, userID, filename, contentType string, data []byte) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("userID is required")
	}

	ext := strings.ToLower(path.Ext(filename))
	objectPath := fmt.Sprintf("users/%s/documents/%s%s", userID, uuid.NewString(), ext)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.bucket.Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write document: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize upload: %w", err)
	}

	return objectPath, nil
}

// Download fetches document bytes by object path.
func (s *Store) Download(ctx context.Context, objectPath string) ([]byte, error) {
	r, err := s.bucket.Object(objectPath).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open document reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return data, nil
}

// Delete removes a stored document. Missing objects are not an error.
func (s *Store) Delete(ctx context.Context, objectPath string) error {
	err := s.bucket.Object(objectPath).Delete(ctx)
	if err != nil && err != storage.ErrObjectNotExist {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// Archive is a ZIP of receipt documents ready to send to the client.
type Archive struct {
	Data         []byte
	Filename     string
	ContentType  string
	ReceiptCount int
}

// BuildArchive zips the receipts attached to the given transactions,
// organized by category name. Unreadable objects are skipped.
func (s *Store) BuildArchive(ctx context.Context, txs []*model.Transaction, categoryNames map[string]string) (*Archive, error) {
	var buf bytes.Buffer
	zipWriter := zip.NewWriter(&buf)

	count := 0
	for _, tx := range txs {
		if tx.ReceiptPath == "" {
			continue
		}

		folder := categoryNames[tx.CategoryID]
		if folder == "" {
			folder = "Uncategorized"
		}

		desc := sanitizeFilename(tx.Description)
		if desc == "" {
			desc = "receipt"
		}
		filename := fmt.Sprintf("%s/%s_%s_$%.2f%s",
			sanitizeFilename(folder), desc, tx.Date.Format("2006-01-02"), tx.Amount, extensionFromPath(tx.ReceiptPath))

		data, err := s.Download(ctx, tx.ReceiptPath)
		if err != nil {
			continue
		}

		w, err := zipWriter.Create(filename)
		if err != nil {
			continue
		}
		if _, err := w.Write(data); err != nil {
			continue
		}
		count++
	}

	if err := zipWriter.Close(); err != nil {
		return nil, fmt.Errorf("create zip: %w", err)
	}

	return &Archive{
		Data:         buf.Bytes(),
		Filename:     fmt.Sprintf("receipts-%s.zip", time.Now().UTC().Format("2006-01-02")),
		ContentType:  "application/zip",
		ReceiptCount: count,
	}, nil
}

// sanitizeFilename removes characters unsafe for filenames.
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", "*", "", "?", "", "\"", "", "<", "", ">", "", "|", "")
	result := replacer.Replace(s)
	if len(result) > 50 {
		result = result[:50]
	}
	return strings.TrimSpace(result)
}

// extensionFromPath extracts the file extension from a storage path.
func extensionFromPath(p string) string {
	idx := strings.LastIndex(p, ".")
	if idx < 0 {
		return ".bin"
	}
	return p[idx:]
}
