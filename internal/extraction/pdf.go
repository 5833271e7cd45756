// Package extraction turns uploaded documents into candidate transactions.
// PDFs get a text pass first; scanned or low-density documents fall back to
// the model-based extractor in the ai package.
package extraction

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	maxTextBytes     = 100 * 1024 // cap on extracted text
	scannedThreshold = 50         // chars per page below which a PDF is treated as scanned
	textDenseMin     = 200        // chars per page needed for rule-based parsing
)

// PDFAnalysis is the result of pre-processing a PDF document.
type PDFAnalysis struct {
	PageCount     int
	Text          string
	Lines         []string
	EstimatedRows int
	IsScanned     bool
	Err           error
}

// datePattern matches DD/MM/YYYY variants, ISO dates and "Jan 15" / "15 Jan".
var datePattern = regexp.MustCompile(
	`(?i)` +
		`(?:\d{1,2}[/\-\.]\d{1,2}[/\-\.]\d{2,4})` +
		`|(?:\d{4}[/\-]\d{2}[/\-]\d{2})` +
		`|(?:(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2})` +
		`|(?:\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?)`,
)

var amountPattern = regexp.MustCompile(
	`[\$\-]?\d{1,3}(?:[,]\d{3})*(?:\.\d{1,2})` +
		`|\d+\.\d{2}`,
)

// AnalyzePDF extracts text and metadata from a PDF. It never panics; any
// failure is recorded in the result with conservative defaults so the caller
// can still fall back to the model-based extractor.
func AnalyzePDF(data []byte) (result *PDFAnalysis) {
	result = &PDFAnalysis{
		PageCount: 1,
		IsScanned: true,
	}

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("panic during PDF analysis: %v", r)
			result.IsScanned = true
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		result.Err = fmt.Errorf("open PDF reader: %w", err)
		return result
	}

	result.PageCount = reader.NumPage()
	if result.PageCount < 1 {
		result.PageCount = 1
	}

	plainText, err := reader.GetPlainText()
	if err != nil {
		result.Err = fmt.Errorf("extract plain text: %w", err)
		return result
	}

	textBytes, err := io.ReadAll(io.LimitReader(plainText, int64(maxTextBytes)))
	if err != nil {
		result.Err = fmt.Errorf("read plain text: %w", err)
		return result
	}

	result.Text = string(textBytes)
	result.IsScanned = isLikelyScanned(result.Text, result.PageCount)

	for _, line := range strings.Split(result.Text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			result.Lines = append(result.Lines, trimmed)
		}
	}

	result.EstimatedRows = countTransactionLines(result.Lines)

	return result
}

// countTransactionLines counts lines that contain both a date-like pattern
// and a monetary amount.
func countTransactionLines(lines []string) int {
	count := 0
	for _, line := range lines {
		if datePattern.MatchString(line) && amountPattern.MatchString(line) {
			count++
		}
	}
	return count
}

// isLikelyScanned reports whether the PDF appears to be a scanned image
// (very little extractable text per page).
func isLikelyScanned(text string, pages int) bool {
	if pages <= 0 {
		pages = 1
	}
	return len(text)/pages < scannedThreshold
}
