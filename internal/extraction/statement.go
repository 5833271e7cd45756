package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const minParseRate = 0.50 // must parse at least half of the estimated lines

// Row is a single transaction-like line parsed from a statement.
type Row struct {
	Date        time.Time
	Description string
	Merchant    string
	Category    string
	Amount      float64
	IsDebit     bool
}

// statementLineRe matches a line shaped like: date ... description ... amount.
// Groups: (1) date, (2) description, (3) amount with optional sign/$/CR suffix.
var statementLineRe = regexp.MustCompile(
	`(?i)` +
		`(\d{1,2}[/\-\.]\d{1,2}[/\-\.]\d{2,4}|\d{4}[/\-]\d{2}[/\-]\d{2}|` +
		`(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2}(?:[,\s]+\d{2,4})?|` +
		`\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?(?:[,\s]+\d{2,4})?)` +
		`\s+(.+?)\s+` +
		`(-?\$?\d{1,3}(?:,\d{3})*\.\d{2}(?:\s*(?:CR|DR))?)$`,
)

var dateFormats = []string{
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"02.01.2006",
	"2006-01-02",
	"2006/01/02",
	"Jan 02 2006",
	"Jan 2 2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 02, 2006",
	"Jan 2, 2006",
	"02/01/06",
	"2/1/06",
}

// ParseStatement runs the rule-based line parser over pre-analyzed PDF text.
// It errors when the document is scanned, too sparse, or the parse rate falls
// below threshold; the caller should then fall back to the model extractor.
func ParseStatement(analysis *PDFAnalysis) ([]Row, error) {
	if analysis == nil || analysis.IsScanned {
		return nil, fmt.Errorf("cannot parse scanned PDF")
	}

	if analysis.PageCount > 0 && len(analysis.Text)/analysis.PageCount < textDenseMin {
		return nil, fmt.Errorf("text density too low for rule-based parsing")
	}

	var rows []Row
	for _, line := range analysis.Lines {
		matches := statementLineRe.FindStringSubmatch(line)
		if matches == nil {
			continue
		}

		dateStr := strings.TrimSpace(matches[1])
		description := strings.TrimSpace(matches[2])
		amountStr := strings.TrimSpace(matches[3])

		amount, isDebit := parseAmount(amountStr)
		if amount <= 0 {
			continue
		}

		info := NormalizeMerchant(description)

		rows = append(rows, Row{
			Date:        parseFlexibleDate(dateStr),
			Description: description,
			Merchant:    info.Name,
			Category:    info.Category,
			Amount:      amount,
			IsDebit:     isDebit,
		})
	}

	if analysis.EstimatedRows > 0 {
		parseRate := float64(len(rows)) / float64(analysis.EstimatedRows)
		if parseRate < minParseRate {
			return nil, fmt.Errorf("parse rate %.2f below threshold %.2f (%d/%d)",
				parseRate, minParseRate, len(rows), analysis.EstimatedRows)
		}
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no transactions parsed from text")
	}

	return rows, nil
}

// parseFlexibleDate tries the known statement formats and returns the zero
// time if none match.
func parseFlexibleDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			if t.Year() < 100 {
				t = t.AddDate(2000, 0, 0)
			}
			return t
		}
	}
	return time.Time{}
}

// parseAmount extracts a numeric amount from a string like "$1,234.56" or
// "-45.00". Returns the absolute amount and whether it is a debit.
func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)

	isDebit := true
	switch upper := strings.ToUpper(s); {
	case strings.HasSuffix(upper, "CR"):
		isDebit = false
		s = strings.TrimSpace(s[:len(s)-2])
	case strings.HasSuffix(upper, "DR"):
		s = strings.TrimSpace(s[:len(s)-2])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "-") {
		s = s[1:]
		// Negative amounts on bank statements are usually credits/refunds.
		isDebit = false
	}

	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	return amount, isDebit
}
