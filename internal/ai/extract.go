package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/pravs-cyber/finances/internal/model"
)

const extractTextPrompt = `You are a financial statement parser.

Task:
- Parse ALL transactions in the text below. The text may come from a bank
  statement, a pasted table, or a spreadsheet export.
- Output STRICT JSON only (no comments, no trailing commas, no extra text).
- Output a JSON array of objects.

Each object must have these fields:
- "date": string, ISO format "YYYY-MM-DD"
- "description": string
- "amount": number, always positive
- "type": "income" for money in, "expense" for money out

Return ONLY valid raw JSON.
Do NOT wrap the response in code fences.
Output must begin with "[" and end with "]".

Text:
%s`

// ExtractTransactionsFromText asks the model to parse transactions out of
// unstructured statement or spreadsheet text. Malformed model output yields
// zero transactions plus warnings, never an error.
func (c *Client) ExtractTransactionsFromText(ctx context.Context, text string) ([]ExtractedTransaction, []string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, []string{"no text to parse"}, nil
	}

	prompt := fmt.Sprintf(extractTextPrompt, text)
	raw, err := c.generateText(ctx, textContent(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, nil, err
	}

	txs, warnings := decodeTransactionList(raw)
	return txs, warnings, nil
}

const extractImagePrompt = `You are a receipt and document reader for a personal
finance app. Extract every purchase or payment visible in the attached image.

Output STRICT JSON only: a JSON array of objects with fields:
- "description": string (merchant or item)
- "amount": number, always positive
- "date": string "YYYY-MM-DD", or "" if not visible
- "categoryId": the id of the best matching category from the list below, or "" if none fits

%s
%s
Return ONLY valid raw JSON, beginning with "[" and ending with "]".`

// ExtractTransactionsFromImage extracts transactions from a receipt or
// document image, constrained to the user's live category list. Unknown
// category ids returned by the model are cleared rather than trusted.
func (c *Client) ExtractTransactionsFromImage(ctx context.Context, data []byte, mimeType string, categories []*model.Category, instructions string) ([]ExtractedTransaction, []string, error) {
	if len(data) == 0 {
		return nil, []string{"no image data"}, nil
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	extra := ""
	if strings.TrimSpace(instructions) != "" {
		extra = "Additional instructions from the user:\n" + instructions + "\n"
	}
	prompt := fmt.Sprintf(extractImagePrompt, categoriesPrompt(categories), extra)

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: prompt},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
		},
	}}

	raw, err := c.generateText(ctx, contents, nil)
	if err != nil {
		return nil, nil, err
	}

	txs, warnings := decodeTransactionList(raw)

	known := make(map[string]bool, len(categories))
	for _, cat := range categories {
		known[cat.ID] = true
	}
	for i := range txs {
		if txs[i].CategoryID != "" && !known[txs[i].CategoryID] {
			warnings = append(warnings, fmt.Sprintf("row %d: unknown category %q cleared", i, txs[i].CategoryID))
			txs[i].CategoryID = ""
		}
	}
	return txs, warnings, nil
}

// categoriesPrompt renders the user's category list for model consumption.
func categoriesPrompt(categories []*model.Category) string {
	if len(categories) == 0 {
		return "The user has no categories yet; use \"\" for every categoryId.\n"
	}

	var b strings.Builder
	b.WriteString("Use ONLY the following categories (id: name, type):\n")
	for _, cat := range categories {
		fmt.Fprintf(&b, "- %s: %s, %s\n", cat.ID, cat.Name, cat.Type)
	}
	return b.String()
}
