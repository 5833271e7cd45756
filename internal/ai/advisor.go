package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/pravs-cyber/finances/internal/model"
)

// CategorySuggestion is the model's best match for a transaction description.
type CategorySuggestion struct {
	CategoryID string `json:"categoryId"`
	Type       string `json:"type"`
}

const suggestCategoryPrompt = `Given a transaction description, pick the single
best matching category from the list below.

%s
Transaction description: %q

Return JSON only: {"categoryId": "...", "type": "income" or "expense"}.
If nothing fits, return {"categoryId": "", "type": "expense"}.`

// SuggestCategory asks the model for the best category for a description.
// A malformed or unknown answer yields (nil, nil): no usable result.
func (c *Client) SuggestCategory(ctx context.Context, description string, categories []*model.Category) (*CategorySuggestion, error) {
	prompt := fmt.Sprintf(suggestCategoryPrompt, categoriesPrompt(categories), description)
	raw, err := c.generateText(ctx, textContent(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, err
	}

	var suggestion CategorySuggestion
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &suggestion); err != nil {
		return nil, nil
	}
	if suggestion.CategoryID == "" {
		return nil, nil
	}
	for _, cat := range categories {
		if cat.ID == suggestion.CategoryID {
			if suggestion.Type != "income" && suggestion.Type != "expense" {
				suggestion.Type = string(cat.Type)
			}
			return &suggestion, nil
		}
	}
	// Model invented a category id; treat as no usable result.
	return nil, nil
}

const lookupPricePrompt = `What is the current market price of %q?
Use web search to find the latest quote.
Respond with JSON only: {"price": <number>} using the asset's trading currency.
If no price can be found, respond {"price": null}.`

// LookupPrice returns a best-effort current price for a free-text investment
// name, grounded with web search. ok is false when no usable price came back.
func (c *Client) LookupPrice(ctx context.Context, name string) (price float64, ok bool, err error) {
	raw, err := c.generateText(ctx, textContent(fmt.Sprintf(lookupPricePrompt, name)), &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	})
	if err != nil {
		return 0, false, err
	}

	var parsed struct {
		Price *float64 `json:"price"`
	}
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &parsed); err != nil {
		return 0, false, nil
	}
	if parsed.Price == nil || *parsed.Price <= 0 {
		return 0, false, nil
	}
	return *parsed.Price, true, nil
}

const reportPrompt = `You are a personal finance advisor. Below is a JSON
snapshot of a user's finances: transactions, budgets, goals, and investments.

Write a concise advisory report in plain prose:
- summarize income vs spending,
- flag budgets that are over or close to their limit,
- comment on progress toward each goal,
- note anything unusual in the transaction history.

Do not return JSON. Do not invent numbers that are not derivable from the data.

Snapshot:
%s`

// GenerateReport produces a free-text advisory report from the user's full
// financial snapshot.
func (c *Client) GenerateReport(ctx context.Context, snapshot *model.Snapshot) (string, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	report, err := c.generateText(ctx, textContent(fmt.Sprintf(reportPrompt, payload)), nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(report), nil
}
