// Package ai wraps the Gemini API behind the operations the finance service
// needs: chat, document extraction, category suggestion, price lookup, and
// report generation. Every call is stateless request/response; every response
// passes a runtime shape check before it is trusted.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.0-flash"

// Client is a stateless Gemini API wrapper.
type Client struct {
	genai *genai.Client
	model string
	retry RetryConfig
}

// NewClient creates a Gemini-backed assistant client.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if apiKey == "" {
		return nil, &APIError{Code: ErrNotConfigured, Message: "Gemini API key not configured"}
	}
	if model == "" {
		model = defaultModel
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Client{
		genai: gc,
		model: model,
		retry: DefaultRetryConfig,
	}, nil
}

// Message is one turn of an assistant conversation.
type Message struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

// ChatOptions toggles the optional capabilities of a chat call.
type ChatOptions struct {
	// EnableSearch grounds the response with web search results.
	EnableSearch bool
	// AllowAddTransaction exposes the add_transaction tool to the model.
	AllowAddTransaction bool
}

// ChatResult is the outcome of one chat turn. AddTransaction is non-nil when
// the model invoked the add_transaction tool; the caller decides whether to
// honor it.
type ChatResult struct {
	Text           string
	AddTransaction *ExtractedTransaction
}

// addTransactionTool is the only mutation the assistant may request.
var addTransactionTool = &genai.Tool{
	FunctionDeclarations: []*genai.FunctionDeclaration{{
		Name:        "add_transaction",
		Description: "Record a new transaction in the user's ledger.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"date":        {Type: genai.TypeString, Description: "Calendar date, YYYY-MM-DD. Defaults to today when omitted."},
				"description": {Type: genai.TypeString},
				"amount":      {Type: genai.TypeNumber, Description: "Positive amount."},
				"type":        {Type: genai.TypeString, Enum: []string{"income", "expense"}},
			},
			Required: []string{"description", "amount", "type"},
		},
	}},
}

// Chat sends a conversation to the model and returns its reply, plus any
// add_transaction tool call it made.
func (c *Client) Chat(ctx context.Context, messages []Message, opts ChatOptions) (*ChatResult, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		if role != "model" {
			role = "user"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Text}},
		})
	}

	cfg := &genai.GenerateContentConfig{}
	if opts.EnableSearch {
		cfg.Tools = append(cfg.Tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
	}
	if opts.AllowAddTransaction {
		cfg.Tools = append(cfg.Tools, addTransactionTool)
	}

	resp, err := c.generate(ctx, contents, cfg)
	if err != nil {
		return nil, err
	}

	result := &ChatResult{Text: resp.Text()}
	for _, call := range resp.FunctionCalls() {
		if call.Name != "add_transaction" {
			continue
		}
		tx, ok := transactionFromToolArgs(call.Args)
		if ok {
			result.AddTransaction = tx
		}
		break
	}
	return result, nil
}

// transactionFromToolArgs converts tool-call arguments to an extracted
// transaction, rejecting malformed shapes rather than trusting the model.
func transactionFromToolArgs(args map[string]any) (*ExtractedTransaction, bool) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, false
	}
	var tx ExtractedTransaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, false
	}
	if issue := tx.validate(); issue != "" {
		return nil, false
	}
	return &tx, true
}

// generate performs one GenerateContent call with retry.
func (c *Client) generate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	resp, err := WithRetry(ctx, c.retry, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
		r, err := c.genai.Models.GenerateContent(ctx, c.model, contents, cfg)
		if err != nil {
			return nil, classify(err)
		}
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// generateText performs one call and returns the text of the response.
func (c *Client) generateText(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (string, error) {
	resp, err := c.generate(ctx, contents, cfg)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", &APIError{Code: ErrEmptyResponse, Message: "empty response from model"}
	}
	return text, nil
}

// classify maps an upstream error to an APIError with a retryability verdict.
func classify(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "429") || strings.Contains(strings.ToLower(msg), "rate"):
		return &APIError{Code: ErrRateLimited, Message: "Gemini API rate limited", Retryable: true, Cause: err}
	case strings.Contains(msg, "400") || strings.Contains(msg, "INVALID_ARGUMENT"):
		return &APIError{Code: ErrInvalidResponse, Message: "Gemini API rejected request", Retryable: false, Cause: err}
	default:
		return &APIError{Code: ErrUnavailable, Message: "Gemini API call failed", Retryable: true, Cause: err}
	}
}

func textContent(text string) []*genai.Content {
	return []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: text}},
	}}
}
