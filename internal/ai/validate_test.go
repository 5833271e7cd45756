package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeTransactionList_ValidArray(t *testing.T) {
	raw := `[
		{"date": "2024-03-01", "description": "Coffee", "amount": 4.50, "type": "expense"},
		{"date": "2024-03-02", "description": "Salary", "amount": 5000, "type": "income"}
	]`

	txs, warnings := decodeTransactionList(raw)
	require.Len(t, txs, 2)
	assert.Empty(t, warnings)
	assert.Equal(t, "Coffee", txs[0].Description)
	assert.Equal(t, "income", txs[1].Type)
}

func TestDecodeTransactionList_CodeFences(t *testing.T) {
	raw := "```json\n[{\"date\": \"2024-03-01\", \"description\": \"Coffee\", \"amount\": 4.5, \"type\": \"expense\"}]\n```"

	txs, warnings := decodeTransactionList(raw)
	require.Len(t, txs, 1)
	assert.Empty(t, warnings)
}

func TestDecodeTransactionList_WrappedObject(t *testing.T) {
	raw := `{"transactions": [{"date": "2024-03-01", "description": "Coffee", "amount": 4.5}]}`

	txs, _ := decodeTransactionList(raw)
	require.Len(t, txs, 1)
	assert.Equal(t, "expense", txs[0].Type, "missing type defaults to expense")
}

func TestDecodeTransactionList_MalformedYieldsZeroResults(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":       "",
		"prose":       "I could not find any transactions in this document.",
		"broken json": `[{"date": "2024-03-01", "description": `,
		"not a list":  `{"status": "ok"}`,
	} {
		t.Run(name, func(t *testing.T) {
			txs, warnings := decodeTransactionList(raw)
			assert.Empty(t, txs)
			assert.NotEmpty(t, warnings)
		})
	}
}

func TestDecodeTransactionList_DropsInvalidRows(t *testing.T) {
	raw := `[
		{"date": "2024-03-01", "description": "Valid", "amount": 10, "type": "expense"},
		{"date": "2024-03-01", "description": "", "amount": 10, "type": "expense"},
		{"date": "2024-03-01", "description": "Negative", "amount": -5, "type": "expense"},
		{"date": "not-a-date", "description": "Bad date", "amount": 5, "type": "expense"},
		{"date": "2024-03-01", "description": "Bad type", "amount": 5, "type": "transfer"}
	]`

	txs, warnings := decodeTransactionList(raw)
	require.Len(t, txs, 1)
	assert.Equal(t, "Valid", txs[0].Description)
	assert.Len(t, warnings, 4)
}

func TestTransactionFromToolArgs(t *testing.T) {
	tx, ok := transactionFromToolArgs(map[string]any{
		"description": "Lunch",
		"amount":      12.5,
		"type":        "expense",
		"date":        "2024-06-01",
	})
	require.True(t, ok)
	assert.Equal(t, "Lunch", tx.Description)

	_, ok = transactionFromToolArgs(map[string]any{
		"description": "Lunch",
		"amount":      -1,
		"type":        "expense",
	})
	assert.False(t, ok, "negative amount must be rejected")

	_, ok = transactionFromToolArgs(map[string]any{
		"amount": "twelve",
	})
	assert.False(t, ok, "non-numeric amount must be rejected")
}

func TestParsedDate(t *testing.T) {
	tx := ExtractedTransaction{Date: "2024-02-29"}
	parsed, ok := tx.ParsedDate()
	require.True(t, ok)
	assert.Equal(t, 2024, parsed.Year())

	tx = ExtractedTransaction{Date: ""}
	_, ok = tx.ParsedDate()
	assert.False(t, ok)
}

func TestCleanModelJSON_ProseAroundPayload(t *testing.T) {
	raw := `Here are the results: [{"description": "Coffee", "amount": 4.5}] Hope that helps!`
	cleaned := cleanModelJSON(raw)
	assert.Equal(t, `[{"description": "Coffee", "amount": 4.5}]`, cleaned)
}
