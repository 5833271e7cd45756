//go:build ignore
// +build ignore

// seed-data populates a locally running server with realistic sample data.
//
// Usage:
//
//	go run scripts/seed-data.go
//	API_URL=http://localhost:8111 USER_ID=demo-user go run scripts/seed-data.go
//
// The backend must be running with the local dev identity (memory store, or
// SKIP_AUTH=true against Firestore). USER_ID is sent via the impersonation
// header the local dev middleware understands.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

var (
	apiURL = envOr("API_URL", "http://localhost:8111")
	userID = envOr("USER_ID", "local-dev-user")
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func post(path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest("POST", apiURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Debug-Impersonate-User", userID)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: %s", path, resp.Status, data)
	}
	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}

func get(path string, out any) error {
	req, err := http.NewRequest("GET", apiURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Debug-Impersonate-User", userID)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: %s", path, resp.Status, data)
	}
	return json.Unmarshal(data, out)
}

type category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

func main() {
	log.Printf("Seeding data for user %s via %s", userID, apiURL)

	// Touching /v1/users/me creates the user and its default categories.
	var user map[string]any
	if err := get("/v1/users/me", &user); err != nil {
		log.Fatalf("bootstrapping user: %v", err)
	}

	var cats struct {
		Categories []category `json:"categories"`
	}
	if err := get("/v1/categories", &cats); err != nil {
		log.Fatalf("listing categories: %v", err)
	}
	byName := map[string]string{}
	for _, c := range cats.Categories {
		byName[c.Name] = c.ID
	}

	now := time.Now().UTC()
	day := func(offset int) string {
		return now.AddDate(0, 0, -offset).Format("2006-01-02T00:00:00Z")
	}

	transactions := []map[string]any{
		{"date": day(1), "description": "Woolworths", "amount": 86.40, "type": "expense", "categoryId": byName["Food"]},
		{"date": day(2), "description": "Shell fuel", "amount": 72.10, "type": "expense", "categoryId": byName["Transport"]},
		{"date": day(3), "description": "Netflix", "amount": 16.99, "type": "expense", "categoryId": byName["Entertainment"]},
		{"date": day(5), "description": "Electricity bill", "amount": 143.20, "type": "expense", "categoryId": byName["Utilities"]},
		{"date": day(7), "description": "Coles", "amount": 54.75, "type": "expense", "categoryId": byName["Food"]},
		{"date": day(10), "description": "Chemist Warehouse", "amount": 28.50, "type": "expense", "categoryId": byName["Healthcare"]},
		{"date": day(14), "description": "Monthly salary", "amount": 6200.00, "type": "income", "categoryId": byName["Salary"]},
		{"date": day(16), "description": "JB Hi-Fi", "amount": 249.00, "type": "expense", "categoryId": byName["Shopping"]},
		{"date": day(21), "description": "Uber", "amount": 23.80, "type": "expense", "categoryId": byName["Transport"]},
	}
	for _, tx := range transactions {
		if err := post("/v1/transactions", tx, nil); err != nil {
			log.Fatalf("seeding transaction: %v", err)
		}
	}
	log.Printf("Created %d transactions", len(transactions))

	recurring := []map[string]any{
		{"description": "Rent", "amount": 1800.00, "type": "expense", "frequency": "monthly",
			"startDate": now.AddDate(0, -2, 0).Format("2006-01-02T00:00:00Z"), "categoryId": byName["Housing"]},
		{"description": "Gym membership", "amount": 24.95, "type": "expense", "frequency": "weekly",
			"startDate": now.AddDate(0, -1, 0).Format("2006-01-02T00:00:00Z")},
	}
	for _, rule := range recurring {
		if err := post("/v1/recurring", rule, nil); err != nil {
			log.Fatalf("seeding recurring rule: %v", err)
		}
	}
	if err := post("/v1/recurring/process", nil, nil); err != nil {
		log.Fatalf("processing recurring rules: %v", err)
	}
	log.Printf("Created %d recurring rules and materialized them", len(recurring))

	budgets := []map[string]any{
		{"categoryId": byName["Food"], "amount": 600.00, "period": "monthly",
			"startDate": now.AddDate(0, -3, 0).Format("2006-01-02T00:00:00Z")},
		{"categoryId": byName["Entertainment"], "amount": 100.00, "period": "monthly",
			"startDate": now.AddDate(0, -3, 0).Format("2006-01-02T00:00:00Z")},
	}
	for _, b := range budgets {
		if err := post("/v1/budgets", b, nil); err != nil {
			log.Fatalf("seeding budget: %v", err)
		}
	}
	log.Printf("Created %d budgets", len(budgets))

	goals := []map[string]any{
		{"name": "Emergency fund", "targetAmount": 10000.00,
			"targetDate": now.AddDate(1, 0, 0).Format("2006-01-02T00:00:00Z")},
		{"name": "Japan trip", "targetAmount": 4500.00},
	}
	for _, g := range goals {
		if err := post("/v1/goals", g, nil); err != nil {
			log.Fatalf("seeding goal: %v", err)
		}
	}
	log.Printf("Created %d goals", len(goals))

	investments := []map[string]any{
		{"name": "Vanguard Australian Shares", "symbol": "VAS", "quantity": 42, "purchasePrice": 88.20},
		{"name": "Bitcoin", "symbol": "BTC", "quantity": 0.15, "purchasePrice": 61000.00},
	}
	for _, inv := range investments {
		if err := post("/v1/investments", inv, nil); err != nil {
			log.Fatalf("seeding investment: %v", err)
		}
	}
	log.Printf("Created %d investments", len(investments))

	log.Println("Done.")
}
