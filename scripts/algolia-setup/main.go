// algolia-setup applies the search index settings for the finances project.
// It is the single source of truth for the Algolia index configuration.
//
// Usage:
//
//	ALGOLIA_APP_ID=... ALGOLIA_ADMIN_KEY=... go run ./scripts/algolia-setup
//	ALGOLIA_APP_ID=... ALGOLIA_ADMIN_KEY=... ALGOLIA_INDEX_NAME=finances go run ./scripts/algolia-setup
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/algolia/algoliasearch-client-go/v4/algolia/search"
)

func int32Ptr(v int32) *int32 { return &v }

func main() {
	appID := os.Getenv("ALGOLIA_APP_ID")
	adminKey := os.Getenv("ALGOLIA_ADMIN_KEY")
	indexName := os.Getenv("ALGOLIA_INDEX_NAME")

	if appID == "" || adminKey == "" {
		log.Fatal("ALGOLIA_APP_ID and ALGOLIA_ADMIN_KEY are required")
	}
	if indexName == "" {
		indexName = "finances"
	}

	client, err := search.NewClient(appID, adminKey)
	if err != nil {
		log.Fatalf("Failed to create Algolia client: %v", err)
	}

	log.Printf("Configuring Algolia index %q (app: %s)...", indexName, appID)

	settings := &search.IndexSettings{
		SearchableAttributes: []string{
			"Description",
			"Category",
		},

		// UserId is filter-only for tenant isolation and never returned in
		// results.
		AttributesForFaceting: []string{
			"filterOnly(UserId)",
			"searchable(Category)",
			"filterOnly(Type)",
		},

		NumericAttributesForFiltering: []string{
			"Amount",
			"DateUnix",
		},

		// Most recent transactions first, after text relevance.
		CustomRanking: []string{
			"desc(DateUnix)",
		},

		AttributesToRetrieve: []string{
			"objectID",
			"Description",
			"Category",
			"Amount",
			"Date",
			"DateUnix",
			"Type",
		},

		AttributesToHighlight: []string{
			"Description",
			"Category",
		},

		HitsPerPage:       int32Ptr(25),
		MaxValuesPerFacet: int32Ptr(100),

		MinWordSizefor1Typo:  int32Ptr(4),
		MinWordSizefor2Typos: int32Ptr(8),
	}

	req := client.NewApiSetSettingsRequest(indexName, settings)
	resp, err := client.SetSettings(req)
	if err != nil {
		log.Fatalf("Failed to set index settings: %v", err)
	}

	log.Printf("Index settings applied (taskID: %d, updatedAt: %s)", resp.TaskID, resp.UpdatedAt)

	fmt.Println()
	fmt.Println("=== Algolia Index Configuration ===")
	fmt.Printf("Index:              %s\n", indexName)
	fmt.Printf("App ID:             %s\n", appID)
	fmt.Println()
	fmt.Println("Searchable attrs:   Description, Category")
	fmt.Println("Facet filters:      UserId, Category, Type")
	fmt.Println("Numeric filters:    Amount, DateUnix")
	fmt.Println("Custom ranking:     desc(DateUnix)")
	fmt.Println()
	fmt.Println("Done. Settings apply asynchronously and are active within seconds.")
}
