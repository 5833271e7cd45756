// Package config loads server configuration from the environment.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds everything the server needs to wire its collaborators.
type Config struct {
	Port           string
	Env            string
	UseMemoryStore bool
	SkipAuth       bool

	GoogleCloudProject string

	GeminiAPIKey string
	GeminiModel  string

	AlgoliaAppID  string
	AlgoliaAPIKey string
	AlgoliaIndex  string

	DocumentBucket string

	AllowedOrigins []string
}

// Load reads configuration from environment variables, applying defaults for
// local development.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8111")
	v.SetDefault("ENV", "local")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("ALGOLIA_INDEX", "finances")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:1234,http://127.0.0.1:1234")

	cfg := &Config{
		Port:               v.GetString("PORT"),
		Env:                v.GetString("ENV"),
		UseMemoryStore:     v.GetBool("USE_MEMORY_STORE") || v.GetString("ENV") == "local",
		SkipAuth:           v.GetBool("SKIP_AUTH"),
		GoogleCloudProject: v.GetString("GOOGLE_CLOUD_PROJECT"),
		GeminiAPIKey:       v.GetString("GEMINI_API_KEY"),
		GeminiModel:        v.GetString("GEMINI_MODEL"),
		AlgoliaAppID:       v.GetString("ALGOLIA_APP_ID"),
		AlgoliaAPIKey:      v.GetString("ALGOLIA_API_KEY"),
		AlgoliaIndex:       v.GetString("ALGOLIA_INDEX"),
		DocumentBucket:     v.GetString("DOCUMENT_BUCKET"),
	}

	for _, origin := range strings.Split(v.GetString("ALLOWED_ORIGINS"), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	return cfg, nil
}
