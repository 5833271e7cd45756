package main

import (
	"context"
	"net/http"

	"cloud.google.com/go/firestore"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/pravs-cyber/finances/internal/ai"
	"github.com/pravs-cyber/finances/internal/auth"
	"github.com/pravs-cyber/finances/internal/config"
	"github.com/pravs-cyber/finances/internal/docstore"
	"github.com/pravs-cyber/finances/internal/logger"
	"github.com/pravs-cyber/finances/internal/search"
	"github.com/pravs-cyber/finances/internal/service"
	"github.com/pravs-cyber/finances/internal/store"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration")
	}

	var storeImpl store.Store
	var firebaseAuth *auth.FirebaseAuth

	if cfg.UseMemoryStore {
		log.Info().Msg("using in-memory store")
		storeImpl = store.NewMemoryStore()
	} else {
		firestoreClient, err := firestore.NewClient(ctx, cfg.GoogleCloudProject)
		if err != nil {
			log.Fatal().Err(err).Msg("creating Firestore client")
		}
		defer firestoreClient.Close()
		storeImpl = store.NewFirestoreStore(firestoreClient)

		if cfg.SkipAuth {
			log.Warn().Msg("SKIP_AUTH enabled, requests use the local dev identity")
		} else {
			firebaseAuth, err = auth.NewFirebaseAuth(ctx)
			if err != nil {
				log.Fatal().Err(err).Msg("initializing Firebase auth")
			}
		}
	}

	svc := service.NewFinanceService(storeImpl, log)

	if cfg.GeminiAPIKey != "" {
		assistant, err := ai.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatal().Err(err).Msg("creating assistant client")
		}
		svc.SetAssistant(assistant)
		log.Info().Str("model", cfg.GeminiModel).Msg("assistant enabled")
	} else {
		log.Info().Msg("GEMINI_API_KEY not set, assistant endpoints disabled")
	}

	if cfg.AlgoliaAppID != "" && cfg.AlgoliaAPIKey != "" {
		searcher, err := search.NewClient(search.Config{
			AppID:     cfg.AlgoliaAppID,
			APIKey:    cfg.AlgoliaAPIKey,
			IndexName: cfg.AlgoliaIndex,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("creating search client")
		}
		svc.SetSearchClient(searcher)
		log.Info().Str("index", cfg.AlgoliaIndex).Msg("search enabled")
	} else {
		log.Info().Msg("Algolia credentials not set, search endpoint disabled")
	}

	if cfg.DocumentBucket != "" {
		docs, err := docstore.New(ctx, cfg.DocumentBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("creating document store")
		}
		svc.SetDocStore(docs)
		log.Info().Str("bucket", cfg.DocumentBucket).Msg("document storage enabled")
	} else {
		log.Info().Msg("DOCUMENT_BUCKET not set, receipt storage disabled")
	}

	var handler http.Handler = svc.Routes()
	if firebaseAuth != nil {
		handler = auth.Middleware(firebaseAuth)(handler)
	} else {
		handler = auth.LocalDevMiddleware(handler)
	}

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"User-Agent",
		},
		AllowCredentials: true,
	})
	handler = c.Handler(handler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
