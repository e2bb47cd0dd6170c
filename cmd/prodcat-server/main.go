package main

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/kweller/go-prodcat/catalog"
	"github.com/kweller/go-prodcat/embedding"
	"github.com/kweller/go-prodcat/server"
	"github.com/kweller/go-prodcat/store"
)

func main() {
	logger := newLogger()

	st, err := store.New(os.Getenv("PRODCAT_DB_DSN"), newPolicy(logger))
	if err != nil {
		logger.Error("initialize store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	svc := catalog.NewService(st, newGateway(), logger)
	srv := server.New(server.Config{Catalog: svc, Logger: logger})

	addr := getEnvOr("PRODCAT_ADDR", ":8000")
	logger.Info("starting prodcat server", "addr", addr)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger. Outside production the level drops
// to debug, mirroring the store's diagnostic verbosity switch.
func newLogger() *slog.Logger {
	level := slog.LevelDebug
	if getEnvOr("PRODCAT_ENV", "development") == "production" {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// newPolicy returns the default index policy, with the vector dimension
// overridden when the configured embedding model produces a different one.
func newPolicy(logger *slog.Logger) store.Policy {
	policy := store.DefaultPolicy()
	if raw := os.Getenv("EMBED_DIMENSION"); raw != "" {
		dim, err := strconv.Atoi(raw)
		if err != nil || dim <= 0 {
			logger.Error("invalid EMBED_DIMENSION", "value", raw)
			os.Exit(1)
		}
		policy.Dimension = dim
	}
	return policy
}

// newGateway picks the embedding backend: an OpenAI-compatible endpoint
// when an API key is configured, the local Ollama API otherwise.
func newGateway() embedding.Gateway {
	if apiKey := os.Getenv("EMBED_API_KEY"); apiKey != "" {
		return embedding.NewOpenAIClient(embedding.OpenAIConfig{
			APIKey:  apiKey,
			BaseURL: os.Getenv("EMBED_BASE_URL"),
			Model:   os.Getenv("EMBED_MODEL"),
		})
	}
	return embedding.NewOllamaClient(getEnvOr("OLLAMA_URL", "http://localhost:11434"), os.Getenv("EMBED_MODEL"))
}

func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
