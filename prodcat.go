// Package prodcat provides a product catalog service with approximate
// similarity search over independently-embedded fields.
//
// Example usage:
//
//	st, err := store.New(os.Getenv("PRODCAT_DB_DSN"), store.DefaultPolicy())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	gateway := embedding.NewOpenAIClient(embedding.OpenAIConfig{APIKey: os.Getenv("EMBED_API_KEY")})
//	svc := catalog.NewService(st, gateway, nil)
//
//	p, err := svc.Create(ctx, catalog.CreateInput{SKU: "JKT-001", Name: "Leather Jacket", ...})
//	matches, err := svc.Search(ctx, catalog.FieldDescription, "red jacket", 5)
package prodcat

import (
	"log/slog"

	"github.com/kweller/go-prodcat/catalog"
	"github.com/kweller/go-prodcat/embedding"
	"github.com/kweller/go-prodcat/server"
	"github.com/kweller/go-prodcat/store"
)

// Catalog aliases
type (
	Product     = catalog.Product
	CreateInput = catalog.CreateInput
	UpdateInput = catalog.UpdateInput
	Match       = catalog.Match
	Service     = catalog.Service
	VectorField = catalog.VectorField
)

// Searchable vector fields
const (
	FieldDescription  = catalog.FieldDescription
	FieldFeatures     = catalog.FieldFeatures
	FieldTags         = catalog.FieldTags
	FieldReviewsCount = catalog.FieldReviewsCount
)

// NewService wires a catalog service from a store and an embedding gateway.
func NewService(st catalog.Store, gateway embedding.Gateway, logger *slog.Logger) *Service {
	return catalog.NewService(st, gateway, logger)
}

// Store aliases
type (
	Policy      = store.Policy
	FieldPolicy = store.FieldPolicy
	IndexFamily = store.IndexFamily
)

// NewStore creates a catalog store based on the DSN.
func NewStore(dsn string, policy Policy) (catalog.Store, error) {
	return store.New(dsn, policy)
}

// DefaultPolicy returns the standard index policy.
func DefaultPolicy() Policy {
	return store.DefaultPolicy()
}

// Server aliases
type (
	ServerConfig = server.Config
	HTTPServer   = server.Server
)

// NewServer creates the HTTP front end for a catalog service.
func NewServer(cfg ServerConfig) *HTTPServer {
	return server.New(cfg)
}
