package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kweller/go-prodcat/embedding"
)

const (
	// DefaultTop is the result limit applied when a search request does not
	// specify one.
	DefaultTop = 10

	// MaxTop caps caller-supplied result limits to keep result sets bounded.
	MaxTop = 100
)

// Service orchestrates the catalog: it validates payloads, computes
// embeddings through the gateway, and reads/writes records through the
// store. It holds no mutable state and is safe for concurrent use.
type Service struct {
	store   Store
	gateway embedding.Gateway
	logger  *slog.Logger
}

// NewService wires a Service from its collaborators. A nil logger defaults
// to slog's package-level logger.
func NewService(store Store, gateway embedding.Gateway, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, gateway: gateway, logger: logger}
}

// Create validates the payload, computes embeddings for every non-empty
// content field concurrently, and persists the record. If any embedding
// call fails the whole operation fails and nothing is persisted.
func (s *Service) Create(ctx context.Context, in CreateInput) (Product, error) {
	p, err := New(in)
	if err != nil {
		return Product{}, err
	}
	if err := s.embed(ctx, &p, VectorFields); err != nil {
		return Product{}, err
	}
	if err := s.store.Insert(ctx, p); err != nil {
		return Product{}, err
	}
	s.logger.Debug("product created", "id", p.ID, "sku", p.SKU)
	return p, nil
}

// Get returns the record with the given id.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	return s.store.Get(ctx, id)
}

// List returns all records without their embedding vectors.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.store.List(ctx)
}

// Update merges a partial payload over the existing record, recomputes
// embeddings for the content fields the payload changed, and writes the
// record back with replace semantics. Untouched vectors are carried over
// unchanged.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Product, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	merged, touched, err := Merge(existing, in)
	if err != nil {
		return Product{}, err
	}
	if err := s.embed(ctx, &merged, touched); err != nil {
		return Product{}, err
	}
	if err := s.store.Replace(ctx, merged); err != nil {
		return Product{}, err
	}
	s.logger.Debug("product updated", "id", merged.ID, "recomputed", len(touched))
	return merged, nil
}

// Delete removes the record with the given id.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// Search embeds the raw input and returns up to top records ranked by
// ascending distance for the given vector field. The input must embed
// successfully before any store round-trip happens.
func (s *Service) Search(ctx context.Context, field VectorField, input string, top int) ([]Match, error) {
	if !field.Valid() {
		return nil, invalidf("field", "%q is not searchable", string(field))
	}
	if top <= 0 {
		return nil, invalidf("top", "must be positive, got %d", top)
	}
	if top > MaxTop {
		top = MaxTop
	}
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("%w: empty search input for %s", ErrEmbeddingFailure, field)
	}

	vec, err := s.gateway.Embed(ctx, input)
	if err != nil {
		s.logger.Error("search input embedding failed", "field", field, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailure, err)
	}

	return s.store.Search(ctx, field, vec, top)
}

// embed computes vectors for the given fields with non-empty sources. The
// calls fan out concurrently and are awaited jointly; the first failure
// cancels the rest and aborts the write.
func (s *Service) embed(ctx context.Context, p *Product, fields []VectorField) error {
	type slot struct {
		field VectorField
		vec   []float64
	}

	pending := make([]slot, 0, len(fields))
	for _, f := range fields {
		if p.SourceText(f) != "" {
			pending = append(pending, slot{field: f})
		}
	}
	if len(pending) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range pending {
		g.Go(func() error {
			vec, err := s.gateway.Embed(gctx, p.SourceText(pending[i].field))
			if err != nil {
				return fmt.Errorf("embed %s: %w", pending[i].field, err)
			}
			pending[i].vec = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("embedding computation failed", "id", p.ID, "error", err)
		return fmt.Errorf("%w: %v", ErrEmbeddingFailure, err)
	}

	for _, sl := range pending {
		p.SetVector(sl.field, sl.vec)
	}
	return nil
}
