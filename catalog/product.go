// Package catalog implements the vector-enabled product store: the product
// record model, its validation and merge rules, the error taxonomy, and the
// Service that orchestrates embedding computation, persistence and
// similarity search.
package catalog

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// VectorField names a product field that carries a derived embedding.
type VectorField string

const (
	FieldDescription  VectorField = "description"
	FieldFeatures     VectorField = "features"
	FieldTags         VectorField = "tags"
	FieldReviewsCount VectorField = "reviewsCount"
)

// VectorFields lists every searchable vector field in declaration order.
var VectorFields = []VectorField{FieldDescription, FieldFeatures, FieldTags, FieldReviewsCount}

// Valid reports whether f is one of the searchable vector fields.
func (f VectorField) Valid() bool {
	switch f {
	case FieldDescription, FieldFeatures, FieldTags, FieldReviewsCount:
		return true
	}
	return false
}

// Product is the unit of storage. ID is generated at creation and immutable;
// SKU is the externally meaningful unique key and the store's partition key.
// The vector fields are derived from their source fields and are present iff
// the source was non-empty at the last successful (re)compute.
type Product struct {
	ID           string    `json:"id"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	Brand        string    `json:"brand"`
	Category     string    `json:"category"`
	Manufacturer string    `json:"manufacturer"`
	Model        string    `json:"model"`
	Color        string    `json:"color"`
	Material     string    `json:"material"`
	Origin       string    `json:"origin"`
	Price        float64   `json:"price"`
	Currency     string    `json:"currency"`
	Stock        int       `json:"stock"`
	Rating       int       `json:"rating"`
	ReviewsCount int       `json:"reviewsCount"`
	Warranty     string    `json:"warranty"`
	Description  string    `json:"description"`
	Features     string    `json:"features"`
	Tags         []string  `json:"tags"`
	ImageURL     string    `json:"imageUrl"`
	ReleaseDate  string    `json:"releaseDate"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	DescriptionVector  []float64 `json:"descriptionVector,omitempty"`
	FeaturesVector     []float64 `json:"featuresVector,omitempty"`
	TagsVector         []float64 `json:"tagsVector,omitempty"`
	ReviewsCountVector []float64 `json:"reviewsCountVector,omitempty"`
}

// SourceText returns the embeddable text for field f. An empty string means
// the source field is empty and no vector should exist for it.
func (p *Product) SourceText(f VectorField) string {
	switch f {
	case FieldDescription:
		return strings.TrimSpace(p.Description)
	case FieldFeatures:
		return strings.TrimSpace(p.Features)
	case FieldTags:
		return strings.TrimSpace(strings.Join(p.Tags, " "))
	case FieldReviewsCount:
		// A count is always embeddable; "0" is still meaningful input.
		return strconv.Itoa(p.ReviewsCount)
	}
	return ""
}

// Vector returns the stored embedding for field f, nil if absent.
func (p *Product) Vector(f VectorField) []float64 {
	switch f {
	case FieldDescription:
		return p.DescriptionVector
	case FieldFeatures:
		return p.FeaturesVector
	case FieldTags:
		return p.TagsVector
	case FieldReviewsCount:
		return p.ReviewsCountVector
	}
	return nil
}

// SetVector stores the embedding for field f.
func (p *Product) SetVector(f VectorField, v []float64) {
	switch f {
	case FieldDescription:
		p.DescriptionVector = v
	case FieldFeatures:
		p.FeaturesVector = v
	case FieldTags:
		p.TagsVector = v
	case FieldReviewsCount:
		p.ReviewsCountVector = v
	}
}

// Match is one similarity search hit. Score is the distance between the
// stored vector and the query vector; smaller means more similar, regardless
// of the underlying metric. The product carries no vector fields.
type Match struct {
	Product Product
	Score   float64
}

// Store is the persistence boundary for product records. Implementations
// must be safe for concurrent use and must return errors from the catalog
// taxonomy (ErrNotFound, ErrConflict, ErrStoreUnavailable, ...).
type Store interface {
	// Insert persists a new record. Fails with ErrConflict if a record with
	// the same sku or id already exists.
	Insert(ctx context.Context, p Product) error

	// Get returns the record with the given id, ErrNotFound if absent.
	Get(ctx context.Context, id string) (Product, error)

	// List returns all records projected to exclude embedding vectors, in
	// the store's natural scan order.
	List(ctx context.Context) ([]Product, error)

	// Replace overwrites the record keyed by p.ID, ErrNotFound if absent.
	Replace(ctx context.Context, p Product) error

	// Delete removes the record with the given id, ErrNotFound if absent.
	Delete(ctx context.Context, id string) error

	// Search returns up to top records ranked by ascending distance between
	// the stored vector for field and vec. Records carry no vector fields.
	Search(ctx context.Context, field VectorField, vec []float64, top int) ([]Match, error)

	// Close releases the underlying connection pool.
	Close() error
}
