// Package store implements the catalog store against a document database
// with per-field vector indexing: the index policy, the similarity query
// builder, and the Postgres/pgvector and SQLite backends.
package store

import (
	"fmt"

	"github.com/kweller/go-prodcat/catalog"
)

// IndexFamily selects the algorithmic structure used to accelerate
// nearest-neighbor lookup over one vector column.
type IndexFamily string

const (
	// FamilyGraph is the high-recall graph-based index (HNSW). Reserved
	// for the primary, most-queried field; costs more memory and build
	// time.
	FamilyGraph IndexFamily = "hnsw"

	// FamilyQuantizedFlat is the clustered approximate flat index
	// (IVFFlat) used for secondary fields, trading some recall for a
	// cheaper footprint.
	FamilyQuantizedFlat IndexFamily = "ivfflat"
)

// Metric selects the distance function for a vector column.
type Metric string

const (
	MetricCosine    Metric = "cosine"
	MetricEuclidean Metric = "euclidean"
)

// operator returns the pgvector distance operator for the metric. Both
// order ascending with smaller meaning more similar.
func (m Metric) operator() string {
	if m == MetricEuclidean {
		return "<->"
	}
	return "<=>"
}

// opclass returns the pgvector index operator class for the metric.
func (m Metric) opclass() string {
	if m == MetricEuclidean {
		return "vector_l2_ops"
	}
	return "vector_cosine_ops"
}

// FieldPolicy governs how one vector field is indexed and queried.
// Included=false keeps the vector out of the general-purpose document
// index; it participates only through its dedicated vector index. This is
// a storage/performance trade-off, not a correctness one.
type FieldPolicy struct {
	Family   IndexFamily
	Metric   Metric
	Included bool
}

// Policy is the process-wide, read-only index configuration: one entry per
// vector field plus the embedding dimension shared by all of them. Built
// once at startup and never mutated; policy changes require redeployment.
type Policy struct {
	Dimension int
	Fields    map[catalog.VectorField]FieldPolicy
}

// DefaultDimension matches the OpenAI text-embedding models.
const DefaultDimension = 1536

// DefaultPolicy returns the standard catalog policy: the graph index for
// the primary description field, the quantized flat index for the
// secondary fields, cosine distance for text-derived vectors and Euclidean
// for the numeric reviews count. All vectors stay out of the scalar
// document index.
func DefaultPolicy() Policy {
	return Policy{
		Dimension: DefaultDimension,
		Fields: map[catalog.VectorField]FieldPolicy{
			catalog.FieldDescription:  {Family: FamilyGraph, Metric: MetricCosine},
			catalog.FieldFeatures:     {Family: FamilyQuantizedFlat, Metric: MetricCosine},
			catalog.FieldTags:         {Family: FamilyQuantizedFlat, Metric: MetricCosine},
			catalog.FieldReviewsCount: {Family: FamilyQuantizedFlat, Metric: MetricEuclidean},
		},
	}
}

// Field returns the policy entry for f, failing for fields the policy does
// not cover.
func (p Policy) Field(f catalog.VectorField) (FieldPolicy, error) {
	fp, ok := p.Fields[f]
	if !ok {
		return FieldPolicy{}, fmt.Errorf("no index policy for field %q", string(f))
	}
	return fp, nil
}

// vectorColumn maps a vector field to its dedicated column.
func vectorColumn(f catalog.VectorField) string {
	switch f {
	case catalog.FieldDescription:
		return "description_vector"
	case catalog.FieldFeatures:
		return "features_vector"
	case catalog.FieldTags:
		return "tags_vector"
	case catalog.FieldReviewsCount:
		return "reviews_count_vector"
	}
	return ""
}
