package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kweller/go-prodcat/catalog"
)

func TestSearchQueryCosine(t *testing.T) {
	q, err := searchQuery(DefaultPolicy(), catalog.FieldDescription)
	require.NoError(t, err)

	assert.Contains(t, q, "description_vector <=> $1 AS distance")
	assert.Contains(t, q, "ORDER BY description_vector <=> $1")
	assert.Contains(t, q, "WHERE description_vector IS NOT NULL")
	assert.Contains(t, q, "LIMIT $2")
	assert.Contains(t, q, "FROM products")
}

func TestSearchQueryEuclidean(t *testing.T) {
	q, err := searchQuery(DefaultPolicy(), catalog.FieldReviewsCount)
	require.NoError(t, err)

	assert.Contains(t, q, "reviews_count_vector <-> $1")
	assert.NotContains(t, q, "<=>")
}

func TestSearchQueryProjectionExcludesVectors(t *testing.T) {
	q, err := searchQuery(DefaultPolicy(), catalog.FieldTags)
	require.NoError(t, err)

	projection := q[:strings.Index(q, "FROM")]
	assert.NotContains(t, projection, "features_vector")
	assert.NotContains(t, projection, "description_vector")
	assert.Contains(t, projection, "doc")
}

func TestSearchQueryUnknownField(t *testing.T) {
	_, err := searchQuery(DefaultPolicy(), catalog.VectorField("price"))
	require.Error(t, err)
}
