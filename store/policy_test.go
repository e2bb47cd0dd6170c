package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kweller/go-prodcat/catalog"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, DefaultDimension, p.Dimension)
	require.Len(t, p.Fields, len(catalog.VectorFields))

	desc, err := p.Field(catalog.FieldDescription)
	require.NoError(t, err)
	assert.Equal(t, FamilyGraph, desc.Family, "primary field gets the graph index")
	assert.Equal(t, MetricCosine, desc.Metric)
	assert.False(t, desc.Included)

	for _, f := range []catalog.VectorField{catalog.FieldFeatures, catalog.FieldTags} {
		fp, err := p.Field(f)
		require.NoError(t, err)
		assert.Equal(t, FamilyQuantizedFlat, fp.Family)
		assert.Equal(t, MetricCosine, fp.Metric)
		assert.False(t, fp.Included)
	}

	rc, err := p.Field(catalog.FieldReviewsCount)
	require.NoError(t, err)
	assert.Equal(t, FamilyQuantizedFlat, rc.Family)
	assert.Equal(t, MetricEuclidean, rc.Metric, "numeric field uses L2 distance")
}

func TestPolicyFieldUnknown(t *testing.T) {
	_, err := DefaultPolicy().Field(catalog.VectorField("price"))
	require.Error(t, err)
}

func TestMetricOperators(t *testing.T) {
	assert.Equal(t, "<=>", MetricCosine.operator())
	assert.Equal(t, "<->", MetricEuclidean.operator())
	assert.Equal(t, "vector_cosine_ops", MetricCosine.opclass())
	assert.Equal(t, "vector_l2_ops", MetricEuclidean.opclass())
}

func TestVectorColumn(t *testing.T) {
	assert.Equal(t, "description_vector", vectorColumn(catalog.FieldDescription))
	assert.Equal(t, "features_vector", vectorColumn(catalog.FieldFeatures))
	assert.Equal(t, "tags_vector", vectorColumn(catalog.FieldTags))
	assert.Equal(t, "reviews_count_vector", vectorColumn(catalog.FieldReviewsCount))
	assert.Empty(t, vectorColumn(catalog.VectorField("price")))
}
