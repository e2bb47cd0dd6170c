package store

import (
	"fmt"

	"github.com/kweller/go-prodcat/catalog"
)

// searchQuery builds the ranked similarity query for one vector field. The
// projection selects the scalar columns (vectors never leave the store)
// plus the distance between the stored vector and the query vector ($1),
// ordered ascending and truncated to the limit ($2). The distance operator
// comes from the field's policy metric, so callers get the same
// smaller-is-more-similar contract for cosine and Euclidean fields alike.
func searchQuery(policy Policy, field catalog.VectorField) (string, error) {
	fp, err := policy.Field(field)
	if err != nil {
		return "", err
	}
	col := vectorColumn(field)
	if col == "" {
		return "", fmt.Errorf("no vector column for field %q", string(field))
	}

	return fmt.Sprintf(`
		SELECT id, sku, doc, created_at, updated_at, %[1]s %[2]s $1 AS distance
		FROM %[3]s
		WHERE %[1]s IS NOT NULL
		ORDER BY %[1]s %[2]s $1
		LIMIT $2`, col, fp.Metric.operator(), productsSchema.Table), nil
}
