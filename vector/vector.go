// Package vector provides distance metrics over embedding vectors and the
// wire encoding used by pgvector columns.
package vector

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CosineSimilarity calculates the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// CosineDistance is 1 minus the cosine similarity, so that smaller means
// more similar. This matches pgvector's <=> operator.
func CosineDistance(a, b []float64) float64 {
	return 1 - CosineSimilarity(a, b)
}

// EuclideanDistance is the L2 distance between two vectors, matching
// pgvector's <-> operator. Mismatched lengths yield +Inf.
func EuclideanDistance(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Encode converts a vector to the pgvector literal format: "[0.1,0.2,0.3]".
func Encode(v []float64) string {
	if len(v) == 0 {
		return ""
	}

	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Decode converts a pgvector literal back to a float64 slice.
func Decode(s string) ([]float64, error) {
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	result := make([]float64, len(parts))
	for i, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("parse vector element %d: %w", i, err)
		}
		result[i] = x
	}
	return result, nil
}
