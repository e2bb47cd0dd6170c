// Package embedding provides the gateway to the external embedding service:
// an opaque function turning text into a fixed-length numeric vector.
package embedding

import "context"

// Gateway converts a text payload into a fixed-dimension float vector.
// Implementations must be safe for concurrent use; a create or update
// request embeds several fields through the same gateway at once.
type Gateway interface {
	// Embed returns the vector for input. Empty input is an error; callers
	// decide beforehand whether a field is worth embedding.
	Embed(ctx context.Context, input string) ([]float64, error)
}
