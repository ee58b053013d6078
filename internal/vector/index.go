// Package vector provides the k-NN index interface and the validating
// adapter the orchestrator talks to.
package vector

import "context"

// Result is a single nearest-neighbor hit. Distance is non-negative and
// smaller means more similar.
type Result struct {
	ID       string
	Distance float64
}

// Index is the external k-NN vector index at its query boundary.
// Implementations wrap whatever store actually holds the vectors; the
// engine only ever asks for nearest neighbors.
type Index interface {
	Search(ctx context.Context, query []float32, k int) ([]*Result, error)
	Dimensions() int
	Close() error
}
