// Package embedding defines the interface to the external embedding
// service. The engine treats embedding generation as an opaque upstream:
// it sends text, it gets a vector, and any failure is the vector
// strategy's problem alone.
package embedding

import "context"

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	Close() error
}
