package vector

import (
	"context"
	"fmt"

	"github.com/gucchon001/Confluence-firebase-sub010/internal/models"
)

// Adapter validates queries before passing them to the backing index and
// maps every transport or storage error to ErrRetrievalUnavailable, so the
// orchestrator can apply one degradation policy regardless of which vector
// backend is behind it.
type Adapter struct {
	index Index
	maxK  int
}

// NewAdapter wraps index. maxK caps the neighbor count per query; zero or
// negative means a default of 100.
func NewAdapter(index Index, maxK int) *Adapter {
	if maxK <= 0 {
		maxK = 100
	}
	return &Adapter{index: index, maxK: maxK}
}

// Query returns up to k nearest neighbors for the query vector. The vector
// dimensionality must match the index; k is clamped to the configured max.
func (a *Adapter) Query(ctx context.Context, query []float32, k int) ([]*Result, error) {
	if len(query) != a.index.Dimensions() {
		return nil, fmt.Errorf("%w: query dimension %d does not match index dimension %d",
			models.ErrRetrievalUnavailable, len(query), a.index.Dimensions())
	}
	if k <= 0 {
		return nil, nil
	}
	if k > a.maxK {
		k = a.maxK
	}
	results, err := a.index.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("%w: vector index query failed: %v", models.ErrRetrievalUnavailable, err)
	}
	return results, nil
}
