// Package storage persists the searchable corpus.
package storage

import (
	"context"

	"github.com/gucchon001/Confluence-firebase-sub010/internal/models"
)

// Store is the corpus store. Retrieval strategies hydrate chunk IDs
// into candidates through it; the title strategy queries it directly.
type Store interface {
	// UpsertDocument writes a document and replaces its chunks.
	UpsertDocument(ctx context.Context, doc *models.Document, chunks []*models.Chunk) error
	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// GetCandidates hydrates chunk IDs into candidates with document
	// fields attached. Unknown IDs are skipped, not errors.
	GetCandidates(ctx context.Context, ids []string) ([]*models.Candidate, error)
	// SearchTitles returns candidates whose document title contains
	// any keyword, exact matches first.
	SearchTitles(ctx context.Context, keywords []string, limit int) ([]*models.Candidate, error)

	// AllCandidates streams the whole corpus for index rebuilds.
	AllCandidates(ctx context.Context) ([]*models.Candidate, error)

	CountDocuments(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)

	Close() error
}
