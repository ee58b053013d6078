package models

import "time"

// Document is a corpus page. Retrieval operates on its chunks; the
// document-level fields feed filtering and label scoring.
type Document struct {
	ID        string              `json:"id"`
	Title     string              `json:"title"`
	Labels    []string            `json:"labels,omitempty"`
	Metadata  *StructuredMetadata `json:"metadata,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// Chunk is one indexed fragment of a document.
type Chunk struct {
	ID         string `json:"id"`
	DocumentID string `json:"documentId"`
	Content    string `json:"content"`
	Index      int    `json:"index"`
}
