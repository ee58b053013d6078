package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gucchon001/Confluence-firebase-sub010/internal/models"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a database at dbPath and initializes
// the schema. Parent directories are created if missing. Pass
// ":memory:" for an in-memory store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		labels TEXT,
		category TEXT,
		domain TEXT,
		feature TEXT,
		valid INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_documents_title ON documents(title);

	CREATE TABLE IF NOT EXISTS document_chunks (
		id TEXT PRIMARY KEY,
		document_id TEXT NOT NULL,
		content TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		FOREIGN KEY (document_id) REFERENCES documents(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_document_id ON document_chunks(document_id);
	`
	_, err := db.Exec(schema)
	return err
}

// UpsertDocument writes the document row and replaces its chunks in one
// transaction.
func (s *SQLiteStore) UpsertDocument(ctx context.Context, doc *models.Document, chunks []*models.Chunk) error {
	labelsJSON, err := json.Marshal(doc.Labels)
	if err != nil {
		return fmt.Errorf("failed to marshal labels: %w", err)
	}
	var category, domain, feature string
	valid := 1
	if doc.Metadata != nil {
		category, domain, feature = doc.Metadata.Category, doc.Metadata.Domain, doc.Metadata.Feature
		if doc.Metadata.Invalid {
			valid = 0
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (id, title, labels, category, domain, feature, valid, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title, labels = excluded.labels,
		   category = excluded.category, domain = excluded.domain,
		   feature = excluded.feature, valid = excluded.valid,
		   updated_at = excluded.updated_at`,
		doc.ID, doc.Title, string(labelsJSON), category, domain, feature, valid, now, now,
	)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_chunks WHERE document_id = ?`, doc.ID); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO document_chunks (id, document_id, content, chunk_index) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx, c.ID, doc.ID, c.Content, c.Index); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteDocument removes a document; its chunks cascade.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	return err
}

const candidateColumns = `c.id, c.document_id, c.content,
	d.title, d.labels, d.category, d.domain, d.feature, d.valid`

// GetCandidates hydrates chunk IDs into candidates. Results follow the
// order of ids; unknown IDs are skipped.
func (s *SQLiteStore) GetCandidates(ctx context.Context, ids []string) ([]*models.Candidate, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+candidateColumns+`
		 FROM document_chunks c JOIN documents d ON d.id = c.document_id
		 WHERE c.id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[string]*models.Candidate, len(ids))
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]*models.Candidate, 0, len(byID))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// SearchTitles returns one candidate per document whose title contains
// any keyword. Exact title matches sort first, then by document ID. The
// candidate carries the document's first chunk.
func (s *SQLiteStore) SearchTitles(ctx context.Context, keywords []string, limit int) ([]*models.Candidate, error) {
	if len(keywords) == 0 || limit <= 0 {
		return nil, nil
	}
	conds := make([]string, 0, len(keywords))
	args := make([]any, 0, len(keywords))
	for _, kw := range keywords {
		conds = append(conds, `d.title LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(kw)+"%")
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+candidateColumns+`
		 FROM documents d
		 JOIN document_chunks c ON c.document_id = d.id AND c.chunk_index =
		   (SELECT MIN(chunk_index) FROM document_chunks WHERE document_id = d.id)
		 WHERE `+strings.Join(conds, " OR "), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []*models.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	exact := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		title := strings.ToLower(c.Title)
		for _, kw := range keywords {
			if title == strings.ToLower(kw) {
				exact[c.ID] = true
				break
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if exact[a.ID] != exact[b.ID] {
			return exact[a.ID]
		}
		return a.DocumentID < b.DocumentID
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func scanCandidate(rows *sql.Rows) (*models.Candidate, error) {
	var (
		c          models.Candidate
		labelsJSON sql.NullString
		category   sql.NullString
		domain     sql.NullString
		feature    sql.NullString
		valid      int
	)
	if err := rows.Scan(&c.ID, &c.DocumentID, &c.Content,
		&c.Title, &labelsJSON, &category, &domain, &feature, &valid); err != nil {
		return nil, err
	}
	if labelsJSON.Valid && labelsJSON.String != "" {
		if err := json.Unmarshal([]byte(labelsJSON.String), &c.Labels); err != nil {
			return nil, fmt.Errorf("failed to unmarshal labels for %s: %w", c.ID, err)
		}
	}
	if category.String != "" || domain.String != "" || feature.String != "" || valid == 0 {
		c.Metadata = &models.StructuredMetadata{
			Category: category.String,
			Domain:   domain.String,
			Feature:  feature.String,
			Invalid:  valid == 0,
		}
	}
	return &c, nil
}

// escapeLike escapes the LIKE wildcards in user-supplied keywords.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

// AllCandidates returns every chunk joined with its document fields,
// ordered by chunk ID. Used to rebuild in-memory indexes at startup.
func (s *SQLiteStore) AllCandidates(ctx context.Context) ([]*models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+candidateColumns+`
		 FROM document_chunks c JOIN documents d ON d.id = c.document_id
		 ORDER BY c.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []*models.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// CountDocuments returns the total number of documents.
func (s *SQLiteStore) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}

// CountChunks returns the total number of chunks.
func (s *SQLiteStore) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM document_chunks`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
