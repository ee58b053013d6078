package lexical

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/lang/cjk"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/gucchon001/Confluence-firebase-sub010/internal/models"
)

// analyzerName is the custom analyzer used for title and content fields:
// UAX#29 tokenization, full/half width folding, lowercasing, and CJK
// bigrams so Japanese text with no word boundaries is searchable.
const analyzerName = "hybrid_cjk"

// Hit is a single lexical index hit (ID is a chunk ID).
type Hit struct {
	ID    string
	Score float64
}

// Index is the bleve-backed lexical index. Besides candidate-window
// retrieval it serves document-frequency statistics for BM25 via the
// StatsProvider interface.
type Index struct {
	index bleve.Index
}

type indexedChunk struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
}

func buildMapping() (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()
	if err := im.AddCustomAnalyzer(analyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": unicode.Name,
		"token_filters": []interface{}{
			cjk.WidthName,
			lowercase.Name,
			cjk.BigramName,
		},
	}); err != nil {
		return nil, fmt.Errorf("register analyzer: %w", err)
	}

	chunkMapping := bleve.NewDocumentMapping()
	textField := bleve.NewTextFieldMapping()
	textField.Analyzer = analyzerName
	chunkMapping.AddFieldMappingsAt("title", textField)
	chunkMapping.AddFieldMappingsAt("content", textField)
	keywordField := bleve.NewKeywordFieldMapping()
	chunkMapping.AddFieldMappingsAt("id", keywordField)
	chunkMapping.AddFieldMappingsAt("document_id", keywordField)
	im.DefaultMapping = chunkMapping
	return im, nil
}

// NewIndex creates or opens a bleve index at path. An existing index is
// reused; remove the directory to force a rebuild after mapping changes.
func NewIndex(path string) (*Index, error) {
	im, err := buildMapping()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("open lexical index: %w", openErr)
		}
		return &Index{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("create lexical index: %w", err)
	}
	return &Index{index: index}, nil
}

// NewMemoryIndex creates an in-memory lexical index, used by tests and the
// seed path.
func NewMemoryIndex() (*Index, error) {
	im, err := buildMapping()
	if err != nil {
		return nil, err
	}
	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("create in-memory lexical index: %w", err)
	}
	return &Index{index: index}, nil
}

// IndexCandidate adds or updates a chunk in the index.
func (x *Index) IndexCandidate(ctx context.Context, c *models.Candidate) error {
	return x.index.Index(c.ID, &indexedChunk{
		ID:         c.ID,
		DocumentID: c.DocumentID,
		Title:      c.Title,
		Content:    c.Content,
	})
}

// Delete removes a chunk from the index.
func (x *Index) Delete(ctx context.Context, id string) error {
	return x.index.Delete(id)
}

// Search returns the candidate window for the given terms: a disjunction
// match over title and content with additive title boosting, sorted by
// merged score descending with ID tie-break for stable output.
func (x *Index) Search(ctx context.Context, terms []string, limit int, titleBoost float64) ([]Hit, error) {
	if len(terms) == 0 || limit <= 0 {
		return nil, nil
	}
	if titleBoost < 1 {
		titleBoost = 1
	}
	reqSize := limit * 2
	if reqSize < 50 {
		reqSize = 50
	}

	titleScores := make(map[string]float64)
	contentScores := make(map[string]float64)
	for _, term := range terms {
		tq := bleve.NewMatchQuery(term)
		tq.SetField("title")
		treq := bleve.NewSearchRequestOptions(tq, reqSize, 0, false)
		tres, err := x.index.SearchInContext(ctx, treq)
		if err != nil {
			return nil, fmt.Errorf("lexical title search: %w", err)
		}
		for _, hit := range tres.Hits {
			titleScores[hit.ID] += hit.Score
		}

		cq := bleve.NewMatchQuery(term)
		cq.SetField("content")
		creq := bleve.NewSearchRequestOptions(cq, reqSize, 0, false)
		cres, err := x.index.SearchInContext(ctx, creq)
		if err != nil {
			return nil, fmt.Errorf("lexical content search: %w", err)
		}
		for _, hit := range cres.Hits {
			contentScores[hit.ID] += hit.Score
		}
	}

	merged := make(map[string]float64, len(titleScores)+len(contentScores))
	for id, s := range titleScores {
		merged[id] += s * titleBoost
	}
	for id, s := range contentScores {
		merged[id] += s
	}

	hits := make([]Hit, 0, len(merged))
	for id, score := range merged {
		hits = append(hits, Hit{ID: id, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// CorpusStats implements StatsProvider: total indexed chunk count plus
// per-term document frequencies derived from match-query totals.
func (x *Index) CorpusStats(terms []string) (*CorpusStats, error) {
	count, err := x.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("doc count: %w", err)
	}

	freqs := make(map[string]int, len(terms))
	for _, term := range terms {
		q := bleve.NewMatchQuery(term)
		req := bleve.NewSearchRequestOptions(q, 0, 0, false)
		res, err := x.index.Search(req)
		if err != nil {
			freqs[term] = 0
			continue
		}
		freqs[term] = int(res.Total)
	}

	return &CorpusStats{TotalDocs: int(count), DocFrequencies: freqs}, nil
}

// DocCount returns the number of indexed chunks.
func (x *Index) DocCount() (uint64, error) {
	return x.index.DocCount()
}

// Close closes the underlying bleve index.
func (x *Index) Close() error {
	return x.index.Close()
}
