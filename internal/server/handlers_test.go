package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/gucchon001/Confluence-firebase-sub010/internal/config"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/embedding"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/filter"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/keyword"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/models"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/ranking"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/search"
	"github.com/gucchon001/Confluence-firebase-sub010/internal/storage"
)

type fixedStrategy struct {
	name       string
	candidates []*models.Candidate
	err        error
}

func (s *fixedStrategy) Name() string { return s.name }
func (s *fixedStrategy) Retrieve(ctx context.Context, q *search.Query) ([]*models.Candidate, error) {
	return s.candidates, s.err
}

func newTestServer(t *testing.T, strategies []search.Strategy) (*Server, storage.Store) {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "corpus.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	metrics := search.NewMetrics()
	engine := search.NewEngine(
		keyword.NewExtractor(zap.NewNop()),
		embedding.NewMockEmbedder(8),
		strategies,
		filter.New(filter.DefaultConfig(), zap.NewNop()),
		ranking.NewCompositeScorer(ranking.DefaultWeights()),
		search.NewResultCache(8, time.Minute, metrics),
		metrics,
		search.Options{},
		zap.NewNop(),
	)
	return NewServer(engine, store, &config.ServerConfig{Host: "localhost", Port: 8080}, zap.NewNop()), store
}

func postSearch(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleSearch(t *testing.T) {
	srv, _ := newTestServer(t, []search.Strategy{
		&fixedStrategy{name: "title", candidates: []*models.Candidate{
			{ID: "d1-c1", DocumentID: "d1", Title: "教室管理の詳細は", Content: "教室管理機能の詳細仕様です。"},
		}},
	})
	handler := srv.Router()

	rec := postSearch(t, handler, `{"query":"教室管理の詳細は","config":{"top_k":5}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp models.SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Candidate.DocumentID != "d1" {
		t.Errorf("results = %+v", resp.Results)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("response should carry a request id")
	}
}

func TestHandleSearchBadRequests(t *testing.T) {
	srv, _ := newTestServer(t, []search.Strategy{
		&fixedStrategy{name: "title"},
	})
	handler := srv.Router()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"query":`},
		{"missing query", `{"config":{"top_k":5}}`},
		{"negative topK", `{"query":"教室管理","config":{"top_k":-1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postSearch(t, handler, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandleSearchAllStrategiesDown(t *testing.T) {
	srv, _ := newTestServer(t, []search.Strategy{
		&fixedStrategy{name: "vector", err: errors.New("down")},
		&fixedStrategy{name: "title", err: errors.New("down")},
	})
	rec := postSearch(t, srv.Router(), `{"query":"教室管理"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("degraded response status = %d, want 200", rec.Code)
	}
	var resp struct {
		Results  []json.RawMessage `json:"results"`
		Degraded bool              `json:"degraded"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 0 || !resp.Degraded {
		t.Errorf("degraded body = %s", rec.Body.String())
	}
}

func TestHandleStatus(t *testing.T) {
	srv, store := newTestServer(t, []search.Strategy{
		&fixedStrategy{name: "title"},
	})
	err := store.UpsertDocument(context.Background(),
		&models.Document{ID: "d1", Title: "教室管理"},
		[]*models.Chunk{{ID: "d1-c1", DocumentID: "d1", Content: "教室管理の概要です。"}})
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Documents    int64           `json:"documents"`
		Chunks       int64           `json:"chunks"`
		CacheEntries int             `json:"cacheEntries"`
		Metrics      search.Snapshot `json:"metrics"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Documents != 1 || resp.Chunks != 1 {
		t.Errorf("counts = %+v", resp)
	}
}

func TestHandleHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d", rec.Code)
	}
}

func TestRequestIDPropagated(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "fixed-id")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-Id"); got != "fixed-id" {
		t.Errorf("request id = %q, want fixed-id", got)
	}
}
