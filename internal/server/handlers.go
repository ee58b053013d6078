package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/gucchon001/Confluence-firebase-sub010/internal/models"
)

type searchRequest struct {
	Query  string               `json:"query"`
	Config *models.SearchConfig `json:"config,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Query == "" {
		s.respondError(w, http.StatusBadRequest, "query is required")
		return
	}
	s.logger.Debug("search request",
		zap.String("requestId", reqID(r.Context())),
		zap.String("query", req.Query))

	response, err := s.engine.Load().Search(r.Context(), req.Query, req.Config)
	switch {
	case err == nil:
		s.respondJSON(w, http.StatusOK, response)
	case errors.Is(err, models.ErrInvalidConfig):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrAllStrategiesFailed):
		// Every retrieval source is down. An empty result set with the
		// degradation flag lets clients keep working.
		s.logger.Warn("all retrieval strategies failed",
			zap.String("requestId", reqID(r.Context())), zap.Error(err))
		s.respondJSON(w, http.StatusOK, map[string]any{
			"results":  []*models.ScoredResult{},
			"query":    req.Query,
			"degraded": true,
		})
	default:
		s.logger.Error("search failed",
			zap.String("requestId", reqID(r.Context())), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docCount, err := s.store.CountDocuments(ctx)
	if err != nil {
		s.logger.Error("status: count documents failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	chunkCount, err := s.store.CountChunks(ctx)
	if err != nil {
		s.logger.Error("status: count chunks failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	engine := s.engine.Load()
	s.respondJSON(w, http.StatusOK, map[string]any{
		"documents":    docCount,
		"chunks":       chunkCount,
		"cacheEntries": engine.CacheLen(),
		"metrics":      engine.Metrics(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
