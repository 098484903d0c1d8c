package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"SearchCore/internal/engine"
	"SearchCore/internal/query"
)

// Handler holds the HTTP handlers for the search API.
type Handler struct {
	index    *engine.Index
	searcher *engine.Searcher
	cfg      Config
	logger   *slog.Logger
}

// NewHandler creates a Handler serving the given index.
func NewHandler(ix *engine.Index, cfg Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		index:    ix,
		searcher: engine.NewSearcher(ix),
		cfg:      cfg,
		logger:   logger,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /documents", h.handleAddDocuments)
	mux.HandleFunc("POST /search", h.handleSearch)
	mux.HandleFunc("POST /rewrite", h.handleRewrite)
	mux.HandleFunc("GET /health", h.handleHealth)
}

func (h *Handler) handleAddDocuments(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Documents []map[string]string `json:"documents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, "no documents provided")
		return
	}

	ids := make([]uint32, len(req.Documents))
	for i, doc := range req.Documents {
		ids[i] = h.index.Add(doc)
	}

	h.logger.Info("documents indexed", "count", len(ids), "total", h.index.DocCount())

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "indexed",
		"doc_ids": ids,
	})
}

// searchRequest carries a DSL query plus result options.
type searchRequest struct {
	Query json.RawMessage `json:"query"`
	TopK  int             `json:"top_k"`
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Query) == 0 {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if req.TopK <= 0 {
		req.TopK = h.cfg.DefaultTopK
	}

	q, err := ParseQuery(req.Query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	results, err := h.searcher.Search(r.Context(), q, req.TopK)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			writeError(w, http.StatusRequestTimeout, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	took := time.Since(start)

	hits := make([]map[string]interface{}, len(results))
	for i, doc := range results {
		hits[i] = map[string]interface{}{
			"doc_id": doc.DocID,
			"score":  doc.Score,
		}
	}

	h.logger.Debug("search executed", "query", q.String(), "hits", len(hits), "took", took)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "success",
		"took_ms":    took.Milliseconds(),
		"total_hits": len(hits),
		"hits":       hits,
	})
}

func (h *Handler) handleRewrite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query json.RawMessage `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Query) == 0 {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	q, err := ParseQuery(req.Query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rewritten := query.Rewrite(q)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":    encodeQuery(rewritten),
		"rendered": rewritten.String(),
		"changed":  rewritten != q,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"doc_count": h.index.DocCount(),
	})
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"message": message,
		},
	})
}
