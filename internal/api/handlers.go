package api

import (
	"encoding/json"
	"net/http"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

// QueryRequest is the /query request body.
type QueryRequest struct {
	Query               string  `json:"query"`
	MaxResults          int     `json:"max_results,omitempty"`
	SimilarityThreshold float64 `json:"similarity_threshold,omitempty"`
}

// QueryResponse is the /query response body.
type QueryResponse struct {
	Content    string         `json:"content"`
	Sources    []string       `json:"sources"`
	Confidence float64        `json:"confidence"`
	Latency    float64        `json:"latency"`
	Timestamp  string         `json:"timestamp"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// HealthResponse is the /health response body.
type HealthResponse struct {
	Status         string `json:"status"`
	Timestamp      string `json:"timestamp"`
	Version        string `json:"version"`
	DatabaseStatus string `json:"database_status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:         "unhealthy",
		Timestamp:      time.Now().Format(timestampLayout),
		Version:        Version,
		DatabaseStatus: "disconnected",
	}
	if s.databaseUp(r.Context()) {
		resp.Status = "healthy"
		resp.DatabaseStatus = "connected"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if !s.databaseUp(r.Context()) {
		writeError(w, http.StatusServiceUnavailable, "service not ready", "database unavailable")
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "invalid request body", "query must not be empty")
		return
	}

	start := time.Now()

	// Simulated retrieval time, proportional to query length like the
	// real pipeline's embedding step.
	delay := 100*time.Millisecond + time.Duration(len(req.Query))*time.Millisecond
	select {
	case <-r.Context().Done():
		return
	case <-time.After(delay):
	}

	sources := mockSources(req.Query)
	resp := QueryResponse{
		Content:    mockResponse(req.Query),
		Sources:    sources,
		Confidence: mockConfidence(req.Query),
		Latency:    time.Since(start).Seconds(),
		Timestamp:  time.Now().Format(timestampLayout),
		Metadata: map[string]any{
			"query_length":      len(req.Query),
			"processing_method": "mock_rag",
			"vector_results":    len(sources),
		},
	}

	s.logger.Info("query processed",
		"request_id", RequestID(r.Context()),
		"query_length", len(req.Query),
		"confidence", resp.Confidence)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Digital Twin RAG API",
		"version": Version,
		"status":  "running",
		"endpoints": map[string]string{
			"health": "/health",
			"query":  "/query",
		},
	})
}
