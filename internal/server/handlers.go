package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/madewith/smartie/internal/graph"
	"github.com/madewith/smartie/internal/vectorstore"
)

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		s.respondError(w, http.StatusBadRequest, "message is required")
		return
	}
	s.logger.Debug("chat request", zap.String("message", req.Message))
	resp := s.assistant.ProcessMessage(r.Context(), req.Message)
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	var nodes []*graph.GraphNode
	if typ := r.URL.Query().Get("type"); typ != "" {
		nodes = s.graph.NodesByType(graph.NodeType(typ))
	} else {
		nodes = s.graph.Nodes()
	}
	if nodes == nil {
		nodes = []*graph.GraphNode{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"nodes": nodes})
}

type addNodeRequest struct {
	Type       string         `json:"type"`
	Name       string         `json:"name"`
	Properties map[string]any `json:"properties,omitempty"`
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Type == "" || req.Name == "" {
		s.respondError(w, http.StatusBadRequest, "type and name are required")
		return
	}
	node := s.graph.AddNode(r.Context(), graph.NodeType(req.Type), req.Name, req.Properties)
	s.respondJSON(w, http.StatusCreated, node)
}

type addRelationshipRequest struct {
	SourceID   string         `json:"sourceId"`
	TargetID   string         `json:"targetId"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

func (s *Server) handleAddRelationship(w http.ResponseWriter, r *http.Request) {
	var req addRelationshipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SourceID == "" || req.TargetID == "" || req.Type == "" {
		s.respondError(w, http.StatusBadRequest, "sourceId, targetId, and type are required")
		return
	}
	rel, err := s.graph.AddRelationship(req.SourceID, req.TargetID, graph.RelType(req.Type), req.Properties)
	if err != nil {
		if errors.Is(err, graph.ErrNodeNotFound) {
			s.respondError(w, http.StatusNotFound, err.Error())
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, rel)
}

func (s *Server) handleGraphStats(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.graph.Stats())
}

type graphQueryRequest struct {
	StartNodeID string   `json:"startNodeId"`
	MaxDepth    int      `json:"maxDepth"`
	Types       []string `json:"types,omitempty"`
}

func (s *Server) handleGraphQuery(w http.ResponseWriter, r *http.Request) {
	var req graphQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StartNodeID == "" {
		s.respondError(w, http.StatusBadRequest, "startNodeId is required")
		return
	}
	filter := make([]graph.RelType, 0, len(req.Types))
	for _, t := range req.Types {
		filter = append(filter, graph.RelType(t))
	}
	s.respondJSON(w, http.StatusOK, s.graph.Query(req.StartNodeID, req.MaxDepth, filter...))
}

type graphPathsRequest struct {
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
	MaxDepth int    `json:"maxDepth"`
	MaxPaths int    `json:"maxPaths,omitempty"`
}

func (s *Server) handleGraphPaths(w http.ResponseWriter, r *http.Request) {
	var req graphPathsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SourceID == "" || req.TargetID == "" {
		s.respondError(w, http.StatusBadRequest, "sourceId and targetId are required")
		return
	}
	paths := s.graph.FindPaths(req.SourceID, req.TargetID, req.MaxDepth, req.MaxPaths)
	s.respondJSON(w, http.StatusOK, map[string]any{"paths": paths})
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
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
	results := s.store.Search(r.Context(), req.Query, req.Limit)
	if results == nil {
		results = []vectorstore.Result{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleFilteredSearch(w http.ResponseWriter, r *http.Request) {
	var filters vectorstore.Filters
	if err := json.NewDecoder(r.Body).Decode(&filters); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	results := s.store.FilteredSearch(filters)
	if results == nil {
		results = []vectorstore.Result{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"results": results})
}

type scrapeRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	startURL := req.URL
	if startURL == "" {
		startURL = s.config.Scraper.StartURL
	}
	if startURL == "" {
		s.respondError(w, http.StatusBadRequest, "no url given and no start URL configured")
		return
	}
	s.logger.Info("scrape request", zap.String("url", startURL))

	pages, err := s.scraper.Crawl(r.Context(), startURL)
	if err != nil && len(pages) == 0 {
		s.respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	res, err := s.pipeline.Apply(r.Context(), pages)
	if err != nil {
		s.logger.Warn("snapshot after scrape failed", zap.Error(err))
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"pagesScraped":   len(pages),
		"documentsAdded": res.DocumentsAdded,
		"graphCreated":   res.GraphCreated,
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
