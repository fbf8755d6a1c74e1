// Package server provides the HTTP API for Smartie.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/madewith/smartie/internal/assistant"
	"github.com/madewith/smartie/internal/config"
	"github.com/madewith/smartie/internal/graph"
	"github.com/madewith/smartie/internal/ingestion"
	"github.com/madewith/smartie/internal/scraper"
	"github.com/madewith/smartie/internal/vectorstore"
)

// Server is the HTTP server for the Smartie API.
type Server struct {
	assistant *assistant.Assistant
	graph     *graph.KnowledgeGraph
	store     *vectorstore.Store
	scraper   *scraper.Scraper
	pipeline  *ingestion.Pipeline
	config    *config.Config
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	asst *assistant.Assistant,
	g *graph.KnowledgeGraph,
	store *vectorstore.Store,
	sc *scraper.Scraper,
	pipeline *ingestion.Pipeline,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		assistant: asst,
		graph:     g,
		store:     store,
		scraper:   sc,
		pipeline:  pipeline,
		config:    cfg,
		logger:    logger,
	}
}

// Router builds the API router. Exposed separately from Start so tests can
// exercise handlers without a listening socket.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/api/chat", s.handleChat)
	r.Get("/api/graph/nodes", s.handleListNodes)
	r.Post("/api/graph/nodes", s.handleAddNode)
	r.Post("/api/graph/relationships", s.handleAddRelationship)
	r.Get("/api/graph/stats", s.handleGraphStats)
	r.Post("/api/graph/query", s.handleGraphQuery)
	r.Post("/api/graph/paths", s.handleGraphPaths)
	r.Post("/api/search", s.handleSearch)
	r.Post("/api/search/filtered", s.handleFilteredSearch)
	r.Post("/api/scrape", s.handleScrape)
	r.Get("/health", s.handleHealth)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
