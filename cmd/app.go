package cmd

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/madewith/smartie/internal/assistant"
	"github.com/madewith/smartie/internal/config"
	"github.com/madewith/smartie/internal/embeddings"
	"github.com/madewith/smartie/internal/fusion"
	"github.com/madewith/smartie/internal/generator"
	"github.com/madewith/smartie/internal/graph"
	"github.com/madewith/smartie/internal/ingestion"
	"github.com/madewith/smartie/internal/scraper"
	"github.com/madewith/smartie/internal/storage"
	"github.com/madewith/smartie/internal/vectorstore"
)

// app holds every wired component for one process.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	graph     *graph.KnowledgeGraph
	store     *vectorstore.Store
	backend   storage.Backend
	pipeline  *ingestion.Pipeline
	scraper   *scraper.Scraper
	assistant *assistant.Assistant
}

// buildApp wires all components from the config. restore reloads any existing
// snapshot; seed populates a starter graph when the graph is empty.
func buildApp(ctx context.Context, cfg *config.Config, restore, seed bool) (*app, error) {
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	embedder := newEmbedder(cfg, logger)
	g := graph.NewKnowledgeGraph(embedder, logger.Named("graph"))
	store := vectorstore.New(embedder, logger.Named("vectorstore"))

	var backend storage.Backend
	if cfg.Storage.Backend == "badger" {
		b := storage.NewBadgerBackend()
		if err := b.Initialize(cfg.Storage.Path, false); err != nil {
			return nil, fmt.Errorf("initializing storage: %w", err)
		}
		backend = b
	}

	pipeline := ingestion.NewPipeline(store, g, backend, logger.Named("ingestion"))
	if restore && backend != nil {
		if err := pipeline.Restore(ctx); err != nil {
			logger.Warn("snapshot restore failed, starting empty", zap.Error(err))
		}
	}

	if seed && g.NodeCount() == 0 {
		graph.Seed(g)
		g.RefreshEmbeddings(ctx)
	}

	gen := newGenerator(cfg, logger)
	extractor := fusion.NewExtractor(g, logger.Named("fusion"))
	asst := assistant.New(store, extractor, gen, logger.Named("assistant"))

	return &app{
		cfg:       cfg,
		logger:    logger,
		graph:     g,
		store:     store,
		backend:   backend,
		pipeline:  pipeline,
		scraper:   scraper.New(logger.Named("scraper"), scraper.WithMaxPages(cfg.Scraper.MaxPages)),
		assistant: asst,
	}, nil
}

func (a *app) close() {
	if a.backend != nil {
		_ = a.backend.Close()
	}
	_ = a.logger.Sync()
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newEmbedder(cfg *config.Config, logger *zap.Logger) graph.Embedder {
	if cfg.Embedding.Provider == "openai" {
		provider, err := embeddings.NewOpenAI(cfg.Embedding.APIKey, cfg.Embedding.Model, logger.Named("embeddings"))
		if err == nil {
			return provider
		}
		logger.Warn("OpenAI embeddings unavailable, using fallback", zap.Error(err))
	}
	return embeddings.NewFallback(embeddings.DefaultDimensions)
}

func newGenerator(cfg *config.Config, logger *zap.Logger) generator.Adapter {
	if cfg.Generator.Provider == "openai" {
		gen, err := generator.NewOpenAI(cfg.Generator.APIKey, cfg.Generator.Model, logger.Named("generator"))
		if err == nil {
			return gen
		}
		logger.Warn("OpenAI generator unavailable, using static replies", zap.Error(err))
	}
	return &generator.Static{}
}

// loadConfig reads the config file when given, otherwise uses defaults.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return config.Load(path)
}
