package ingestion

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounceWindow batches rapid writes to the same dump before ingesting.
const debounceWindow = 2 * time.Second

// Watch monitors a drop directory for JSON page dumps and ingests each dump
// once writes to it settle. Blocks until the context is cancelled.
func (p *Pipeline) Watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	pending := make(map[string]bool)
	batchTimer := time.NewTimer(debounceWindow)
	batchTimer.Stop()

	p.logger.Info("watching for page dumps", zap.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !isPageDump(event.Name) {
				continue
			}
			pending[event.Name] = true
			batchTimer.Reset(debounceWindow)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Warn("watch error", zap.Error(err))

		case <-batchTimer.C:
			for path := range pending {
				res, err := p.ApplyFile(ctx, path)
				if err != nil {
					p.logger.Warn("dump ingestion failed", zap.String("path", path), zap.Error(err))
					continue
				}
				p.logger.Info("dump ingested",
					zap.String("path", path),
					zap.Int("documents", res.DocumentsAdded),
					zap.Int("graphCreated", res.GraphCreated))
			}
			pending = make(map[string]bool)
		}
	}
}

func isPageDump(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
