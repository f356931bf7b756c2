package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nox-hq/chatrelay/core"
)

// reloadDebounce groups the burst of events an editor save produces.
const reloadDebounce = 500 * time.Millisecond

// watchPersona reloads the persona from path whenever the file changes,
// until ctx is done. A config that fails to load keeps the previous persona.
//
// The parent directory is watched so saves that replace the file by rename
// are seen.
func watchPersona(ctx context.Context, path string, holder *core.PersonaHolder, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watching %s: %w", target, err)
	}
	logger.Info("watching persona", "path", target)

	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	reload := func() {
		p, err := core.LoadPersona(target)
		if err != nil {
			logger.Warn("persona reload failed, keeping previous", "path", target, "error", err)
			return
		}
		holder.Store(p)
		logger.Info("persona reloaded", "name", p.Name, "examples", len(p.ExampleConversations))
	}
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(reloadDebounce, reload)
			mu.Unlock()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}
