// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package safety

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Watcher serves a rule Engine built from an external YAML override file and
// rebuilds it when the file changes on disk.
//
// The running Engine is swapped atomically: requests in flight keep the rule
// set they started with, and a malformed edit never replaces a working set
// (the previous Engine stays active and the parse error is logged).
//
// # Thread Safety
//
// Classify and Moderate may be called concurrently with reloads. The watcher
// observes the parent directory rather than the file itself so that editors
// which rename-over the file (vim, sed -i) still trigger a reload.
type Watcher struct {
	path    string
	logger  *slog.Logger
	engine  atomic.Pointer[Engine]
	fsw     *fsnotify.Watcher
	done    chan struct{}
	stopped chan struct{}
}

// NewWatcher loads the rule file at path and starts watching it for changes.
// The initial load must succeed; later reload failures keep the last good
// rule set.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	engine, err := loadEngineFile(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create the rules watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch the rules directory: %w", err)
	}

	w := &Watcher{
		path:    path,
		logger:  logger,
		fsw:     fsw,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	w.engine.Store(engine)
	go w.run()
	return w, nil
}

// Classify delegates to the current rule engine.
func (w *Watcher) Classify(text string) Classification {
	return w.engine.Load().Classify(text)
}

// Moderate delegates to the current rule engine.
func (w *Watcher) Moderate(text string) Verdict {
	return w.engine.Load().Moderate(text)
}

// Current returns the active engine. Callers that need a consistent view
// across several scans should hold on to the returned pointer.
func (w *Watcher) Current() *Engine {
	return w.engine.Load()
}

// Close stops the watcher. Safe to call once.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.fsw.Close()
	<-w.stopped
	return err
}

func (w *Watcher) run() {
	defer close(w.stopped)
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			engine, err := loadEngineFile(w.path)
			if err != nil {
				w.logger.Error("safety rules reload failed, keeping previous rule set",
					"path", w.path, "error", err)
				continue
			}
			w.engine.Store(engine)
			w.logger.Info("safety rules reloaded",
				"path", w.path,
				"signals", len(engine.signals),
				"response_filters", len(engine.filters))
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("safety rules watcher error", "error", err)
		}
	}
}

func loadEngineFile(path string) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read the rules file %s: %w", path, err)
	}
	engine, err := NewEngineFromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return engine, nil
}
