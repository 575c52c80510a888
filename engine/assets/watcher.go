package assets

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/robsouthgate4/bolt-gl-sub000/engine/logger"
)

// ShaderWatcher watches a shader directory and runs reload callbacks for
// changed files. Events are collected on a background goroutine; callbacks
// only run from Poll, so GPU work stays on the render thread.
type ShaderWatcher struct {
	dir     string
	watcher *fsnotify.Watcher
	done    chan struct{}

	mu       sync.Mutex
	pending  map[string]bool
	handlers map[string][]*reloader
}

type reloader struct{ fn func() error }

// NewShaderWatcher starts watching dir. Files are matched by base name.
func NewShaderWatcher(dir string) (*ShaderWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("shader watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %q: %w", dir, err)
	}
	w := &ShaderWatcher{
		dir:      dir,
		watcher:  fw,
		done:     make(chan struct{}),
		pending:  map[string]bool{},
		handlers: map[string][]*reloader{},
	}
	go w.run()
	logger.Log.Info("watching shaders", zap.String("dir", dir))
	return w, nil
}

func (w *ShaderWatcher) run() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Warn("shader watcher", zap.Error(err))
		}
	}
}

func (w *ShaderWatcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return
	}
	name := filepath.Base(ev.Name)
	w.mu.Lock()
	if _, ok := w.handlers[name]; ok {
		w.pending[name] = true
	}
	w.mu.Unlock()
}

// OnChange registers reload to run when any of the named files in the
// watched directory changes. A reload touching several files runs once per
// Poll.
func (w *ShaderWatcher) OnChange(reload func() error, names ...string) {
	r := &reloader{fn: reload}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, n := range names {
		w.handlers[n] = append(w.handlers[n], r)
	}
}

// Poll runs the callbacks for files changed since the last call and
// returns how many ran. Failures are logged and the old shader stays in
// place.
func (w *ShaderWatcher) Poll() int {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return 0
	}
	var (
		run  []*reloader
		seen = map[*reloader]bool{}
	)
	for name := range w.pending {
		for _, r := range w.handlers[name] {
			if !seen[r] {
				seen[r] = true
				run = append(run, r)
			}
		}
		logger.Log.Debug("shader changed", zap.String("file", name))
	}
	clear(w.pending)
	w.mu.Unlock()

	for _, r := range run {
		if err := r.fn(); err != nil {
			logger.Log.Error("shader reload failed", zap.String("dir", w.dir), zap.Error(err))
		}
	}
	return len(run)
}

func (w *ShaderWatcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
