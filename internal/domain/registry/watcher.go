package registry

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tunedeck/tunedeck/internal/logger"
)

// debounceWindow batches bursts of filesystem events (editors often
// write a file several times in quick succession) into one rescan.
const debounceWindow = 500 * time.Millisecond

// Watcher re-runs discovery whenever plugin files in the tools
// directory change. Discovery is idempotent, so a spurious wakeup just
// rebuilds the same catalog.
type Watcher struct {
	registry *Registry
	dir      string
	fw       *fsnotify.Watcher
}

// NewWatcher starts watching dir for plugin changes. Call Run to begin
// processing events.
func NewWatcher(reg *Registry, dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("cannot watch tools directory: %w", err)
	}
	return &Watcher{registry: reg, dir: dir, fw: fw}, nil
}

// Run blocks processing events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	defer w.fw.Close()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !pluginFile(event.Name) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceWindow)
				fire = timer.C
			} else {
				timer.Reset(debounceWindow)
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logger.AddLog("WARN", fmt.Sprintf("tools watcher error: %v", err))

		case <-fire:
			timer = nil
			fire = nil
			count, failures, err := w.registry.DiscoverTools(w.dir)
			if err != nil {
				logger.AddLog("ERROR", fmt.Sprintf("auto-rediscovery failed: %v", err))
				continue
			}
			logger.AddLog("INFO", fmt.Sprintf("tools directory changed: %d tool(s) registered, %d failure(s)", count, len(failures)))

		case <-ctx.Done():
			return
		}
	}
}

func pluginFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".js", ".json", ".wasm":
		return true
	}
	return false
}
