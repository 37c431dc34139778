// Package watch translates filesystem notifications on ignore files into
// cache invalidations.
package watch

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/mvoronov/treescan/internal/ignore"
	"github.com/mvoronov/treescan/internal/utils"
)

// Watcher observes registered workspace roots and invalidates the ignore rule
// store whenever a .gitignore or .ignore file there is created, modified,
// renamed, or deleted. Invalidation is the sole cache-coherency mechanism of
// the store; the watcher only has to fire the hook, never to reload anything
// itself.
type Watcher struct {
	store      *ignore.Store
	fsWatcher  *fsnotify.Watcher
	logger     *zap.Logger
	kindByName map[string]ignore.Kind
}

// NewWatcher constructs a Watcher bound to the provided store and starts its
// event loop. Callers must Close it when done.
func NewWatcher(store *ignore.Store, logger *zap.Logger) (*Watcher, error) {
	fsWatcher, watcherError := fsnotify.NewWatcher()
	if watcherError != nil {
		return nil, watcherError
	}

	kindByName := map[string]ignore.Kind{}
	for _, kind := range ignore.Kinds {
		kindByName[kind.FileName()] = kind
	}

	watcher := &Watcher{
		store:      store,
		fsWatcher:  fsWatcher,
		logger:     utils.LoggerOrNop(logger),
		kindByName: kindByName,
	}
	go watcher.run()
	return watcher, nil
}

// AddRoot registers a workspace root for observation. The root directory
// itself is watched; events for files other than the two ignore files are
// discarded.
func (watcher *Watcher) AddRoot(root string) error {
	return watcher.fsWatcher.Add(root)
}

// Close stops the event loop and releases the underlying watcher.
func (watcher *Watcher) Close() error {
	return watcher.fsWatcher.Close()
}

// run consumes filesystem events until the watcher closes.
func (watcher *Watcher) run() {
	for {
		select {
		case event, open := <-watcher.fsWatcher.Events:
			if !open {
				return
			}
			watcher.handleEvent(event)
		case watchError, open := <-watcher.fsWatcher.Errors:
			if !open {
				return
			}
			watcher.logger.Warn("ignore file watcher error", zap.Error(watchError))
		}
	}
}

// handleEvent invalidates the rule set addressed by an ignore-file event.
func (watcher *Watcher) handleEvent(event fsnotify.Event) {
	kind, relevant := watcher.kindByName[filepath.Base(event.Name)]
	if !relevant {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	owningRoot := filepath.Dir(event.Name)
	watcher.logger.Debug("invalidating ignore rules",
		zap.String("root", owningRoot),
		zap.String("kind", string(kind)))
	watcher.store.Invalidate(owningRoot, kind)
}
