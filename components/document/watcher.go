package document

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reports changes to the supported documents of a directory tree.
// Bursts of events are coalesced into one callback after a quiet period.
type Watcher struct {
	root     string
	debounce time.Duration
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
}

type WatcherOption func(*Watcher)

func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounce = d
	}
}

func WithWatcherLogger(l *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = l
	}
}

func NewWatcher(root string, opts ...WatcherOption) *Watcher {
	ret := &Watcher{
		root:     root,
		debounce: 500 * time.Millisecond,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Watch blocks until ctx is done, calling onChange after document changes.
// Subdirectories created while watching are added to the watch list.
func (w *Watcher) Watch(ctx context.Context, onChange func(context.Context)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.watcher = watcher
	w.mu.Unlock()
	defer w.Close()

	if err := w.addTree(w.root); err != nil {
		return err
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("corpus changed", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			timer.Reset(w.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("corpus watcher error", zap.Error(err))
		case <-timer.C:
			onChange(ctx)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	if event.Has(fsnotify.Create) {
		if err := w.addTree(event.Name); err == nil && isDir(event.Name) {
			return true
		}
	}
	return Supported(event.Name)
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if p != w.root && strings.HasPrefix(entry.Name(), ".") {
			return filepath.SkipDir
		}
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.watcher == nil {
			return nil
		}
		return w.watcher.Add(p)
	})
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	watcher := w.watcher
	w.watcher = nil
	w.mu.Unlock()
	if watcher != nil {
		return watcher.Close()
	}
	return nil
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
