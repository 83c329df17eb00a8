package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/toyz/smog/internal/logging"
)

// RunFunc is called by the watcher after every batch of relevant changes
type RunFunc func(ctx context.Context) error

// Watcher reruns generation when Go sources under a directory change
type Watcher struct {
	root       string
	outputFile string
	debounce   time.Duration
	run        RunFunc
	logger     *zap.Logger

	mu    sync.Mutex
	timer *time.Timer

	// ready is called once the tree is watched
	ready func()
}

// NewWatcher creates a watcher for root. Changes are batched until no event
// arrives for debounce.
func NewWatcher(root, outputFile string, debounce time.Duration, run RunFunc, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		root:       root,
		outputFile: outputFile,
		debounce:   debounce,
		run:        run,
		logger:     logger,
	}
}

// Watch blocks until ctx is done. Errors returned by the run function are
// logged and do not stop the watcher.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}

	trigger := make(chan struct{}, 1)
	defer w.stopTimer()
	if w.ready != nil {
		w.ready()
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !ignoredDir(info.Name()) {
					if err := w.addTree(fw, event.Name); err != nil {
						w.logger.Warn("failed to watch new directory", zap.String(logging.FieldFile, event.Name), zap.Error(err))
					}
					continue
				}
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("source changed",
				zap.String(logging.FieldFile, event.Name),
				zap.String("op", event.Op.String()))
			w.schedule(trigger)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-trigger:
			if err := w.run(ctx); err != nil {
				w.logger.Error("regeneration failed", zap.Error(err))
			}
		}
	}
}

// relevant reports whether event should trigger a run. The generated file
// is written by the run itself and test files never hold contracts.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	switch {
	case !strings.HasSuffix(name, ".go"):
		return false
	case name == w.outputFile:
		return false
	case strings.HasSuffix(name, "_test.go"):
		return false
	case strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_"):
		return false
	}
	return true
}

// schedule debounces rapid file changes
func (w *Watcher) schedule(trigger chan<- struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

// addTree watches dir and its subdirectories, skipping the ones the go tool
// ignores
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && ignoredDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return errors.Wrapf(err, "failed to watch %s", path)
		}
		return nil
	})
}
