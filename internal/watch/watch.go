package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler is called with the markdown files that changed during one
// debounce window
type Handler func(paths []string)

// Watcher reconverts walkthrough sources when they change on disk. A target
// is either a single markdown file or a directory whose markdown files are
// all watched.
type Watcher struct {
	files    map[string]bool // exact file targets
	roots    []string        // directory targets
	handler  Handler
	debounce time.Duration
	logger   *slog.Logger

	watcher  *fsnotify.Watcher
	changes  chan string
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a watcher over targets. Nothing is watched until Start.
func New(targets []string, handler Handler, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	w := &Watcher{
		files:    make(map[string]bool),
		handler:  handler,
		debounce: debounce,
		logger:   logger,
		changes:  make(chan string, 256),
		done:     make(chan struct{}),
	}

	for _, target := range targets {
		abs, err := filepath.Abs(target)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			w.roots = append(w.roots, abs)
		} else {
			w.files[abs] = true
		}
	}
	return w, nil
}

// Start registers the watches and begins delivering changes. It returns once
// the filesystem watches are in place.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	dirs := make(map[string]bool)
	for file := range w.files {
		dirs[filepath.Dir(file)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return err
		}
	}
	for _, root := range w.roots {
		if err := w.addRecursive(root); err != nil {
			watcher.Close()
			return err
		}
	}

	w.wg.Add(2)
	go w.processEvents(ctx)
	go w.debounceLoop(ctx)
	return nil
}

// Stop releases the filesystem watches and waits for pending callbacks
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		if w.watcher != nil {
			w.watcher.Close()
		}
	})
	w.wg.Wait()
}

// Run starts the watcher and blocks until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	w.Stop()
	return nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// tracked reports whether a changed path is one of the watched sources
func (w *Watcher) tracked(path string) bool {
	if w.files[path] {
		return true
	}
	if !strings.HasSuffix(strings.ToLower(path), ".md") {
		return false
	}
	for _, root := range w.roots {
		if strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Has(fsnotify.Create) && len(w.roots) > 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
					continue
				}
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !w.tracked(event.Name) {
				continue
			}

			select {
			case w.changes <- event.Name:
			default:
				w.logger.Warn("watch: change dropped, buffer full", "path", event.Name)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch: filesystem error", "error", err)
		}
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	defer w.wg.Done()

	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}
		if len(pending) == 0 {
			return
		}
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		clear(pending)

		// Editors that save by rename leave nothing behind for a moment
		var existing []string
		for _, p := range paths {
			if _, err := os.Stat(p); err == nil {
				existing = append(existing, p)
			}
		}
		if len(existing) > 0 && w.handler != nil {
			w.handler(existing)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case path := <-w.changes:
			pending[path] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			timer, timerC = nil, nil
			flush()
		}
	}
}
