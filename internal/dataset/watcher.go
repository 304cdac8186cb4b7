package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/scholarnet/kgraph/internal/graph"
)

// DefaultReloadInterval is the minimum time between two reloads.
const DefaultReloadInterval = 500 * time.Millisecond

// Watcher reloads a dataset when its node or link file changes. Bursts of
// file events collapse into a single reload, and reloads are rate limited.
type Watcher struct {
	nodesPath string
	linksPath string
	onReload  func(*graph.Graph)
	onResult  func(error)
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithReloadLimiter replaces the default reload limiter.
func WithReloadLimiter(l *rate.Limiter) WatcherOption {
	return func(w *Watcher) {
		w.limiter = l
	}
}

// WithLogger sets the logger for reload and watch errors.
func WithLogger(l *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = l
	}
}

// WithReloadResult registers fn to be told the outcome of every reload
// attempt, including failed ones.
func WithReloadResult(fn func(err error)) WatcherOption {
	return func(w *Watcher) {
		w.onResult = fn
	}
}

// NewWatcher creates a watcher that calls onReload with each successfully
// reloaded graph. Invalid files are logged and skipped; the previous graph
// stays in use.
func NewWatcher(nodesPath, linksPath string, onReload func(*graph.Graph), opts ...WatcherOption) *Watcher {
	w := &Watcher{
		nodesPath: nodesPath,
		linksPath: linksPath,
		onReload:  onReload,
		limiter:   rate.NewLimiter(rate.Every(DefaultReloadInterval), 1),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is done. Directories are watched rather than files
// so that editors which replace files on save are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fw.Close()

	dirs := map[string]bool{
		filepath.Dir(w.nodesPath): true,
		filepath.Dir(w.linksPath): true,
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
	}

	pending := make(chan struct{}, 1)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-fw.Events:
				if !ok {
					return nil
				}
				if !w.relevant(ev) {
					continue
				}
				w.logger.Debug("dataset file changed", "file", ev.Name, "op", ev.Op.String())
				select {
				case pending <- struct{}{}:
				default:
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return nil
				}
				w.logger.Warn("file watcher error", "error", err)
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-pending:
			}
			if err := w.limiter.Wait(ctx); err != nil {
				return nil
			}
			w.reload()
		}
	})

	return g.Wait()
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	name := filepath.Clean(ev.Name)
	return name == filepath.Clean(w.nodesPath) || name == filepath.Clean(w.linksPath)
}

func (w *Watcher) reload() {
	start := time.Now()
	g, err := Load(w.nodesPath, w.linksPath)
	if w.onResult != nil {
		w.onResult(err)
	}
	if err != nil {
		w.logger.Warn("dataset reload failed", "error", err)
		return
	}
	w.logger.Info("dataset reloaded",
		"nodes", g.Len(),
		"links", len(g.Links()),
		"dangling", len(g.DanglingLinks()),
		"elapsed", time.Since(start))
	w.onReload(g)
}
