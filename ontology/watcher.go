package ontology

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
	"golang.org/x/time/rate"

	"github.com/teranos/eavto/errors"
	"github.com/teranos/eavto/logger"
	"github.com/teranos/eavto/sym"
)

// Watcher defaults.
const (
	DefaultDebounce       = 500 * time.Millisecond
	DefaultSyncsPerMinute = 12
)

// SyncCallback receives the outcome of every watcher-triggered sync.
type SyncCallback func(*SyncReport, error)

// WatcherConfig tunes a Watcher. Zero values take the defaults.
type WatcherConfig struct {
	Debounce       time.Duration
	SyncsPerMinute int
}

// Watcher re-syncs an ontology directory when files in it change.
// Bursts of events collapse into one sync after the debounce period, and
// syncs are rate limited.
type Watcher struct {
	dir     string
	syncer  *Syncer
	watcher *fsnotify.Watcher
	limiter *rate.Limiter
	logger  *zap.SugaredLogger

	debounce      time.Duration
	mu            sync.Mutex
	debounceTimer *time.Timer
	callbacks     []SyncCallback
	pending       chan struct{}
}

// NewWatcher watches dir and every directory below it.
func NewWatcher(dir string, syncer *Syncer, cfg WatcherConfig, log *zap.SugaredLogger) (*Watcher, error) {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.SyncsPerMinute <= 0 {
		cfg.SyncsPerMinute = DefaultSyncsPerMinute
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}
	w := &Watcher{
		dir:      dir,
		syncer:   syncer,
		watcher:  fw,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.SyncsPerMinute)), 1),
		logger:   logger.OrNop(log),
		debounce: cfg.Debounce,
		pending:  make(chan struct{}, 1),
	}
	if err := w.addTree(dir); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return errors.Wrapf(err, "watch %s", path)
		}
		return nil
	})
}

// OnSync registers a callback run after each triggered sync.
func (w *Watcher) OnSync(cb SyncCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Run processes file events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.syncLoop(ctx)
	}()
	defer func() { <-done }()
	defer cancel()

	w.logger.Infow("Watching ontology directory", logger.FieldSymbol, sym.IX, logger.FieldPath, w.dir)

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("Ontology watcher error", logger.FieldError, err)
		}
	}
}

// Close releases the watches. Run closes them itself on return.
func (w *Watcher) Close() error {
	w.stopTimer()
	return w.watcher.Close()
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warnw("Cannot watch new directory", logger.FieldPath, event.Name, logger.FieldError, err)
			}
		}
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}
	w.logger.Debugw("Ontology change detected", logger.FieldFile, event.Name, "op", event.Op.String())
	w.schedule()
}

// schedule debounces bursts of events into one pending sync.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, w.Trigger)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
}

// Trigger requests a sync without waiting for a file event. Requests made
// while one is pending collapse into it.
func (w *Watcher) Trigger() {
	select {
	case w.pending <- struct{}{}:
	default:
	}
}

func (w *Watcher) syncLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.pending:
		}
		if err := w.limiter.Wait(ctx); err != nil {
			return
		}
		report, err := w.SyncNow(ctx)

		w.mu.Lock()
		callbacks := append([]SyncCallback(nil), w.callbacks...)
		w.mu.Unlock()
		for _, cb := range callbacks {
			cb(report, err)
		}
	}
}

// SyncNow loads the directory and syncs it immediately.
func (w *Watcher) SyncNow(ctx context.Context) (*SyncReport, error) {
	sources, err := LoadDir(w.dir)
	if err != nil {
		w.logger.Errorw("Ontology reload failed", logger.FieldPath, w.dir, logger.FieldError, err)
		return nil, err
	}
	report, err := w.syncer.Sync(ctx, sources)
	if err != nil {
		w.logger.Errorw("Ontology sync failed", logger.FieldPath, w.dir, logger.FieldError, err)
	}
	return report, err
}
