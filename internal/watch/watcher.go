// Package watch reports CSV files that appear or change under a directory
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

const eventChannelBuffer = 100

// Op is the kind of change
type Op string

const (
	OpCreate Op = "create"
	OpModify Op = "modify"
)

// Event is a debounced file change
type Event struct {
	// Path is relative to the watched directory, slash separated
	Path    string
	AbsPath string
	Op      Op
}

// Config configures a Watcher
type Config struct {
	Dir      string
	Pattern  string // doublestar pattern, e.g. "**/*.csv"
	Debounce time.Duration
}

// Watcher watches Dir recursively and emits an Event once a matching file
// has been quiet for Debounce. Files whose content did not change since the
// last event are skipped.
type Watcher struct {
	cfg     Config
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	hashMu sync.Mutex
	hashes map[string]string

	events chan Event
}

// New creates a watcher. Call Start to begin watching.
func New(cfg Config, logger *slog.Logger) (*Watcher, error) {
	if !doublestar.ValidatePattern(cfg.Pattern) {
		return nil, doublestar.ErrBadPattern
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 500 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		cfg:     cfg,
		watcher: fsw,
		logger:  logger,
		pending: make(map[string]fsnotify.Op),
		hashes:  make(map[string]string),
		events:  make(chan Event, eventChannelBuffer),
	}, nil
}

// Events returns the channel of debounced events. It is closed when the
// watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Scan returns the files already present that match the pattern, relative
// to Dir, and records their hashes so unchanged files are not re-reported.
func (w *Watcher) Scan() ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(w.cfg.Dir), w.cfg.Pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	for _, rel := range matches {
		if hash, err := fileHash(filepath.Join(w.cfg.Dir, filepath.FromSlash(rel))); err == nil {
			w.setHash(rel, hash)
		}
	}
	return matches, nil
}

// Start adds watches under Dir and starts processing events
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.cfg.Dir); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("watcher started",
		"dir", w.cfg.Dir,
		"pattern", w.cfg.Pattern,
		"debounce", w.cfg.Debounce)
	return nil
}

// Stop stops the watcher. The events channel is closed once processing exits.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// Matches reports whether rel (relative to Dir) matches the pattern
func (w *Watcher) Matches(rel string) bool {
	ok, err := doublestar.Match(w.cfg.Pattern, filepath.ToSlash(rel))
	return err == nil && ok
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if base := d.Name(); path != root && strings.HasPrefix(base, ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)
	ticker := time.NewTicker(w.cfg.Debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(ev)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleFSEvent(ev fsnotify.Event) {
	if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addWatchesRecursive(ev.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "path", ev.Name, "error", err)
			}
			return
		}
	}

	rel, err := filepath.Rel(w.cfg.Dir, ev.Name)
	if err != nil || !w.Matches(rel) {
		return
	}

	w.pendingMu.Lock()
	w.pending[ev.Name] |= ev.Op
	w.pendingMu.Unlock()
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for path, op := range toProcess {
		if ctx.Err() != nil {
			return
		}

		hash, err := fileHash(path)
		if err != nil {
			// removed before the debounce elapsed
			continue
		}
		rel, _ := filepath.Rel(w.cfg.Dir, path)
		rel = filepath.ToSlash(rel)

		old, had := w.hash(rel)
		if had && old == hash {
			continue
		}
		w.setHash(rel, hash)

		ev := Event{Path: rel, AbsPath: path, Op: OpModify}
		if op.Has(fsnotify.Create) || !had {
			ev.Op = OpCreate
		}

		select {
		case w.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) hash(rel string) (string, bool) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	h, ok := w.hashes[rel]
	return h, ok
}

func (w *Watcher) setHash(rel, hash string) {
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	w.hashes[rel] = hash
}

func fileHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
