// Package scheduler runs periodic background jobs. Its only job today is
// autosaving the store to the database.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"github.com/tgienger/pmdash/internal/event"
	"github.com/tgienger/pmdash/internal/models"
)

// Source provides the state to save; *store.Store satisfies it
type Source interface {
	Snapshot() models.Snapshot
}

// Saver persists a snapshot; *db.DB satisfies it
type Saver interface {
	SaveSnapshot(ctx context.Context, snap models.Snapshot) error
}

// Autosaver saves the store on a cron schedule, skipping runs when
// nothing changed since the last save.
type Autosaver struct {
	cron   *cron.Cron
	source Source
	saver  Saver
	logger *slog.Logger

	dirty  atomic.Bool
	saveMu sync.Mutex
}

// NewAutosaver creates an autosaver. Call Attach so it sees changes.
func NewAutosaver(source Source, saver Saver, logger *slog.Logger) *Autosaver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Autosaver{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		source: source,
		saver:  saver,
		logger: logger,
	}
}

// Attach marks the autosaver dirty on every store or selection change.
// Returns the subscription id.
func (a *Autosaver) Attach(bus *event.Bus) string {
	return bus.SubscribeAll(func(e event.Event) {
		switch e.EventType() {
		case event.TypeStoreChanged, event.TypeSelectionChanged:
			a.dirty.Store(true)
		}
	})
}

// Schedule registers the save job. spec is a standard 5-field cron
// expression or a descriptor such as "@every 1m".
func (a *Autosaver) Schedule(spec string) (cron.EntryID, error) {
	id, err := a.cron.AddFunc(spec, func() {
		if _, err := a.SaveIfDirty(context.Background()); err != nil {
			a.logger.Error("autosave failed", "error", err)
		}
	})
	if err != nil {
		return 0, fmt.Errorf("invalid autosave schedule %q: %w", spec, err)
	}
	return id, nil
}

func (a *Autosaver) Start() {
	a.cron.Start()
}

// Stop waits for a running save to finish
func (a *Autosaver) Stop() {
	ctx := a.cron.Stop()
	<-ctx.Done()
}

// Dirty reports whether there are unsaved changes
func (a *Autosaver) Dirty() bool {
	return a.dirty.Load()
}

// SaveIfDirty saves when there are unsaved changes and reports whether it did
func (a *Autosaver) SaveIfDirty(ctx context.Context) (bool, error) {
	if !a.dirty.Load() {
		return false, nil
	}
	return true, a.SaveNow(ctx)
}

// SaveNow saves unconditionally. On failure the changes stay marked unsaved.
func (a *Autosaver) SaveNow(ctx context.Context) error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.dirty.Store(false)
	snap := a.source.Snapshot()
	if err := a.saver.SaveSnapshot(ctx, snap); err != nil {
		a.dirty.Store(true)
		return err
	}
	a.logger.Debug("workspace saved", "projects", len(snap.Projects), "activities", len(snap.Activities))
	return nil
}
