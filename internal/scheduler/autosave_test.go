package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/pmdash/internal/event"
	"github.com/tgienger/pmdash/internal/models"
	"github.com/tgienger/pmdash/internal/store"
)

type fakeSaver struct {
	mu    sync.Mutex
	saved []models.Snapshot
	err   error
}

func (f *fakeSaver) SaveSnapshot(_ context.Context, snap models.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, snap)
	return nil
}

func setup(t *testing.T) (*store.Store, *fakeSaver, *Autosaver) {
	t.Helper()
	bus := event.NewBus(nil)
	s := store.New(models.Snapshot{CurrentUser: models.User{ID: "user-1", Name: "Alice"}}, store.WithBus(bus))
	saver := &fakeSaver{}
	a := NewAutosaver(s, saver, nil)
	a.Attach(bus)
	return s, saver, a
}

func TestSaveIfDirty(t *testing.T) {
	s, saver, a := setup(t)
	ctx := context.Background()

	saved, err := a.SaveIfDirty(ctx)
	require.NoError(t, err)
	assert.False(t, saved, "nothing changed yet")

	_, err = s.CreateProject(store.ProjectInput{Name: "Acme"})
	require.NoError(t, err)
	assert.True(t, a.Dirty())

	saved, err = a.SaveIfDirty(ctx)
	require.NoError(t, err)
	assert.True(t, saved)
	require.Len(t, saver.saved, 1)
	assert.Equal(t, "Acme", saver.saved[0].Projects[0].Name)
	assert.False(t, a.Dirty())

	saved, err = a.SaveIfDirty(ctx)
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestSaveIfDirty_SelectionCounts(t *testing.T) {
	s, saver, a := setup(t)

	s.SetActiveProject(models.Selected("project-1"))
	saved, err := a.SaveIfDirty(context.Background())
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Len(t, saver.saved, 1)
}

func TestSaveNow_FailureKeepsDirty(t *testing.T) {
	s, saver, a := setup(t)
	saver.err = errors.New("disk full")

	_, err := s.CreateProject(store.ProjectInput{Name: "Acme"})
	require.NoError(t, err)

	_, err = a.SaveIfDirty(context.Background())
	assert.EqualError(t, err, "disk full")
	assert.True(t, a.Dirty())
}

func TestSchedule(t *testing.T) {
	_, _, a := setup(t)

	_, err := a.Schedule("@every 1m")
	assert.NoError(t, err)
	_, err = a.Schedule("*/5 * * * *")
	assert.NoError(t, err)
	_, err = a.Schedule("whenever")
	assert.Error(t, err)

	a.Start()
	a.Stop()
}
