package csvimport

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/pmdash/internal/event"
	"github.com/tgienger/pmdash/internal/models"
	"github.com/tgienger/pmdash/internal/store"
)

func newStore() *store.Store {
	return store.New(models.Snapshot{CurrentUser: models.User{ID: "user-1", Name: "Alice"}})
}

func TestImport_RoundTrip(t *testing.T) {
	s := newStore()
	im := NewImporter(s, nil, nil)

	res, err := im.Import(context.Background(), "test", header+"\nAcme,Desc,Do X,Do it,todo,high")
	require.NoError(t, err)
	assert.Equal(t, Result{Projects: 1, Tasks: 1}, res)

	projects := s.Projects()
	require.Len(t, projects, 1)
	assert.Equal(t, "Acme", projects[0].Name)
	assert.Equal(t, DefaultColor, projects[0].Color)
	require.Len(t, projects[0].Tasks, 1)
	task := projects[0].Tasks[0]
	assert.Equal(t, "Do X", task.Title)
	assert.Equal(t, models.StatusTodo, task.Status)
	assert.Equal(t, models.PriorityHigh, task.Priority)
	assert.Nil(t, task.DueDate)
}

func TestImport_MissingColumnCreatesNothing(t *testing.T) {
	s := newStore()
	im := NewImporter(s, nil, nil)

	_, err := im.Import(context.Background(), "test",
		"Project Name,Project Description,Task Title,Task Description,Task Status\nAcme,Desc,Do X,Do it,todo")

	var missing *MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{ColTaskPriority}, missing.Columns)
	assert.Empty(t, s.Projects())
	assert.Empty(t, s.Activities())
}

func TestImport_ReplayOrder(t *testing.T) {
	s := newStore()
	im := NewImporter(s, nil, nil)

	text := header + "\n" +
		"Beta,b,B1,d,todo,low\n" +
		"Alpha,a,A1,d,todo,low\n" +
		"Beta,b,B2,d,todo,low\n"
	res, err := im.Import(context.Background(), "test", text)
	require.NoError(t, err)
	assert.Equal(t, Result{Projects: 2, Tasks: 3}, res)

	var got []string
	acts := s.Activities()
	for i := len(acts) - 1; i >= 0; i-- {
		got = append(got, acts[i].Description)
	}
	assert.Equal(t, []string{
		`Project "Beta" was created`,
		`Task "B1" was created`,
		`Task "B2" was created`,
		`Project "Alpha" was created`,
		`Task "A1" was created`,
	}, got)
}

func TestImport_InvalidValuesPassThrough(t *testing.T) {
	s := newStore()
	im := NewImporter(s, nil, nil)

	_, err := im.Import(context.Background(), "test", header+",Due Date\nAcme,Desc,Do X,Do it,Blocked,Urgent,tbd")
	require.NoError(t, err)

	task := s.Projects()[0].Tasks[0]
	assert.Equal(t, models.TaskStatus("blocked"), task.Status)
	assert.Equal(t, models.Priority("urgent"), task.Priority)
	assert.Nil(t, task.DueDate, "unparseable due dates are dropped")
}

func TestImport_DueDates(t *testing.T) {
	s := newStore()
	im := NewImporter(s, nil, nil)

	_, err := im.Import(context.Background(), "test", header+",Due Date\nAcme,Desc,Do X,Do it,todo,high,2024-05-03")
	require.NoError(t, err)

	task := s.Projects()[0].Tasks[0]
	require.NotNil(t, task.DueDate)
	assert.Equal(t, 2024, task.DueDate.Year())
	assert.Equal(t, time.May, task.DueDate.Month())
	assert.Equal(t, 3, task.DueDate.Day())
}

func TestImport_PartialReplay(t *testing.T) {
	s := newStore()
	im := NewImporter(s, nil, nil)

	text := header + "\n" +
		"Acme,Desc,Do X,Do it,todo,high\n" +
		",Nameless,Do Y,Do it,todo,high\n"
	res, err := im.Import(context.Background(), "test", text)

	require.ErrorIs(t, err, store.ErrNameRequired)
	assert.Equal(t, Result{Projects: 1, Tasks: 1}, res)
	assert.Len(t, s.Projects(), 1, "no rollback of what was already created")
}

func TestImport_Cancelled(t *testing.T) {
	s := newStore()
	im := NewImporter(s, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := im.Import(ctx, "test", header+"\nAcme,Desc,Do X,Do it,todo,high")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.Projects())
}

func TestImport_PublishesCompletion(t *testing.T) {
	bus := event.NewBus(nil)
	var done event.ImportCompleted
	bus.Subscribe(event.TypeImportCompleted, func(e event.Event) {
		done = e.(event.ImportCompleted)
	})

	im := NewImporter(newStore(), bus, nil)
	_, err := im.Import(context.Background(), "board.csv", header+"\nAcme,Desc,Do X,Do it,todo,high")
	require.NoError(t, err)

	assert.Equal(t, "board.csv", done.Source)
	assert.Equal(t, 1, done.Projects)
	assert.Equal(t, 1, done.Tasks)
}

func TestImportFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("reads csv files", func(t *testing.T) {
		path := filepath.Join(dir, "board.csv")
		require.NoError(t, os.WriteFile(path, []byte(header+"\nAcme,Desc,Do X,Do it,todo,high\n"), 0644))

		res, err := NewImporter(newStore(), nil, nil).ImportFile(context.Background(), path)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Projects)
	})

	t.Run("rejects other extensions", func(t *testing.T) {
		path := filepath.Join(dir, "board.txt")
		require.NoError(t, os.WriteFile(path, []byte(header), 0644))

		_, err := NewImporter(newStore(), nil, nil).ImportFile(context.Background(), path)
		assert.ErrorIs(t, err, ErrNotCSV)
	})
}

func TestImport_ShortRowCreatesNothing(t *testing.T) {
	s := newStore()
	im := NewImporter(s, nil, nil)

	res, err := im.Import(context.Background(), "test",
		header+"\nAcme,Desc,Do X,Do it,todo,high\nGlobex,Desc,Do Y,Do it")
	require.ErrorIs(t, err, ErrMalformedRow)
	assert.Equal(t, Result{}, res)
	assert.Empty(t, s.Projects())
	assert.Empty(t, s.Activities())
	assert.Equal(t, "Error processing CSV file. Please check the format and try again.", UserMessage(err))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "Projects and tasks imported successfully", UserMessage(nil))
	assert.Equal(t, "Missing required columns: Task Priority",
		UserMessage(&MissingColumnsError{Columns: []string{"Task Priority"}}))
	assert.Equal(t, "Please upload a CSV file", UserMessage(ErrNotCSV))
	assert.Equal(t, "Error processing CSV file. Please check the format and try again.",
		UserMessage(errors.New("boom")))
}
