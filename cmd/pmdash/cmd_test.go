package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/pmdash/internal/csvimport"
)

// boardCSV has one task due two days from now, inside the deadline window
func boardCSV() string {
	due := time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02")
	return "Project Name,Project Description,Task Title,Task Description,Task Status,Task Priority,Due Date\n" +
		"Acme,Rockets,Design,Sketch it,todo,high," + due + "\n" +
		"Acme,Rockets,Build,Weld it,in-progress,medium,\n" +
		"Globex,Widgets,Ship,Send it,review,low,\n"
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := rootCmd(viper.New())
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestVersion(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pmdash dev")
}

func TestImportThenStats(t *testing.T) {
	dir := isolate(t)
	dbPath := filepath.Join(dir, "pm.db")
	csvPath := filepath.Join(dir, "in", "board.csv")
	writeFile(t, csvPath, boardCSV())

	out, _, err := execute(t, "import", "--db", dbPath, "--mock=false", filepath.Join(dir, "in", "*.csv"))
	require.NoError(t, err)
	assert.Contains(t, out, "board.csv: 2 projects, 3 tasks")

	out, _, err = execute(t, "stats", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Projects:       2")
	assert.Contains(t, out, "Tasks:          3")
	assert.Contains(t, out, "Due this week:  1")
	assert.Contains(t, out, "Upcoming deadlines:")
	assert.Contains(t, out, "Design")
	assert.Contains(t, out, `Task "Ship" was created`)
}

func TestImportHelpListsColumns(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "import", "--help")
	require.NoError(t, err)
	for _, col := range append(append([]string{}, csvimport.RequiredColumns...),
		csvimport.ColProjectCategory, csvimport.ColProjectColor, csvimport.ColDueDate) {
		assert.Contains(t, out, col)
	}
	assert.NotContains(t, out, "Task Due Date")
}

func TestImportReportsMissingColumns(t *testing.T) {
	dir := isolate(t)
	csvPath := filepath.Join(dir, "bad.csv")
	writeFile(t, csvPath, "Project Name,Task Title\nAcme,Design\n")

	_, stderr, err := execute(t, "import", "--mock=false", csvPath)
	require.Error(t, err)
	assert.Contains(t, stderr, "Missing required columns: Project Description")
}

func TestImportNoMatches(t *testing.T) {
	dir := isolate(t)

	_, _, err := execute(t, "import", filepath.Join(dir, "*.csv"))
	assert.EqualError(t, err, "no files match")
}

func TestExportJSON(t *testing.T) {
	isolate(t)

	out, _, err := execute(t, "export", "--format", "json", "--seed", "42")
	require.NoError(t, err)

	var doc struct {
		Projects []struct {
			ID string `json:"id"`
		} `json:"projects"`
		Activities []json.RawMessage `json:"activities"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Projects, 4)
	assert.Equal(t, "project-1", doc.Projects[0].ID)
	assert.Len(t, doc.Activities, 20)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "export", "--format", "xml")
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	dir := isolate(t)
	cfgPath := filepath.Join(dir, "pmdash.yaml")
	writeFile(t, cfgPath, "logging:\n  level: loud\n")

	_, _, err := execute(t, "stats", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}
