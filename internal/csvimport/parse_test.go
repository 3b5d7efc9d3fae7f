package csvimport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Project Name,Project Description,Task Title,Task Description,Task Status,Task Priority"

func TestParse_SingleRow(t *testing.T) {
	reqs, err := Parse(header + "\nAcme,Desc,Do X,Do it,todo,high")
	require.NoError(t, err)

	require.Len(t, reqs, 1)
	assert.Equal(t, "Acme", reqs[0].Name)
	assert.Equal(t, "Desc", reqs[0].Description)
	assert.Equal(t, DefaultColor, reqs[0].Color)
	assert.Equal(t, "", reqs[0].Category)
	require.Len(t, reqs[0].Tasks, 1)
	assert.Equal(t, TaskRequest{Title: "Do X", Description: "Do it", Status: "todo", Priority: "high"}, reqs[0].Tasks[0])
}

func TestParse_MissingColumns(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   []string
	}{
		{
			name:   "missing priority",
			header: "Project Name,Project Description,Task Title,Task Description,Task Status",
			want:   []string{"Task Priority"},
		},
		{
			name:   "reported in declaration order",
			header: "Task Priority,Task Title,Project Name",
			want:   []string{"Project Description", "Task Description", "Task Status"},
		},
		{
			name:   "empty input",
			header: "",
			want:   RequiredColumns,
		},
		{
			name:   "names are case sensitive",
			header: "project name,Project Description,Task Title,Task Description,Task Status,Task Priority",
			want:   []string{"Project Name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.header + "\nAcme,Desc,Do X,Do it,todo,high")

			var missing *MissingColumnsError
			require.True(t, errors.As(err, &missing))
			assert.Equal(t, tt.want, missing.Columns)
		})
	}
}

func TestParse_MissingColumnsMessage(t *testing.T) {
	err := &MissingColumnsError{Columns: []string{"Task Status", "Task Priority"}}
	assert.Equal(t, "Missing required columns: Task Status, Task Priority", err.Error())
}

func TestParse_Grouping(t *testing.T) {
	text := "Project Name, Project Description ,Task Title,Task Description,Task Status,Task Priority,Project Category,Project Color,Due Date\n" +
		"Beta,First beta,B1,d,TODO,High,Ops,#ff0000,2024-05-02\n" +
		"\n" +
		"Alpha,Alpha desc,A1,d,In-Progress,LOW,,,\n" +
		"   \n" +
		"Beta,Ignored desc,B2,d,review,medium,Other,#00ff00,\n" +
		"Alpha,,A2,d,completed,high,,,\n"

	reqs, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, reqs, 2)

	beta := reqs[0]
	assert.Equal(t, "Beta", beta.Name)
	assert.Equal(t, "First beta", beta.Description, "first occurrence wins")
	assert.Equal(t, "Ops", beta.Category)
	assert.Equal(t, "#ff0000", beta.Color)
	require.Len(t, beta.Tasks, 2)
	assert.Equal(t, "B1", beta.Tasks[0].Title)
	assert.Equal(t, "todo", beta.Tasks[0].Status)
	assert.Equal(t, "high", beta.Tasks[0].Priority)
	assert.Equal(t, "2024-05-02", beta.Tasks[0].DueDate)
	assert.Equal(t, "B2", beta.Tasks[1].Title)

	alpha := reqs[1]
	assert.Equal(t, "Alpha", alpha.Name)
	assert.Equal(t, DefaultColor, alpha.Color)
	assert.Equal(t, "", alpha.Category)
	require.Len(t, alpha.Tasks, 2)
	assert.Equal(t, "in-progress", alpha.Tasks[0].Status)
	assert.Equal(t, "low", alpha.Tasks[0].Priority)
	assert.Equal(t, "completed", alpha.Tasks[1].Status)
}

func TestParse_CRLF(t *testing.T) {
	reqs, err := Parse(header + "\r\nAcme,Desc,Do X,Do it,todo,high\r\n")
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "high", reqs[0].Tasks[0].Priority)
}

func TestParse_NoQuoting(t *testing.T) {
	reqs, err := Parse(header + "\n\"Acme, Inc\",Desc,Do X,Do it,todo,high")
	require.NoError(t, err)

	require.Len(t, reqs, 1)
	assert.Equal(t, `"Acme`, reqs[0].Name, "embedded commas split the cell")
	assert.Equal(t, `Inc"`, reqs[0].Description)
	assert.Equal(t, "do it", reqs[0].Tasks[0].Status, "columns shift right")
	assert.Equal(t, "todo", reqs[0].Tasks[0].Priority)
}

func TestParse_ShortRows(t *testing.T) {
	t.Run("missing optional cells read as empty", func(t *testing.T) {
		reqs, err := Parse(header + ",Due Date,Project Category,Project Color\nAcme,Desc,Do X,Do it,todo,high")
		require.NoError(t, err)

		require.Len(t, reqs, 1)
		assert.Equal(t, "", reqs[0].Category)
		assert.Equal(t, DefaultColor, reqs[0].Color)
		task := reqs[0].Tasks[0]
		assert.Equal(t, "todo", task.Status)
		assert.Equal(t, "", task.DueDate)
	})

	t.Run("missing required cells fail the parse", func(t *testing.T) {
		reqs, err := Parse(header + "\nAcme,Desc,Do X,Do it,todo,high\nAcme,Desc,Do Y,Do it")
		require.ErrorIs(t, err, ErrMalformedRow)
		assert.Contains(t, err.Error(), "line 3")
		assert.Contains(t, err.Error(), `"Task Status"`)
		assert.Nil(t, reqs)
	})

	t.Run("empty trailing required cell is present", func(t *testing.T) {
		reqs, err := Parse(header + "\nAcme,Desc,Do X,Do it,todo,")
		require.NoError(t, err)
		assert.Equal(t, "", reqs[0].Tasks[0].Priority)
	})
}

func TestParse_HeaderOnly(t *testing.T) {
	reqs, err := Parse(header + "\n")
	require.NoError(t, err)
	assert.Empty(t, reqs)
}
