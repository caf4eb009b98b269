package exporter

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nplreport/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name     string
		options  WriteOptions
		validate func(t *testing.T, content []byte)
	}{
		{
			name: "basic write with headers",
			options: WriteOptions{
				Headers: []string{"Name", "Age", "City"},
				Records: [][]string{
					{"John", "25", "New York"},
					{"Jane", "30", "London"},
				},
			},
			validate: func(t *testing.T, content []byte) {
				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				assert.Len(t, lines, 3)
				assert.Equal(t, "Name,Age,City", lines[0])
				assert.Equal(t, "Jane,30,London", lines[2])
			},
		},
		{
			name: "write with BOM prefix",
			options: WriteOptions{
				Headers:   []string{"Stage", "Sum"},
				Records:   [][]string{{"3. NPL", "150.25"}},
				BOMPrefix: true,
			},
			validate: func(t *testing.T, content []byte) {
				assert.True(t, bytes.HasPrefix(content, utf8BOM))
				assert.Contains(t, string(content), "3. NPL,150.25")
			},
		},
		{
			name: "pipe delimited",
			options: WriteOptions{
				Headers: []string{"FCUSNO", "FPRODTY"},
				Records: [][]string{{"1001", "HL"}},
				Comma:   '|',
			},
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "FCUSNO|FPRODTY\n1001|HL\n", string(content))
			},
		},
		{
			name: "special characters are quoted",
			options: WriteOptions{
				Headers: []string{"Note"},
				Records: [][]string{{`comma, "quote"`}, {"line\nbreak"}},
			},
			validate: func(t *testing.T, content []byte) {
				records, err := csv.NewReader(bytes.NewReader(content)).ReadAll()
				require.NoError(t, err)
				assert.Equal(t, `comma, "quote"`, records[1][0])
				assert.Equal(t, "line\nbreak", records[2][0])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "out.csv")
			require.NoError(t, NewCSVWriter(testLogger()).WriteCSV(path, tt.options))

			content, err := os.ReadFile(path)
			require.NoError(t, err)
			tt.validate(t, content)
		})
	}
}

func TestCSVWriter_NoTemporaryFilesLeft(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	w := NewCSVWriter(testLogger())

	require.NoError(t, w.WriteCSV(path, WriteOptions{Headers: []string{"A"}, Records: [][]string{{"1"}}}))
	require.NoError(t, w.WriteCSV(path, WriteOptions{Headers: []string{"A"}, Records: [][]string{{"2"}}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.csv", entries[0].Name())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A\n2\n", string(content), "second write replaces the first")
}

func TestStreamWriter_AbortLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	stream, err := NewCSVWriter(testLogger()).CreateStreamWriter(path, WriteOptions{Headers: []string{"A"}})
	require.NoError(t, err)
	require.NoError(t, stream.WriteRecord([]string{"1"}))
	stream.Abort()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCSVWriter_ErrorScenarios(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := NewCSVWriter(testLogger()).WriteCSV(filepath.Join(blocker, "out.csv"), WriteOptions{Headers: []string{"A"}})
	assert.Error(t, err)
}

func TestCSVWriter_ExportTable(t *testing.T) {
	table := domain.NewTable([]string{"FCUSNO", "FRPDATE", "FPRINCAM", "Is_Overdue", "DPD_Bucket"})
	require.NoError(t, table.AppendRow([]domain.Value{
		domain.Text("1001"),
		domain.Date(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)),
		domain.Number(12500.5),
		domain.Bool(true),
		domain.Null(),
	}))
	require.NoError(t, table.AppendRow([]domain.Value{
		domain.Text("1002"), domain.Null(), domain.Number(3000000), domain.Bool(false), domain.Text("0. No DPD"),
	}))

	path := filepath.Join(t.TempDir(), "npl_enriched_20240115.csv")
	require.NoError(t, NewCSVWriter(testLogger()).ExportTable(context.Background(), path, table))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(content, utf8BOM))

	records, err := csv.NewReader(bytes.NewReader(content[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, table.Columns(), records[0])
	assert.Equal(t, []string{"1001", "2024-01-15", "12500.5", "true", ""}, records[1])
	assert.Equal(t, []string{"1002", "", "3000000", "false", "0. No DPD"}, records[2])
}

func TestCSVWriter_ExportTableCancelled(t *testing.T) {
	table := domain.NewTable([]string{"A"})
	require.NoError(t, table.AppendRow([]domain.Value{domain.Text("x")}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()
	err := NewCSVWriter(testLogger()).ExportTable(ctx, filepath.Join(dir, "out.csv"), table)
	assert.ErrorIs(t, err, context.Canceled)

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
}
