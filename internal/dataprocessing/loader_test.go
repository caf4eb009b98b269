package dataprocessing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"nplreport/internal/config"
	"nplreport/internal/errors"
	"nplreport/pkg/contracts/domain"
)

func testPaths(dir string) *config.Paths {
	cfg := config.Default().Paths
	cfg.InputDir = dir
	cfg.OutputDir = dir
	return config.NewPaths(cfg)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func writeWorkbook(t *testing.T, path, sheet string, rows ...[]interface{}) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		require.NoError(t, f.DeleteSheet("Sheet1"))
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestLoader_Load(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Transection_20240115.csv"),
		"\xEF\xBB\xBF FCUSNO |FPRODTY|FPRINCAM|FDPDUE00|FRPDATE\n"+
			"1001|HL|5000|0|20240115\n"+
			"1002|PL|NA|91\n"+
			"1003|PL||N/A|20240115\n")
	writeWorkbook(t, filepath.Join(dir, "Performance.xlsx"), "Sheet1",
		[]interface{}{" CIF", "STAGE_CIF "},
		[]interface{}{1001, 1},
		[]interface{}{1002, 3},
	)

	loader := NewLoader(discardLogger(), testPaths(dir), "")
	tx, perf, err := loader.Load(context.Background(), "20240115")
	require.NoError(t, err)

	assert.Equal(t, []string{"FCUSNO", "FPRODTY", "FPRINCAM", "FDPDUE00", "FRPDATE"}, tx.Columns())
	require.Equal(t, 3, tx.Len())
	assert.Equal(t, "1001", text(t, tx.Get(0, "FCUSNO")))
	assert.True(t, tx.Get(1, "FPRINCAM").IsNull())
	assert.True(t, tx.Get(1, "FRPDATE").IsNull(), "short row padded with null")
	assert.True(t, tx.Get(2, "FPRINCAM").IsNull())
	assert.True(t, tx.Get(2, "FDPDUE00").IsNull())

	assert.Equal(t, []string{"CIF", "STAGE_CIF"}, perf.Columns())
	require.Equal(t, 2, perf.Len())
	assert.Equal(t, "1002", text(t, perf.Get(1, "CIF")))
	assert.Equal(t, "3", text(t, perf.Get(1, "STAGE_CIF")))
}

func TestLoader_NamedSheet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "perf.xlsx")
	writeWorkbook(t, path, "Reference",
		[]interface{}{"CIF", "STAGE_CIF"},
		[]interface{}{"A1", 2},
	)

	perf, err := NewLoader(discardLogger(), testPaths(dir), "Reference").ReadPerformance(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, perf.Len())

	_, err = NewLoader(discardLogger(), testPaths(dir), "Missing").ReadPerformance(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeSourceAccess))
}

func TestLoader_SourceAccessErrors(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(discardLogger(), testPaths(dir), "")

	tests := []struct {
		name  string
		setup func(t *testing.T)
	}{
		{
			name:  "transaction file missing",
			setup: func(t *testing.T) {},
		},
		{
			name: "transaction file empty",
			setup: func(t *testing.T) {
				writeFile(t, filepath.Join(dir, "Transection_20240115.csv"), "")
			},
		},
		{
			name: "row longer than header",
			setup: func(t *testing.T) {
				writeFile(t, filepath.Join(dir, "Transection_20240115.csv"), "A|B\n1|2|3\n")
			},
		},
		{
			name: "performance workbook missing",
			setup: func(t *testing.T) {
				writeFile(t, filepath.Join(dir, "Transection_20240115.csv"), "A|B\n1|2\n")
			},
		},
		{
			name: "performance workbook corrupt",
			setup: func(t *testing.T) {
				writeFile(t, filepath.Join(dir, "Performance.xlsx"), "not a zip archive")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup(t)
			_, _, err := loader.Load(context.Background(), "20240115")
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrTypeSourceAccess), "got %v", err)
			assert.True(t, errors.IsRetryable(err))
		})
	}
}

func TestLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewLoader(discardLogger(), testPaths(t.TempDir()), "").Load(ctx, "20240115")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		width  int
		want   []string
	}{
		{"trimmed", []string{" A ", "B"}, 2, []string{"A", "B"}},
		{"duplicates", []string{"A", "A", "A"}, 3, []string{"A", "A.1", "A.2"}},
		{"suffix already taken", []string{"A", "A.1", "A"}, 3, []string{"A", "A.1", "A.2"}},
		{"blank and extra", []string{"A", " "}, 3, []string{"A", "Unnamed: 1", "Unnamed: 2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeHeader(tt.header, tt.width))
		})
	}
}

func TestCellValue_NATokens(t *testing.T) {
	for _, token := range []string{"", " ", "NA", "N/A", "NULL", "NaN", "None", "#N/A", "null", "<NA>"} {
		assert.True(t, cellValue(token).IsNull(), "token %q", token)
	}
	for _, s := range []string{"0", "none", "Na", "x"} {
		assert.Equal(t, domain.KindText, cellValue(s).Kind(), "token %q", s)
	}
}
