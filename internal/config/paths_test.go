package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaths_Templates(t *testing.T) {
	cfg := Default().Paths
	cfg.InputDir = "in"
	cfg.OutputDir = "out"
	paths := NewPaths(cfg)

	assert.Equal(t, filepath.Join("in", "Transection_20240131.csv"), paths.TransactionFile("20240131"))
	assert.Equal(t, filepath.Join("in", "Performance.xlsx"), paths.PerformanceFile())
	assert.Equal(t, filepath.Join("out", "monthly_dashboard_20240131.png"), paths.DashboardFile("20240131"))
	assert.Equal(t, filepath.Join("out", "npl_enriched_20240131.csv"), paths.EnrichedCSVFile("20240131"))
	assert.Equal(t, filepath.Join("out", "npl_summary_20240131.xlsx"), paths.SummaryWorkbookFile("20240131"))
}

func TestPaths_AbsolutePerformanceFile(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "Perf.xlsx")
	cfg := Default().Paths
	cfg.PerformanceFile = abs

	assert.Equal(t, abs, NewPaths(cfg).PerformanceFile())
}

func TestPaths_EnsureDirectories(t *testing.T) {
	cfg := Default().Paths
	cfg.OutputDir = filepath.Join(t.TempDir(), "reports", "2024")
	paths := NewPaths(cfg)

	require.NoError(t, paths.EnsureDirectories())
	info, err := os.Stat(cfg.OutputDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestParseReportDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: "20240131"},
		{name: "leap day", input: "20240229"},
		{name: "not a leap year", input: "20230229", wantErr: true},
		{name: "month out of range", input: "20241301", wantErr: true},
		{name: "too short", input: "2024013", wantErr: true},
		{name: "separators", input: "2024-01-31", wantErr: true},
		{name: "sign", input: "+2024013", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReportDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, got.Format(ReportDateLayout))
		})
	}
}
