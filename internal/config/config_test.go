package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ".", cfg.Paths.InputDir)
	assert.Equal(t, DefaultTransactionTemplate, cfg.Paths.TransactionTemplate)
	assert.Equal(t, DefaultPerformanceFile, cfg.Paths.PerformanceFile)
	assert.Equal(t, "fanout", cfg.Pipeline.JoinPolicy)
	assert.Equal(t, 3, cfg.Pipeline.LoadAttempts)
	assert.Equal(t, 10*time.Second, cfg.Pipeline.LoadRetryDelay)
	assert.False(t, cfg.Pipeline.ExportCSV)
	assert.False(t, cfg.Pipeline.ExportWorkbook)
	assert.Equal(t, 300, cfg.Dashboard.DPI)
	assert.NoError(t, cfg.Validate())
}

// TestLoad tests the Load function with various scenarios
func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults only",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "fanout", cfg.Pipeline.JoinPolicy)
				assert.Equal(t, "info", cfg.Logging.Level)
			},
		},
		{
			name: "file overrides defaults and keeps unspecified keys",
			file: "paths:\n  input_dir: /data/in\npipeline:\n  load_retry_delay: 2s\n  join_policy: first\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "/data/in", cfg.Paths.InputDir)
				assert.Equal(t, ".", cfg.Paths.OutputDir)
				assert.Equal(t, 2*time.Second, cfg.Pipeline.LoadRetryDelay)
				assert.Equal(t, "first", cfg.Pipeline.JoinPolicy)
				assert.Equal(t, 3, cfg.Pipeline.LoadAttempts)
			},
		},
		{
			name: "env overrides file",
			file: "pipeline:\n  join_policy: first\n",
			env: map[string]string{
				"NPL_PIPELINE_JOIN_POLICY":   "reject",
				"NPL_PIPELINE_EXPORT_CSV":    "true",
				"NPL_LOGGING_LEVEL":          "debug",
				"NPL_DASHBOARD_DPI":          "150",
				"NPL_PATHS_PERFORMANCE_FILE": "Perf.xlsx",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "reject", cfg.Pipeline.JoinPolicy)
				assert.True(t, cfg.Pipeline.ExportCSV)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, 150, cfg.Dashboard.DPI)
				assert.Equal(t, "Perf.xlsx", cfg.Paths.PerformanceFile)
			},
		},
		{
			name:    "invalid join policy",
			env:     map[string]string{"NPL_PIPELINE_JOIN_POLICY": "merge"},
			wantErr: true,
		},
		{
			name:    "template without placeholder",
			file:    "paths:\n  dashboard_template: dashboard.png\n",
			wantErr: true,
		},
		{
			name:    "zero load attempts",
			env:     map[string]string{"NPL_PIPELINE_LOAD_ATTEMPTS": "0"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "paths: [unterminated\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := filepath.Join(t.TempDir(), "config.yaml")
			if tt.file != "" {
				require.NoError(t, os.WriteFile(path, []byte(tt.file), 0644))
			} else {
				require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0644))
			}

			cfg, err := Load(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
