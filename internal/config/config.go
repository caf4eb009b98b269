package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Dashboard DashboardConfig `yaml:"dashboard" envconfig:"DASHBOARD"`
}

// PathsConfig contains input and output locations. Relative paths resolve
// against the working directory.
type PathsConfig struct {
	InputDir                string `yaml:"input_dir" envconfig:"INPUT_DIR" validate:"required"`
	OutputDir               string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	TransactionTemplate     string `yaml:"transaction_template" envconfig:"TRANSACTION_TEMPLATE" validate:"required,contains=%s"`
	PerformanceFile         string `yaml:"performance_file" envconfig:"PERFORMANCE_FILE" validate:"required"`
	PerformanceSheet        string `yaml:"performance_sheet" envconfig:"PERFORMANCE_SHEET"`
	DashboardTemplate       string `yaml:"dashboard_template" envconfig:"DASHBOARD_TEMPLATE" validate:"required,contains=%s"`
	EnrichedCSVTemplate     string `yaml:"enriched_csv_template" envconfig:"ENRICHED_CSV_TEMPLATE" validate:"required,contains=%s"`
	SummaryWorkbookTemplate string `yaml:"summary_workbook_template" envconfig:"SUMMARY_WORKBOOK_TEMPLATE" validate:"required,contains=%s"`
}

// PipelineConfig contains join, retry and export settings
type PipelineConfig struct {
	JoinPolicy     string        `yaml:"join_policy" envconfig:"JOIN_POLICY" validate:"oneof=fanout first reject"`
	LoadAttempts   int           `yaml:"load_attempts" envconfig:"LOAD_ATTEMPTS" validate:"min=1,max=10"`
	LoadRetryDelay time.Duration `yaml:"load_retry_delay" envconfig:"LOAD_RETRY_DELAY" validate:"min=0"`
	Timeout        time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	ExportCSV      bool          `yaml:"export_csv" envconfig:"EXPORT_CSV"`
	ExportWorkbook bool          `yaml:"export_workbook" envconfig:"EXPORT_WORKBOOK"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	EnableTracing bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	TraceExporter string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"min=0,max=1"`
	EnableMetrics bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	// MetricsFile, when set, receives the run's metrics in Prometheus text format
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// DashboardConfig contains the rendering theme overrides
type DashboardConfig struct {
	WidthInches      float64 `yaml:"width_inches" envconfig:"WIDTH_INCHES" validate:"gt=0"`
	HeightInches     float64 `yaml:"height_inches" envconfig:"HEIGHT_INCHES" validate:"gt=0"`
	DPI              int     `yaml:"dpi" envconfig:"DPI" validate:"min=36,max=1200"`
	PrincipalAxisMax float64 `yaml:"principal_axis_max" envconfig:"PRINCIPAL_AXIS_MAX" validate:"gt=0"`
	HistogramBins    int     `yaml:"histogram_bins" envconfig:"HISTOGRAM_BINS" validate:"min=1"`
}

// Load builds the configuration from defaults, an optional YAML file and
// environment variables, in increasing order of precedence. An empty path
// searches the usual locations.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file keep their value
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// getConfigFilePath returns the first config file found in the common locations
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			InputDir:                ".",
			OutputDir:               ".",
			TransactionTemplate:     DefaultTransactionTemplate,
			PerformanceFile:         DefaultPerformanceFile,
			DashboardTemplate:       DefaultDashboardTemplate,
			EnrichedCSVTemplate:     DefaultEnrichedCSVTemplate,
			SummaryWorkbookTemplate: DefaultSummaryWorkbookTemplate,
		},
		Pipeline: PipelineConfig{
			JoinPolicy:     DefaultJoinPolicy,
			LoadAttempts:   DefaultLoadAttempts,
			LoadRetryDelay: DefaultLoadRetryDelay,
			Timeout:        DefaultRunTimeout,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/nplreport.log",
		},
		Telemetry: TelemetryConfig{
			TraceExporter: "none",
			SampleRatio:   1.0,
			EnableMetrics: true,
		},
		Dashboard: DashboardConfig{
			WidthInches:      DefaultFigureWidthInches,
			HeightInches:     DefaultFigureHeightInches,
			DPI:              DefaultDPI,
			PrincipalAxisMax: DefaultPrincipalAxisMax,
			HistogramBins:    DefaultHistogramBins,
		},
	}
}
