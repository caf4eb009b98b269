package config

import "time"

// Application constants
const (
	AppName = "NPL Portfolio Report"

	// EnvPrefix namespaces every environment variable (NPL_PATHS_INPUT_DIR, ...)
	EnvPrefix = "NPL"

	// ReportDateLayout is the layout of the reporting-period identifier
	ReportDateLayout = "20060102"
)

// Input and output file name templates; %s is the reporting-period identifier
const (
	DefaultTransactionTemplate     = "Transection_%s.csv"
	DefaultPerformanceFile         = "Performance.xlsx"
	DefaultDashboardTemplate       = "monthly_dashboard_%s.png"
	DefaultEnrichedCSVTemplate     = "npl_enriched_%s.csv"
	DefaultSummaryWorkbookTemplate = "npl_summary_%s.xlsx"
)

// Pipeline defaults
const (
	DefaultJoinPolicy     = "fanout"
	DefaultLoadAttempts   = 3
	DefaultLoadRetryDelay = 10 * time.Second
	DefaultRunTimeout     = 30 * time.Minute
)

// Dashboard defaults
const (
	DefaultFigureWidthInches  = 18.0
	DefaultFigureHeightInches = 14.0
	DefaultDPI                = 300
	DefaultPrincipalAxisMax   = 12000000.0
	DefaultHistogramBins      = 20
)

// File permissions
const (
	DirPermissions  = 0755
	FilePermissions = 0644
)
