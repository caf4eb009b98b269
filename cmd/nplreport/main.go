package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nplreport/internal/config"
	"nplreport/internal/files"
	"nplreport/internal/infrastructure"
	"nplreport/internal/operations"
	"nplreport/pkg/contracts"
)

// options holds the command line flags. Flags left at their zero value keep
// the configured setting.
type options struct {
	reportDate     string
	configPath     string
	inputDir       string
	outputDir      string
	joinPolicy     string
	exportCSV      bool
	exportWorkbook bool
	list           bool
	version        bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one report build and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: invalid options: %v\n", err)
		return 2
	}
	if opts.list {
		return listReportDates(cfg, stdout, stderr)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(ctx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting NPL report",
		slog.String("report_date", opts.reportDate),
		slog.String("version", contracts.Version),
		slog.String("join_policy", cfg.Pipeline.JoinPolicy))

	pipeline, err := operations.NewPipeline(cfg, logger, providers)
	if err != nil {
		logger.Error("Failed to build pipeline", slog.String("error", err.Error()))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	resp, runErr := pipeline.Run(ctx, opts.reportDate)

	if err := providers.WriteMetricsFile(cfg.Telemetry.MetricsFile); err != nil {
		logger.Warn("Failed to write metrics file", slog.String("error", err.Error()))
	}

	if runErr != nil {
		logger.Error("Report failed",
			slog.String("report_date", opts.reportDate),
			slog.String("error", runErr.Error()))
		fmt.Fprintf(stderr, "Error: %v\n", runErr)
		return 1
	}

	fmt.Fprintf(stdout, "Report for %s created successfully!\n", opts.reportDate)
	for _, a := range resp.Artifacts {
		fmt.Fprintf(stdout, "  %-17s %s\n", a.Kind, a.Path)
	}
	return 0
}

// parseFlags reads the flags and checks the report date
func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet("nplreport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.reportDate, "date", "", "report date as YYYYMMDD (required)")
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file (defaults to config.yaml or configs/config.yaml)")
	fs.StringVar(&opts.inputDir, "in", "", "directory holding the transaction and performance extracts")
	fs.StringVar(&opts.outputDir, "out", "", "directory receiving the dashboard and exports")
	fs.StringVar(&opts.joinPolicy, "join", "", "join policy for duplicate CIF rows: fanout, first or reject")
	fs.BoolVar(&opts.exportCSV, "export-csv", false, "also write the enriched dataset as CSV")
	fs.BoolVar(&opts.exportWorkbook, "export-xlsx", false, "also write the stage summary workbook")
	fs.BoolVar(&opts.list, "list", false, "list the report dates with a transaction extract in the input directory")
	fs.BoolVar(&opts.version, "version", false, "print version information")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "%s\n\nUsage: nplreport -date YYYYMMDD [flags]\n\n", config.AppName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if opts.version || (opts.list && opts.reportDate == "") {
		return opts, nil
	}
	if opts.reportDate == "" {
		return nil, errors.New("-date is required")
	}
	if _, err := config.ParseReportDate(opts.reportDate); err != nil {
		return nil, err
	}
	return opts, nil
}

// listReportDates prints the report dates that have a transaction extract
func listReportDates(cfg *config.Config, stdout, stderr io.Writer) int {
	discovery, err := files.NewDiscovery(cfg.Paths.TransactionTemplate)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	found, err := discovery.FindReportFiles(cfg.Paths.InputDir)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if len(found) == 0 {
		fmt.Fprintf(stdout, "No transaction extracts found in %s\n", cfg.Paths.InputDir)
		return 0
	}
	for _, f := range found {
		fmt.Fprintf(stdout, "%s  %s\n", f.ReportDate, f.Name)
	}
	return 0
}

// apply overlays the flags onto the loaded configuration
func (o *options) apply(cfg *config.Config) {
	if o.inputDir != "" {
		cfg.Paths.InputDir = o.inputDir
	}
	if o.outputDir != "" {
		cfg.Paths.OutputDir = o.outputDir
	}
	if o.joinPolicy != "" {
		cfg.Pipeline.JoinPolicy = o.joinPolicy
	}
	if o.exportCSV {
		cfg.Pipeline.ExportCSV = true
	}
	if o.exportWorkbook {
		cfg.Pipeline.ExportWorkbook = true
	}
}
