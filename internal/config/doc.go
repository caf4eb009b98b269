// Package config provides centralized configuration management for the NPL
// portfolio report. It handles loading configuration from multiple sources,
// validation, and resolves every file name a run reads or writes.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. Configuration file (YAML)
//  3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern NPL_<SECTION>_<FIELD>:
//
//	NPL_PATHS_INPUT_DIR=/data/extracts
//	NPL_PATHS_OUTPUT_DIR=/data/reports
//	NPL_PIPELINE_JOIN_POLICY=first
//	NPL_PIPELINE_LOAD_ATTEMPTS=3
//	NPL_LOGGING_LEVEL=debug
//
// # Path Management
//
// Paths interpolates the reporting-period identifier into the configured
// templates:
//
//	paths := config.NewPaths(cfg.Paths)
//	paths.TransactionFile("20240131") // Transection_20240131.csv
//	paths.DashboardFile("20240131")   // monthly_dashboard_20240131.png
package config
