// Package main provides the sbtyper command-line tool.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var verbose bool

func main() {
	os.Exit(run())
}

func run() int {
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&verbose, "verbose", false, "Enable debug logging")

	flag.Parse()

	if showVersion {
		fmt.Printf("sbtyper version %s (%s) built %s\n", version, commit, date)
		return ExitSuccess
	}

	// A .env in the working directory feeds the SBTYPER_* overrides.
	_ = godotenv.Load()
	initConfig()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		return ExitUsage
	}

	switch args[0] {
	case "run":
		return runRun(args[1:])
	case "batch":
		return runBatch(args[1:])
	case "convert":
		return runConvert(args[1:])
	case "config":
		return runConfig(args[1:])
	case "help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		printUsage()
		return ExitUsage
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `sbtyper - Sequence-Based Typing of bacterial isolates

Usage:
  sbtyper [options] <command> [arguments]

Commands:
  run         Type a single sample from its evidence directory
  batch       Type every sample directory under a root concurrently
  convert     Convert a reference directory to a DuckDB file
  config      Manage sbtyper configuration
  help        Show this help message

Global Options:
  --version   Show version information
  --verbose   Enable debug logging

Examples:
  # Type one sample against a reference directory
  sbtyper run --sbt db/ --evidence samples/isolate1

  # Type a whole run, writing per-sample JSON reports as well
  sbtyper batch --sbt db/ --samples samples/ --json-dir reports/

  # Convert the reference directory for faster reloads
  sbtyper convert --input db/ --output reference.duckdb

For more information on a command, use:
  sbtyper <command> --help
`)
}

// newLogger builds the CLI logger: warnings and errors by default, debug
// output with --verbose.
func newLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
