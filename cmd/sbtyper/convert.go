package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/seqtyping/sbtyper/internal/refdb"
	"github.com/seqtyping/sbtyper/internal/sbt"
)

func runConvert(args []string) int {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)

	var (
		inputDir   string
		outputPath string
	)

	fs.StringVar(&inputDir, "input", "", "Reference directory with allele FASTA files and the profile table")
	fs.StringVar(&inputDir, "i", "", "Reference directory with allele FASTA files and the profile table (shorthand)")
	fs.StringVar(&outputPath, "output", "", "Output DuckDB file path")
	fs.StringVar(&outputPath, "o", "", "Output DuckDB file path (shorthand)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Convert a reference directory to a DuckDB file.

The converted file loads faster than the text directory and is a single
artifact to distribute. Pass it to run/batch with --db.

Usage:
  sbtyper convert [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  sbtyper convert --input db/ --output reference.duckdb
  sbtyper convert -i db/ -o reference
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	if inputDir == "" {
		fmt.Fprintf(os.Stderr, "Error: --input is required\n\n")
		fs.Usage()
		return ExitUsage
	}
	if outputPath == "" {
		fmt.Fprintf(os.Stderr, "Error: --output is required\n\n")
		fs.Usage()
		return ExitUsage
	}

	// Ensure output has a recognized database extension
	if filepath.Ext(outputPath) != ".duckdb" && filepath.Ext(outputPath) != ".db" {
		outputPath = outputPath + ".duckdb"
	}

	// Remove existing output file if it exists
	if _, err := os.Stat(outputPath); err == nil {
		if err := os.Remove(outputPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error removing existing file: %v\n", err)
			return ExitError
		}
	}

	fmt.Fprintf(os.Stderr, "Converting reference directory to DuckDB...\n")
	fmt.Fprintf(os.Stderr, "  Input:  %s\n", inputDir)
	fmt.Fprintf(os.Stderr, "  Output: %s\n", outputPath)

	db, err := refdb.Load(inputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading reference: %v\n", err)
		return ExitError
	}

	alleles := 0
	for _, locus := range sbt.Loci() {
		alleles += db.AlleleCount(locus)
	}
	fmt.Fprintf(os.Stderr, "Loaded %d alleles and %d sequence types\n", alleles, db.STCount())

	if err := refdb.SaveDuckDB(db, outputPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing DuckDB: %v\n", err)
		return ExitError
	}

	stat, err := os.Stat(outputPath)
	var sizeStr string
	if err == nil {
		sizeStr = formatSize(stat.Size())
	} else {
		sizeStr = "unknown"
	}

	fmt.Fprintf(os.Stderr, "\nConversion complete!\n")
	fmt.Fprintf(os.Stderr, "  Output size: %s\n", sizeStr)
	fmt.Fprintf(os.Stderr, "  Output file: %s\n", outputPath)

	return ExitSuccess
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
