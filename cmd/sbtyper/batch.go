package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/seqtyping/sbtyper/internal/duckdb"
	"github.com/seqtyping/sbtyper/internal/report"
	"github.com/seqtyping/sbtyper/internal/samples"
	"github.com/seqtyping/sbtyper/internal/sbt"
)

func runBatch(args []string) int {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)

	var (
		samplesDir string
		sbtDir     string
		dbPath     string
		outputFile string
		jsonDir    string
		possible   string
		storePath  string
		workers    int
	)

	fs.StringVar(&samplesDir, "samples", "", "Root directory holding one evidence directory per sample")
	fs.StringVar(&samplesDir, "s", "", "Root directory holding one evidence directory per sample (shorthand)")
	fs.StringVar(&sbtDir, "sbt", "", "Reference directory with allele FASTA files and the profile table")
	fs.StringVar(&dbPath, "db", "", "Converted reference database (.duckdb)")
	fs.StringVar(&outputFile, "o", "", "Combined table output file (default: stdout)")
	fs.StringVar(&outputFile, "output", "", "Combined table output file (default: stdout)")
	fs.StringVar(&jsonDir, "json-dir", "", "Write one JSON report per sample into this directory")
	fs.StringVar(&possible, "possible", "", "Write possible-profile expansions for ambiguous samples to this file")
	fs.StringVar(&storePath, "store", "", "Record results in a DuckDB results store at this path")
	fs.IntVar(&workers, "workers", viper.GetInt("batch.workers"), "Worker pool size (0 = number of CPUs)")
	cf := addCallingFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Type every sample directory under a root concurrently.

Each immediate subdirectory of the root is treated as one sample's
evidence directory. Samples with malformed evidence are skipped with a
warning; the combined table keeps submission order.

Usage:
  sbtyper batch [options] [samples-dir]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  sbtyper batch --sbt db/ --samples samples/
  sbtyper batch --db reference.duckdb -o results.tsv samples/
  sbtyper batch --sbt db/ --json-dir reports/ --possible possible.tsv samples/
  sbtyper batch --sbt db/ --store results.duckdb samples/
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	if samplesDir == "" && fs.NArg() > 0 {
		samplesDir = fs.Arg(0)
	}
	if samplesDir == "" {
		fmt.Fprintf(os.Stderr, "Error: samples directory required\n\n")
		fs.Usage()
		return ExitUsage
	}

	db, err := loadReference(sbtDir, dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	walker, err := samples.NewWalker(samplesDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	logger := newLogger()
	defer logger.Sync()

	cfg := cf.engineConfig()
	cfg.Workers = workers
	typer := sbt.NewTyper(db, cfg)
	typer.SetLogger(logger)

	out, cleanup, err := openOutput(outputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	defer cleanup()

	writers := []sbt.ResultWriter{report.NewTabWriter(out)}

	if jsonDir != "" {
		writers = append(writers, report.NewJSONDirWriter(jsonDir, version))
	}
	if possible != "" {
		pf, err := os.Create(possible)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating possible-profiles file: %v\n", err)
			return ExitError
		}
		defer pf.Close()
		writers = append(writers, report.NewPossibleWriter(pf, db))
	}
	if storePath != "" {
		store, err := duckdb.Open(storePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening results store: %v\n", err)
			return ExitError
		}
		defer store.Close()
		writers = append(writers, store)
	}

	writer := report.NewMultiWriter(writers...)
	if err := writer.WriteHeader(); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing header: %v\n", err)
		return ExitError
	}

	if err := typer.TypeAll(walker, writer); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	fmt.Fprintf(os.Stderr, "Processed %d sample directories\n", walker.Len())
	return ExitSuccess
}
