package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/seqtyping/sbtyper/internal/refdb"
	"github.com/seqtyping/sbtyper/internal/report"
	"github.com/seqtyping/sbtyper/internal/samples"
	"github.com/seqtyping/sbtyper/internal/sbt"
)

// callingFlags holds the threshold flags shared by run and batch. Flag
// defaults come from the effective configuration, so config-file and
// environment overrides apply unless a flag is passed explicitly.
type callingFlags struct {
	minDepth      int
	minIdentity   float64
	minLengthFrac float64
	supportRatio  float64
}

func addCallingFlags(fs *flag.FlagSet) *callingFlags {
	cf := &callingFlags{}
	fs.IntVar(&cf.minDepth, "min-depth", viper.GetInt("calling.min_depth"),
		"Minimum per-position read depth for locus coverage")
	fs.Float64Var(&cf.minIdentity, "min-identity", viper.GetFloat64("calling.min_identity"),
		"Minimum percent identity for assembly hits")
	fs.Float64Var(&cf.minLengthFrac, "min-length-frac", viper.GetFloat64("calling.min_length_frac"),
		"Minimum fraction of allele length an assembly hit must cover")
	fs.Float64Var(&cf.supportRatio, "support-ratio", viper.GetFloat64("calling.support_ratio"),
		"Fragment support ratio promoting a duplicated-locus candidate (negative disables)")
	return cf
}

func (cf *callingFlags) engineConfig() sbt.Config {
	return sbt.Config{
		MinDepth:      cf.minDepth,
		MinIdentity:   cf.minIdentity,
		MinLengthFrac: cf.minLengthFrac,
		SupportRatio:  cf.supportRatio,
	}
}

// loadReference loads the reference database from a directory of allele
// FASTA files plus the profile table, or from a converted DuckDB file.
func loadReference(sbtDir, dbPath string) (*refdb.Database, error) {
	switch {
	case sbtDir != "" && dbPath != "":
		return nil, fmt.Errorf("use either --sbt or --db, not both")
	case dbPath != "":
		return refdb.LoadDuckDB(dbPath)
	case sbtDir != "":
		if refdb.IsDuckDB(sbtDir) {
			return refdb.LoadDuckDB(sbtDir)
		}
		return refdb.Load(sbtDir)
	default:
		ref := viper.GetString("reference.path")
		if ref == "" {
			return nil, fmt.Errorf("no reference database: pass --sbt DIR or --db FILE, or set reference.path")
		}
		if refdb.IsDuckDB(ref) {
			return refdb.LoadDuckDB(ref)
		}
		return refdb.Load(ref)
	}
}

// openOutput opens the output file, or stdout for an empty path.
func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func runRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ExitOnError)

	var (
		evidenceDir string
		sampleID    string
		sbtDir      string
		dbPath      string
		outputFile  string
		format      string
	)

	fs.StringVar(&evidenceDir, "evidence", "", "Sample evidence directory")
	fs.StringVar(&evidenceDir, "e", "", "Sample evidence directory (shorthand)")
	fs.StringVar(&sampleID, "sample", "", "Sample ID (default: evidence directory name)")
	fs.StringVar(&sbtDir, "sbt", "", "Reference directory with allele FASTA files and the profile table")
	fs.StringVar(&dbPath, "db", "", "Converted reference database (.duckdb)")
	fs.StringVar(&outputFile, "o", "", "Output file (default: stdout)")
	fs.StringVar(&outputFile, "output", "", "Output file (default: stdout)")
	fs.StringVar(&format, "format", "table", "Output format: table, json")
	cf := addCallingFlags(fs)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Type a single sample from its evidence directory.

The evidence directory holds per-locus depth tables and candidate FASTA
files (read pathway) and/or a hit table against the reference alleles
(assembly pathway).

Usage:
  sbtyper run [options] [evidence-dir]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  sbtyper run --sbt db/ --evidence samples/isolate1
  sbtyper run --db reference.duckdb samples/isolate1
  sbtyper run --sbt db/ --format json -o isolate1.json samples/isolate1
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	if evidenceDir == "" && fs.NArg() > 0 {
		evidenceDir = fs.Arg(0)
	}
	if evidenceDir == "" {
		fmt.Fprintf(os.Stderr, "Error: evidence directory required\n\n")
		fs.Usage()
		return ExitUsage
	}

	db, err := loadReference(sbtDir, dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	sample, err := samples.LoadDir(evidenceDir, sampleID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	logger := newLogger()
	defer logger.Sync()

	typer := sbt.NewTyper(db, cf.engineConfig())
	typer.SetLogger(logger)

	result, err := typer.Type(sample)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}

	out, cleanup, err := openOutput(outputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	defer cleanup()

	switch format {
	case "table":
		writer := report.NewTabWriter(out)
		if err := writer.WriteHeader(); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing header: %v\n", err)
			return ExitError
		}
		if err := writer.Write(result); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing result: %v\n", err)
			return ExitError
		}
		if err := writer.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Error flushing output: %v\n", err)
			return ExitError
		}
	case "json":
		data, err := json.MarshalIndent(report.BuildReport(result, version), "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
			return ExitError
		}
		if _, err := out.Write(append(data, '\n')); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
			return ExitError
		}
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown output format %q\n", format)
		return ExitError
	}

	return ExitSuccess
}
