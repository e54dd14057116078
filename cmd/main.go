// Copyright the Oficio Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Command oficio classifies authority request letters: it ingests the
// source document into the journal, runs the admissibility and
// classification pipeline and prints the decision.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/term"

	"oficio/internal/casefile"
	"oficio/internal/config"
	"oficio/internal/extract"
	"oficio/internal/journal"
	"oficio/internal/logging"
	"oficio/internal/pipeline"
	"oficio/internal/report"
	"oficio/internal/version"
)

func main() {
	caseFilePath := flag.String("case", "", "Path to the case file (JSON) produced by the extraction service")
	pdfPath := flag.String("pdf", "", "Path to the source letter PDF; its text becomes the case body when the body is empty")
	configFile := flag.String("config", "", "Path to configuration file (YAML)")
	outputFormat := flag.String("format", "text", "Output format: text, json")
	journalPath := flag.String("journal", "", "Path to the ingestion journal database (overrides config)")
	sourceURL := flag.String("source-url", "", "Source URL of the document for journal dedup (default: file:// path)")
	verbose := flag.Bool("verbose", false, "Display missing checklist fields individually")
	noColor := flag.Bool("no-color", false, "Disable colored output")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		os.Exit(0)
	}
	if *caseFilePath == "" {
		fmt.Fprintln(os.Stderr, "Error: -case is required")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	level := cfg.Logging.Level
	if *logLevel != "" {
		level = *logLevel
	}
	logging.Init(level, cfg.Logging.Format, os.Stderr)

	if !*noColor && !term.IsTerminal(int(os.Stdout.Fd())) {
		*noColor = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, runOptions{
		caseFilePath: *caseFilePath,
		pdfPath:      *pdfPath,
		journalPath:  *journalPath,
		sourceURL:    *sourceURL,
		format:       *outputFormat,
		verbose:      *verbose,
		noColor:      *noColor,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type runOptions struct {
	caseFilePath string
	pdfPath      string
	journalPath  string
	sourceURL    string
	format       string
	verbose      bool
	noColor      bool
}

// logQueue is the CLI review sink: single-shot runs have no queue
// infrastructure, so review routing is surfaced in the log and the
// NEEDS_REVIEW status.
type logQueue struct{}

func (logQueue) Submit(_ context.Context, item pipeline.ReviewItem) error {
	slog.Warn("authority match needs manual review",
		"case_id", item.CaseID,
		"authority", item.AuthorityName,
		"best_match", item.BestMatch,
		"score", item.Score)
	return nil
}

func run(ctx context.Context, cfg *config.Config, opts runOptions) error {
	raw, err := os.ReadFile(opts.caseFilePath)
	if err != nil {
		return fmt.Errorf("read case file: %w", err)
	}
	var cf casefile.CaseFile
	if err := json.Unmarshal(raw, &cf); err != nil {
		return fmt.Errorf("parse case file: %w", err)
	}

	source := raw
	sourcePath := opts.caseFilePath
	if opts.pdfPath != "" {
		source, err = os.ReadFile(opts.pdfPath)
		if err != nil {
			return fmt.Errorf("read pdf: %w", err)
		}
		sourcePath = opts.pdfPath
		if cf.Body == "" {
			doc, err := extract.NewExtractor().FromPDF(opts.pdfPath)
			if err != nil {
				return err
			}
			cf.Body = doc.Text
		}
	}

	dbPath := cfg.Journal.Path
	if opts.journalPath != "" {
		dbPath = opts.journalPath
	}
	store, err := journal.OpenSQLStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	sourceURL := opts.sourceURL
	if sourceURL == "" {
		abs, err := filepath.Abs(sourcePath)
		if err != nil {
			return fmt.Errorf("resolve source path: %w", err)
		}
		sourceURL = "file://" + abs
	}

	ingest, err := journal.NewJournal(store).Ingest(source, sourceURL, sourcePath, "")
	if err != nil {
		return err
	}
	if ingest.Duplicate {
		fmt.Printf("Document already ingested (%s); nothing to do.\n", ingest.Entry.ContentHash[:12])
		return nil
	}

	p, err := pipeline.New(cfg, logQueue{})
	if err != nil {
		return err
	}
	out, err := p.Process(ctx, &cf)
	if err != nil {
		return err
	}

	switch opts.format {
	case "json":
		s, err := report.FormatJSON(out)
		if err != nil {
			return err
		}
		fmt.Println(s)
	case "text":
		fmt.Print(report.NewTextFormatter().Format(out, report.Options{
			NoColor: opts.noColor,
			Verbose: opts.verbose,
		}))
	default:
		return fmt.Errorf("unknown output format %q", opts.format)
	}
	return nil
}
