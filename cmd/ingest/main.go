package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/FACorreiaa/statement-pipeline/internal/categorize"
	"github.com/FACorreiaa/statement-pipeline/internal/export"
	"github.com/FACorreiaa/statement-pipeline/internal/ledger"
	"github.com/FACorreiaa/statement-pipeline/internal/pipeline"
	"github.com/FACorreiaa/statement-pipeline/internal/profile"
	"github.com/FACorreiaa/statement-pipeline/pkg/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ingest: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		output     = flag.String("o", "", "output path (overrides EXPORT_OUTPUT_PATH)")
		format     = flag.String("format", "", "output format, csv or xlsx (overrides EXPORT_FORMAT)")
		categories = flag.String("categories", "", "category config JSON (overrides CATEGORIZE_CONFIG_PATH)")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: ingest [flags] statement.pdf [statement.pdf ...]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return fmt.Errorf("no statements given")
	}

	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *output != "" {
		cfg.Export.OutputPath = *output
	}
	if *format != "" {
		cfg.Export.Format = *format
	}
	if *categories != "" {
		cfg.Categorize.ConfigPath = *categories
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	deps, err := buildDependencies(cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stmts, err := loadStatements(flag.Args())
	if err != nil {
		return err
	}

	reports, err := deps.Pipeline.ProcessBatch(ctx, stmts)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range reports {
		if r.Failed() {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL  %s: %v\n", r.Name, r.Err)
			continue
		}
		fmt.Printf("OK    %-40s %-24s %4d transactions", r.Name, r.ProfileLabel, len(r.Transactions))
		if len(r.RowErrors) > 0 {
			fmt.Printf("  (%d rows rejected)", len(r.RowErrors))
		}
		if r.Unmatched > 0 {
			fmt.Printf("  (%d uncategorized)", r.Unmatched)
		}
		fmt.Println()
	}
	if failed == len(reports) {
		return fmt.Errorf("all %d statements failed", failed)
	}

	led := pipeline.Merge(reports)
	if err := writeLedger(cfg, led); err != nil {
		return err
	}

	logger.Info("ledger written",
		slog.String("path", cfg.Export.OutputPath),
		slog.Int("transactions", len(led.Entries)),
		slog.Int("statements", len(reports)-failed))
	return nil
}

// Dependencies holds the wired pipeline components.
type Dependencies struct {
	Config      *config.Config
	Logger      *slog.Logger
	Categorizer *categorize.Service
	Pipeline    *pipeline.Service
}

func (d *Dependencies) Close() {
	if d.Categorizer != nil {
		_ = d.Categorizer.Close()
	}
}

func buildDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	catCfg := categorize.DefaultConfig()
	if cfg.Categorize.ConfigPath != "" {
		var err error
		catCfg, err = categorize.LoadConfig(cfg.Categorize.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load categories: %w", err)
		}
	}
	categorizer, err := categorize.New(catCfg)
	if err != nil {
		return nil, fmt.Errorf("build categorizer: %w", err)
	}
	categorizer = categorizer.
		WithLogger(logger).
		WithThreshold(cfg.Categorize.SemanticThreshold)

	detector := profile.NewDetector(profile.Default()).
		WithPages(cfg.Detect.Pages).
		WithMinScore(cfg.Detect.MinScore).
		WithLogger(logger)

	pipe := pipeline.New(categorizer).
		WithLogger(logger).
		WithDetector(detector).
		WithWorkers(cfg.Pipeline.Workers).
		WithGenericFallback(cfg.Pipeline.GenericFallback).
		WithLowConfidenceThreshold(cfg.Categorize.LowConfidence)

	return &Dependencies{
		Config:      cfg,
		Logger:      logger,
		Categorizer: categorizer,
		Pipeline:    pipe,
	}, nil
}

func loadStatements(paths []string) ([]pipeline.Statement, error) {
	stmts := make([]pipeline.Statement, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		name := filepath.Base(path)
		stmts = append(stmts, pipeline.Statement{
			ID:   strings.TrimSuffix(name, filepath.Ext(name)),
			Name: name,
			Data: data,
		})
	}
	return stmts, nil
}

func writeLedger(cfg *config.Config, led *ledger.Ledger) error {
	switch strings.ToLower(cfg.Export.Format) {
	case "", "csv":
		return export.SaveCSV(cfg.Export.OutputPath, led)
	case "xlsx":
		return export.SaveXLSX(cfg.Export.OutputPath, led)
	default:
		return fmt.Errorf("unknown export format %q", cfg.Export.Format)
	}
}
