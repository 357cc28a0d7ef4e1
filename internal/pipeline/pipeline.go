// Package pipeline wires the stages together: extract text, detect the
// statement profile, parse rows, normalize them into transactions, and
// categorize. One statement in, one report out; batches run the same
// path concurrently.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/statement-pipeline/internal/categorize"
	"github.com/FACorreiaa/statement-pipeline/internal/extract"
	"github.com/FACorreiaa/statement-pipeline/internal/ledger"
	"github.com/FACorreiaa/statement-pipeline/internal/normalize"
	"github.com/FACorreiaa/statement-pipeline/internal/parser"
	"github.com/FACorreiaa/statement-pipeline/internal/profile"
)

// ErrNoTextContent means the PDF had no extractable text layer, which
// usually indicates a scanned image statement.
var ErrNoTextContent = errors.New("statement has no extractable text")

// Statement is one batch input. Doc, when set, bypasses PDF extraction
// for callers that already have text.
type Statement struct {
	ID   string
	Name string
	Data []byte
	Doc  *extract.Document
}

// Report summarizes processing one statement.
type Report struct {
	StatementID   string
	Name          string
	Profile       string
	ProfileLabel  string
	Pages         int
	Candidates    int
	SkippedLines  int
	Transactions  []ledger.Transaction
	RowErrors     []normalize.RowError
	Unmatched     int
	LowConfidence int
	Err           error
}

// Failed reports whether the statement produced no usable output.
func (r *Report) Failed() bool { return r.Err != nil }

// Service runs the ingestion pipeline.
type Service struct {
	logger      *slog.Logger
	detector    *profile.Detector
	parsers     *parser.Registry
	normalizer  *normalize.Normalizer
	categorizer *categorize.Service

	workers         int
	genericFallback bool
	lowConfidence   float64
}

// New creates a pipeline service around a categorizer, with default
// detection and parsing registries.
func New(categorizer *categorize.Service) *Service {
	return &Service{
		logger:          slog.Default(),
		detector:        profile.NewDetector(profile.Default()),
		parsers:         parser.DefaultRegistry(),
		normalizer:      normalize.New(),
		categorizer:     categorizer,
		workers:         4,
		genericFallback: true,
		lowConfidence:   0.7,
	}
}

// WithLogger sets the pipeline's logger.
func (s *Service) WithLogger(l *slog.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithDetector replaces the profile detector.
func (s *Service) WithDetector(d *profile.Detector) *Service {
	if d != nil {
		s.detector = d
	}
	return s
}

// WithParsers replaces the strategy registry.
func (s *Service) WithParsers(r *parser.Registry) *Service {
	if r != nil {
		s.parsers = r
	}
	return s
}

// WithNormalizer replaces the normalizer.
func (s *Service) WithNormalizer(n *normalize.Normalizer) *Service {
	if n != nil {
		s.normalizer = n
	}
	return s
}

// WithWorkers bounds batch concurrency.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// WithGenericFallback controls whether unrecognized statements run
// through the generic strategy instead of failing.
func (s *Service) WithGenericFallback(enabled bool) *Service {
	s.genericFallback = enabled
	return s
}

// WithLowConfidenceThreshold sets the confidence below which a
// categorized transaction is counted for review.
func (s *Service) WithLowConfidenceThreshold(t float64) *Service {
	if t > 0 && t <= 1 {
		s.lowConfidence = t
	}
	return s
}

// ProcessStatement runs one PDF statement through the pipeline.
func (s *Service) ProcessStatement(ctx context.Context, statementID, name string, data []byte) (*Report, error) {
	doc, err := extract.Extract(data)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", name, err)
	}
	return s.ProcessDocument(ctx, statementID, name, doc)
}

// ProcessDocument runs already-extracted statement text through the
// pipeline.
func (s *Service) ProcessDocument(ctx context.Context, statementID, name string, doc extract.Document) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if doc.IsEmpty() {
		return nil, fmt.Errorf("%s: %w", name, ErrNoTextContent)
	}

	report := &Report{
		StatementID: statementID,
		Name:        name,
		Pages:       len(doc.Pages),
	}

	prof, err := s.detector.Detect(doc)
	switch {
	case err == nil:
	case errors.Is(err, profile.ErrUnknownFormat) && s.genericFallback:
		prof = profile.Generic()
		s.logger.Info("unrecognized format, using generic parsing",
			slog.String("statement_id", statementID),
			slog.String("name", name))
	default:
		return nil, fmt.Errorf("detect %s: %w", name, err)
	}
	report.Profile = prof.ID
	report.ProfileLabel = prof.Label

	strat, err := s.parsers.ForProfile(prof.ID)
	if err != nil {
		return nil, err
	}
	parsed, err := strat.Parse(doc, prof)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	report.Candidates = len(parsed.Candidates)
	report.SkippedLines = len(parsed.Skipped)

	normed := s.normalizer.Normalize(statementID, prof, parsed.Candidates)
	report.RowErrors = normed.Errors
	report.Transactions = normed.Transactions

	for i := range report.Transactions {
		tx := &report.Transactions[i]
		m := s.categorizer.Categorize(tx.Description)
		tx.Category = m.Category
		tx.CategorySource = m.Kind.String()
		tx.Confidence = m.Confidence
		if m.Kind == categorize.Unmatched {
			report.Unmatched++
		}
		if m.Confidence < s.lowConfidence {
			report.LowConfidence++
		}
	}

	s.logger.Info("statement processed",
		slog.String("statement_id", statementID),
		slog.String("name", name),
		slog.String("profile", prof.ID),
		slog.Int("transactions", len(report.Transactions)),
		slog.Int("row_errors", len(report.RowErrors)),
		slog.Int("unmatched", report.Unmatched))
	return report, nil
}

// ProcessBatch runs statements concurrently. A statement that fails
// yields a report with Err set; the batch keeps going. The returned
// error is non-nil only when the context is cancelled.
func (s *Service) ProcessBatch(ctx context.Context, stmts []Statement) ([]*Report, error) {
	reports := make([]*Report, len(stmts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, stmt := range stmts {
		i, stmt := i, stmt
		g.Go(func() error {
			var (
				rep *Report
				err error
			)
			if stmt.Doc != nil {
				rep, err = s.ProcessDocument(ctx, stmt.ID, stmt.Name, *stmt.Doc)
			} else {
				rep, err = s.ProcessStatement(ctx, stmt.ID, stmt.Name, stmt.Data)
			}
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.logger.Error("statement failed",
					slog.String("statement_id", stmt.ID),
					slog.String("name", stmt.Name),
					slog.Any("error", err))
				rep = &Report{StatementID: stmt.ID, Name: stmt.Name, Err: err}
			}
			reports[i] = rep
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// Merge folds successful reports into a deduplicated ledger, in the
// order given.
func Merge(reports []*Report) *ledger.Ledger {
	b := ledger.NewBuilder()
	for _, r := range reports {
		if r == nil || r.Failed() {
			continue
		}
		b.Add(r.StatementID, r.Transactions)
	}
	return b.Build()
}
