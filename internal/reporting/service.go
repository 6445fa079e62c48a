// Package reporting runs the report pipeline: fetch, classify, normalise,
// aggregate, lay out and render.
package reporting

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/tesoreria/internal/dataset"
	"github.com/odyssey-erp/tesoreria/internal/fetch"
	"github.com/odyssey-erp/tesoreria/internal/layout"
	"github.com/odyssey-erp/tesoreria/internal/records"
)

// Report outcomes passed to the Observer.
const (
	OutcomeOK        = "ok"
	OutcomeInvalid   = "invalid"
	OutcomeMissing   = "missing_dataset"
	OutcomeMalformed = "malformed"
	OutcomeCancelled = "cancelled"
	OutcomeError     = "error"
)

// Fetcher downloads the source CSVs.
type Fetcher interface {
	Fetch(ctx context.Context, urls []string, refresh bool) ([]fetch.SourceDocument, error)
}

// Classifier assigns fetched documents to dataset roles.
type Classifier interface {
	Classify(docs []fetch.SourceDocument) (dataset.Classification, error)
}

// Renderer encodes a laid-out document.
type Renderer interface {
	Render(doc *layout.Document, w io.Writer) error
}

// Observer receives one outcome per generated report.
type Observer interface {
	ObserveReport(outcome string, pages int, elapsed time.Duration)
}

// Request is one report generation request.
type Request struct {
	URLs    []string
	Refresh bool
}

// Prepared is the normalised, aggregated input of one report.
type Prepared struct {
	Report   layout.Report
	Warnings []records.Warning
	Failures []*fetch.FetchError
	Ignored  []dataset.Ignored
}

// Result is a finished report.
type Result struct {
	ID          string
	Filename    string
	GeneratedAt time.Time
	PDF         []byte
	Pages       int
	Warnings    []records.Warning
	Failures    []*fetch.FetchError
	Ignored     []dataset.Ignored
}

// Options tunes the Service.
type Options struct {
	// Observations adds a data-quality page listing fetch failures, ignored
	// duplicates and values read through the lossy numeric fallback.
	Observations bool
	Observer     Observer
	Logger       *slog.Logger
}

// Service generates treasury reports.
type Service struct {
	fetcher      Fetcher
	classifier   Classifier
	engine       *layout.Engine
	renderer     Renderer
	observations bool
	observer     Observer
	logger       *slog.Logger
	now          func() time.Time
	newID        func() string
}

// NewService constructs the report pipeline.
func NewService(fetcher Fetcher, classifier Classifier, engine *layout.Engine, renderer Renderer, opts Options) *Service {
	s := &Service{
		fetcher:      fetcher,
		classifier:   classifier,
		engine:       engine,
		renderer:     renderer,
		observations: opts.Observations,
		observer:     opts.Observer,
		logger:       opts.Logger,
		now:          time.Now,
		newID:        func() string { return uuid.NewString() },
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// WithIDs overrides report ID generation for testing.
func (s *Service) WithIDs(fn func() string) {
	if fn != nil {
		s.newID = fn
	}
}

// Prepare validates the request, downloads and classifies the CSVs and
// normalises every dataset that was found. URL validation happens before any
// network I/O.
func (s *Service) Prepare(ctx context.Context, req Request) (Prepared, error) {
	if len(req.URLs) == 0 {
		return Prepared{}, fmt.Errorf("%w: url parameter is required", fetch.ErrInvalidInput)
	}
	if err := fetch.ValidateURLs(req.URLs); err != nil {
		return Prepared{}, err
	}

	docs, err := s.fetcher.Fetch(ctx, req.URLs, req.Refresh)
	if err != nil {
		return Prepared{}, err
	}
	classified, err := s.classifier.Classify(docs)
	if err != nil {
		return Prepared{}, err
	}

	out := Prepared{Failures: classified.Failures, Ignored: classified.Ignored}

	summaryDoc, _ := classified.Document(dataset.RoleSummary)
	table, err := parse(dataset.RoleSummary, summaryDoc)
	if err != nil {
		return Prepared{}, err
	}
	summary, warnings, err := records.NormalizeSummary(table)
	switch {
	case errors.Is(err, records.ErrEmptyDataset):
		// A summary without rows is as unusable as a missing one.
		return Prepared{}, fmt.Errorf("%w: %s: %v", dataset.ErrMissingRequiredDataset, summaryDoc.URL, err)
	case err != nil:
		return Prepared{}, fmt.Errorf("%s: %w", summaryDoc.URL, err)
	}
	out.Report.Summary = summary
	out.Warnings = append(out.Warnings, warnings...)

	if doc, ok := classified.Document(dataset.RoleStudentLedger); ok {
		table, err := parse(dataset.RoleStudentLedger, doc)
		if err != nil {
			return Prepared{}, err
		}
		ledger, warnings, err := records.NormalizeLedger(table)
		if err != nil {
			return Prepared{}, fmt.Errorf("%s: %w", doc.URL, err)
		}
		out.Report.Ledger = ledger
		out.Warnings = append(out.Warnings, warnings...)
	}

	for _, role := range []dataset.Role{dataset.RoleCollectionLog, dataset.RolePaymentLog} {
		doc, ok := classified.Document(role)
		if !ok {
			continue
		}
		table, err := parse(role, doc)
		if err != nil {
			return Prepared{}, err
		}
		rows, warnings := records.NormalizeTransactions(string(role), table)
		if role == dataset.RoleCollectionLog {
			out.Report.Collections = rows
		} else {
			out.Report.Payments = rows
		}
		out.Warnings = append(out.Warnings, warnings...)
	}

	for _, w := range out.Warnings {
		s.logger.Warn("amount read as zero or truncated",
			slog.String("dataset", w.Dataset),
			slog.Int("line", w.Line),
			slog.String("field", w.Field),
			slog.String("raw", w.Raw))
	}
	if s.observations {
		out.Report.Observations = Observations(out)
	}
	return out, nil
}

// Generate prepares, lays out and renders a report fully in memory, so a
// failure at any stage can still be reported with a proper status.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	started := s.now()
	prepared, err := s.Prepare(ctx, req)
	if err != nil {
		s.observe(Outcome(err), 0, started)
		return nil, err
	}

	generated := s.now()
	report := prepared.Report
	report.ID = s.newID()
	report.GeneratedAt = generated
	doc := s.engine.Build(report)

	var buf bytes.Buffer
	if err := s.renderer.Render(doc, &buf); err != nil {
		s.observe(OutcomeError, 0, started)
		return nil, fmt.Errorf("render report: %w", err)
	}
	s.observe(OutcomeOK, len(doc.Pages), started)

	s.logger.Info("report generated",
		slog.String("report_id", report.ID),
		slog.Int("pages", len(doc.Pages)),
		slog.Int("bytes", buf.Len()),
		slog.Int("warnings", len(prepared.Warnings)),
		slog.Int("fetch_failures", len(prepared.Failures)))

	return &Result{
		ID:          report.ID,
		Filename:    fmt.Sprintf("reporte-%d.pdf", generated.UnixMilli()),
		GeneratedAt: generated,
		PDF:         buf.Bytes(),
		Pages:       len(doc.Pages),
		Warnings:    prepared.Warnings,
		Failures:    prepared.Failures,
		Ignored:     prepared.Ignored,
	}, nil
}

func (s *Service) observe(outcome string, pages int, started time.Time) {
	if s.observer != nil {
		s.observer.ObserveReport(outcome, pages, s.now().Sub(started))
	}
}

func parse(role dataset.Role, doc fetch.SourceDocument) (records.Table, error) {
	table, err := records.ParseCSV(doc.Body)
	if err != nil {
		return records.Table{}, fmt.Errorf("%w: %s (%s): %v", records.ErrMalformedDataset, role, doc.URL, err)
	}
	return table, nil
}

// Outcome classifies a pipeline error for metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, fetch.ErrInvalidInput):
		return OutcomeInvalid
	case errors.Is(err, dataset.ErrMissingRequiredDataset):
		return OutcomeMissing
	case errors.Is(err, records.ErrMalformedDataset):
		return OutcomeMalformed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	default:
		return OutcomeError
	}
}
