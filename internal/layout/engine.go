package layout

import (
	"time"

	"github.com/odyssey-erp/tesoreria/internal/aggregate"
	"github.com/odyssey-erp/tesoreria/internal/records"
)

// Defaults used when Options leaves a field empty.
const (
	DefaultTitle     = "REPORTE DE TRANSACCIONES"
	DefaultTreasurer = "JUAN PABLO BARBA MEDINA"
	reportSubject    = "Reporte de tesorería"
)

// Report is everything the engine needs; empty optional slices omit their section.
type Report struct {
	ID           string
	GeneratedAt  time.Time
	Summary      records.SummaryTotals
	Ledger       []records.StudentRow
	Collections  []records.TransactionRow
	Payments     []records.TransactionRow
	Observations []string
}

// Options configures the report header.
type Options struct {
	Title     string
	Treasurer string
	Location  *time.Location
}

// Engine lays out reports. It is stateless and safe for concurrent use.
type Engine struct {
	title     string
	treasurer string
	location  *time.Location
}

// NewEngine constructs an engine, filling defaults.
func NewEngine(opts Options) *Engine {
	e := &Engine{title: opts.Title, treasurer: opts.Treasurer, location: opts.Location}
	if e.title == "" {
		e.title = DefaultTitle
	}
	if e.treasurer == "" {
		e.treasurer = DefaultTreasurer
	}
	if e.location == nil {
		e.location = time.UTC
	}
	return e
}

// Build lays out every section in order and stamps footers last.
func (e *Engine) Build(r Report) *Document {
	generated := r.GeneratedAt.In(e.location)
	doc := &Document{Meta: Meta{
		Title:     e.title,
		Author:    e.treasurer,
		Subject:   reportSubject,
		ReportID:  r.ID,
		CreatedAt: generated,
	}}
	f := NewFlow(doc)

	cur := f.NewPage()
	cur = drawHeader(f, cur, e.title, e.treasurer, generated.Format(records.DisplayDateLayout))
	drawSummary(f, cur, r.Summary)

	if len(r.Ledger) > 0 {
		cur = sectionTitle(f, f.NewPage(), TitleLedger)
		DrawTable(f, cur, LedgerTable(r.Ledger))
	}
	if len(r.Collections) > 0 {
		cur = sectionTitle(f, f.NewPage(), TitleCollections)
		DrawTable(f, cur, CollectionTable(r.Collections))
	}
	if len(r.Payments) > 0 {
		cur = sectionTitle(f, f.NewPage(), TitlePayments)
		DrawTable(f, cur, PaymentTable(r.Payments))
	}
	if len(r.Ledger) > 0 {
		breakdown := aggregate.BuildSpendBreakdown(r.Ledger)
		cur = sectionTitle(f, f.NewPage(), TitleSpend)
		cur = drawTextBars(f, cur, breakdown)
		cur = drawBars(f, cur, breakdown)
		drawPie(f, cur, breakdown)
	}
	if len(r.Observations) > 0 {
		drawNotes(f, f.NewPage(), r.Observations)
	}

	StampFooters(doc, generated)
	return doc
}
