package records

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrMalformedDataset marks a CSV whose shape does not satisfy the positional contract.
var ErrMalformedDataset = errors.New("malformed dataset")

// ErrEmptyDataset marks a CSV that has a header but no data rows.
var ErrEmptyDataset = errors.New("empty dataset")

// Ledger column positions. The student ledger is read by position, never by
// header name, so upstream exports must keep this order.
const (
	LedgerColName = iota
	LedgerColDues
	LedgerColPaid
	LedgerColBalance
	LedgerColSpend
	LedgerColStatus

	LedgerMinColumns = LedgerColStatus + 1
)

// SummaryMinColumns is the column count required by the summary dataset.
const SummaryMinColumns = 3

// Status classifies a ledger row for colour coding.
type Status int

const (
	StatusUnknown Status = iota
	StatusPending
	StatusReview
	StatusPaid
)

// String returns a stable lowercase name.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusReview:
		return "review"
	case StatusPaid:
		return "paid"
	default:
		return "unknown"
	}
}

// ParseStatus maps the free-text status column onto Status.
func ParseStatus(raw string) Status {
	switch strings.ToUpper(strings.Join(strings.Fields(raw), " ")) {
	case "POR COBRAR", "PENDIENTE":
		return StatusPending
	case "REVISAR", "EN REVISION", "EN REVISIÓN":
		return StatusReview
	case "PAGADO", "AL DIA", "AL DÍA", "CANCELADO":
		return StatusPaid
	default:
		return StatusUnknown
	}
}

// SummaryTotals is the first row of the summary dataset.
type SummaryTotals struct {
	Received  decimal.Decimal
	Delivered decimal.Decimal
	Balance   decimal.Decimal
}

// StudentRow is one student ledger line.
type StudentRow struct {
	Name      string
	DuesTotal decimal.Decimal
	PaidTotal decimal.Decimal
	Balance   decimal.Decimal
	Spend     decimal.Decimal
	Status    Status
	StatusRaw string
}

// TransactionRow is one line of a collection or payment log.
type TransactionRow struct {
	Date        Date
	Counterpart string
	Reference   string
	Amount      decimal.Decimal
}

// Warning records a value that was read through the lossy fallback path.
type Warning struct {
	Dataset string
	Line    int
	Field   string
	Raw     string
}
