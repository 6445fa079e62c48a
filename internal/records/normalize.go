package records

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Header aliases for the transaction logs, compared without case or accents.
var (
	dateAliases        = []string{"fecha", "date", "fecha de pago", "fecha pago"}
	counterpartAliases = []string{"estudiante", "descripcion", "beneficiario", "proveedor", "concepto", "nombre"}
	referenceAliases   = []string{"banco", "referencia", "factura", "n factura", "no factura", "comprobante", "estado"}
	amountAliases      = []string{"valor", "monto", "importe", "amount", "total"}
)

type amountReader struct {
	dataset  string
	warnings []Warning
}

func (a *amountReader) read(row Row, field, raw string) decimal.Decimal {
	value, ok := ParseAmount(raw)
	if !ok {
		a.warnings = append(a.warnings, Warning{Dataset: a.dataset, Line: row.Line, Field: field, Raw: raw})
	}
	return value
}

// NormalizeSummary reads received, delivered and balance from the first three
// columns of the first data row.
func NormalizeSummary(table Table) (SummaryTotals, []Warning, error) {
	if len(table.Header) < SummaryMinColumns {
		return SummaryTotals{}, nil, fmt.Errorf("%w: summary needs %d columns, got %d", ErrMalformedDataset, SummaryMinColumns, len(table.Header))
	}
	if len(table.Rows) == 0 {
		return SummaryTotals{}, nil, fmt.Errorf("%w: summary has no data rows", ErrEmptyDataset)
	}
	row := table.Rows[0]
	reader := amountReader{dataset: "summary"}
	totals := SummaryTotals{
		Received:  reader.read(row, "received", row.Get(0)),
		Delivered: reader.read(row, "delivered", row.Get(1)),
		Balance:   reader.read(row, "balance", row.Get(2)),
	}
	return totals, reader.warnings, nil
}

// NormalizeLedger reads the student ledger by column position:
// 0 name, 1 dues, 2 paid, 3 balance, 4 spend, 5 status.
func NormalizeLedger(table Table) ([]StudentRow, []Warning, error) {
	if len(table.Header) < LedgerMinColumns {
		return nil, nil, fmt.Errorf("%w: student ledger needs %d columns (name, dues, paid, balance, spend, status), got %d",
			ErrMalformedDataset, LedgerMinColumns, len(table.Header))
	}
	reader := amountReader{dataset: "student_ledger"}
	rows := make([]StudentRow, 0, len(table.Rows))
	for _, row := range table.Rows {
		status := row.Get(LedgerColStatus)
		rows = append(rows, StudentRow{
			Name:      row.Get(LedgerColName),
			DuesTotal: reader.read(row, "dues", row.Get(LedgerColDues)),
			PaidTotal: reader.read(row, "paid", row.Get(LedgerColPaid)),
			Balance:   reader.read(row, "balance", row.Get(LedgerColBalance)),
			Spend:     reader.read(row, "spend", row.Get(LedgerColSpend)),
			Status:    ParseStatus(status),
			StatusRaw: status,
		})
	}
	return rows, reader.warnings, nil
}

// NormalizeTransactions reads a collection or payment log by header name.
// Missing columns produce empty fields rather than an error.
func NormalizeTransactions(dataset string, table Table) ([]TransactionRow, []Warning) {
	dateCol := table.Column(dateAliases...)
	counterpartCol := table.Column(counterpartAliases...)
	referenceCol := table.Column(referenceAliases...)
	amountCol := table.Column(amountAliases...)

	reader := amountReader{dataset: dataset}
	rows := make([]TransactionRow, 0, len(table.Rows))
	for _, row := range table.Rows {
		rows = append(rows, TransactionRow{
			Date:        ParseDate(row.Get(dateCol)),
			Counterpart: row.Get(counterpartCol),
			Reference:   row.Get(referenceCol),
			Amount:      reader.read(row, "amount", row.Get(amountCol)),
		})
	}
	return rows, reader.warnings
}

// Column returns the index of the first header matching any alias, or -1.
func (t Table) Column(aliases ...string) int {
	for _, alias := range aliases {
		want := foldHeader(alias)
		for i, h := range t.Header {
			if foldHeader(h) == want {
				return i
			}
		}
	}
	return -1
}

// foldHeader lowercases, strips accents and punctuation, and collapses spaces.
func foldHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return unicode.ToLower(r)
		default:
			return ' '
		}
	}, out)
	return strings.Join(strings.Fields(out), " ")
}
