package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/odyssey-erp/tesoreria/internal/records"
)

// LedgerTotal sums the numeric ledger columns.
type LedgerTotal struct {
	Dues    decimal.Decimal
	Paid    decimal.Decimal
	Balance decimal.Decimal
	Spend   decimal.Decimal
}

// LedgerTotals adds up every row exactly.
func LedgerTotals(rows []records.StudentRow) LedgerTotal {
	total := LedgerTotal{Dues: decimal.Zero, Paid: decimal.Zero, Balance: decimal.Zero, Spend: decimal.Zero}
	for _, row := range rows {
		total.Dues = total.Dues.Add(row.DuesTotal)
		total.Paid = total.Paid.Add(row.PaidTotal)
		total.Balance = total.Balance.Add(row.Balance)
		total.Spend = total.Spend.Add(row.Spend)
	}
	return total
}

// TransactionTotals sums the amount column of a log.
func TransactionTotals(rows []records.TransactionRow) decimal.Decimal {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.Amount)
	}
	return total
}

// SortLedgerByName returns a copy ordered alphabetically with Spanish collation,
// ignoring case and accents.
func SortLedgerByName(rows []records.StudentRow) []records.StudentRow {
	out := make([]records.StudentRow, len(rows))
	copy(out, rows)
	coll := collate.New(language.Spanish, collate.IgnoreCase, collate.IgnoreDiacritics)
	sort.SliceStable(out, func(i, j int) bool {
		return coll.CompareString(out[i].Name, out[j].Name) < 0
	})
	return out
}
