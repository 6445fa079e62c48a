package aggregate

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/tesoreria/internal/records"
)

// Text bar geometry.
const (
	BarGlyph      = "█"
	BarNameWidth  = 20
	BarMaxWidth   = 30
	percentFactor = 100
)

var hundred = decimal.NewFromInt(percentFactor)

// SpendShare is one student's spend and its share of the total.
type SpendShare struct {
	Name    string
	Spend   decimal.Decimal
	Percent decimal.Decimal
}

// SpendBreakdown feeds the chart section.
type SpendBreakdown struct {
	Shares     []SpendShare
	TotalSpend decimal.Decimal
	TotalPaid  decimal.Decimal
	// Available is paid minus spend, never below zero.
	Available decimal.Decimal
	Max       decimal.Decimal
}

// BuildSpendBreakdown orders rows by spend descending (ties by name) and
// computes each row's share of the total spend.
func BuildSpendBreakdown(rows []records.StudentRow) SpendBreakdown {
	totals := LedgerTotals(rows)
	out := SpendBreakdown{
		TotalSpend: totals.Spend,
		TotalPaid:  totals.Paid,
		Available:  decimal.Max(decimal.Zero, totals.Paid.Sub(totals.Spend)),
		Max:        decimal.Zero,
	}
	out.Shares = make([]SpendShare, 0, len(rows))
	for _, row := range rows {
		out.Shares = append(out.Shares, SpendShare{
			Name:    row.Name,
			Spend:   row.Spend,
			Percent: Percent(row.Spend, totals.Spend),
		})
		if row.Spend.GreaterThan(out.Max) {
			out.Max = row.Spend
		}
	}
	sort.SliceStable(out.Shares, func(i, j int) bool {
		if c := out.Shares[i].Spend.Cmp(out.Shares[j].Spend); c != 0 {
			return c > 0
		}
		return out.Shares[i].Name < out.Shares[j].Name
	})
	return out
}

// Percent returns part/total*100, or zero when total is zero.
func Percent(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(hundred)
}

// BarLength scales value against max onto [0, width], rounding half away from zero.
func BarLength(value, max decimal.Decimal, width int) int {
	if max.Sign() <= 0 || value.Sign() <= 0 {
		return 0
	}
	n := value.Div(max).Mul(decimal.NewFromInt(int64(width))).Round(0).IntPart()
	if n > int64(width) {
		return width
	}
	return int(n)
}

// TextBar renders one textual chart line:
// "<name padded> | <bar padded> | <value> — <percent>%".
func TextBar(share SpendShare, max decimal.Decimal) string {
	bar := strings.Repeat(BarGlyph, BarLength(share.Spend, max, BarMaxWidth))
	return padRight(truncate(share.Name, BarNameWidth), BarNameWidth) +
		" | " + padRight(bar, BarMaxWidth) +
		" | " + records.FormatAmount(share.Spend) +
		" — " + records.FormatAmount(share.Percent) + "%"
}

func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width])
}
