package aggregate

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/tesoreria/internal/records"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ledger() []records.StudentRow {
	return []records.StudentRow{
		{Name: "Zoila", DuesTotal: d("100.10"), PaidTotal: d("80.20"), Balance: d("19.90"), Spend: d("30")},
		{Name: "ángel", DuesTotal: d("0.1"), PaidTotal: d("0.2"), Balance: d("-0.1"), Spend: d("10")},
		{Name: "Beatriz", DuesTotal: d("50"), PaidTotal: d("50"), Balance: d("0"), Spend: d("60")},
	}
}

func TestLedgerTotalsAreExact(t *testing.T) {
	total := LedgerTotals(ledger())
	assert.True(t, d("150.2").Equal(total.Dues), total.Dues.String())
	assert.True(t, d("130.4").Equal(total.Paid), total.Paid.String())
	assert.True(t, d("19.8").Equal(total.Balance), total.Balance.String())
	assert.True(t, d("100").Equal(total.Spend))
}

func TestTransactionTotals(t *testing.T) {
	rows := []records.TransactionRow{{Amount: d("0.1")}, {Amount: d("0.2")}}
	assert.Equal(t, "0.3", TransactionTotals(rows).String())
}

func TestSortLedgerByNameUsesSpanishCollation(t *testing.T) {
	sorted := SortLedgerByName(ledger())
	names := []string{sorted[0].Name, sorted[1].Name, sorted[2].Name}
	assert.Equal(t, []string{"ángel", "Beatriz", "Zoila"}, names)
	assert.Equal(t, "Zoila", ledger()[0].Name)
}

func TestBuildSpendBreakdown(t *testing.T) {
	b := BuildSpendBreakdown(ledger())
	require.Len(t, b.Shares, 3)
	assert.Equal(t, "Beatriz", b.Shares[0].Name)
	assert.Equal(t, "Zoila", b.Shares[1].Name)
	assert.Equal(t, "ángel", b.Shares[2].Name)
	assert.True(t, d("60").Equal(b.Shares[0].Percent))
	assert.True(t, d("60").Equal(b.Max))
	assert.True(t, d("30.4").Equal(b.Available))
}

func TestAvailableIsFlooredAtZero(t *testing.T) {
	rows := []records.StudentRow{{Name: "A", PaidTotal: d("10"), Spend: d("25")}}
	b := BuildSpendBreakdown(rows)
	assert.True(t, b.Available.IsZero())
}

func TestPercentZeroTotal(t *testing.T) {
	assert.True(t, Percent(d("5"), decimal.Zero).IsZero())
}

func TestBarLength(t *testing.T) {
	assert.Equal(t, 30, BarLength(d("60"), d("60"), 30))
	assert.Equal(t, 15, BarLength(d("30"), d("60"), 30))
	assert.Equal(t, 5, BarLength(d("10"), d("60"), 30))
	assert.Equal(t, 0, BarLength(d("10"), decimal.Zero, 30))
	assert.Equal(t, 0, BarLength(decimal.Zero, d("60"), 30))
}

func TestTextBar(t *testing.T) {
	line := TextBar(SpendShare{Name: "Beatriz", Spend: d("30"), Percent: d("50")}, d("60"))
	parts := strings.Split(line, " | ")
	require.Len(t, parts, 3)
	assert.Equal(t, "Beatriz"+strings.Repeat(" ", 13), parts[0])
	assert.Equal(t, strings.Repeat(BarGlyph, 15)+strings.Repeat(" ", 15), parts[1])
	assert.Equal(t, "30,00 — 50,00%", parts[2])

	zero := TextBar(SpendShare{Name: "Nadie", Spend: decimal.Zero, Percent: decimal.Zero}, decimal.Zero)
	assert.Contains(t, zero, "| "+strings.Repeat(" ", BarMaxWidth)+" |")
}
