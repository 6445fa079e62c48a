package render

import (
	"bytes"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/tesoreria/internal/layout"
	"github.com/odyssey-erp/tesoreria/internal/records"
)

func sampleDocument(students int) *layout.Document {
	ledger := make([]records.StudentRow, 0, students)
	for i := 0; i < students; i++ {
		ledger = append(ledger, records.StudentRow{
			Name:      "Estudiante Ñandú",
			DuesTotal: decimal.NewFromInt(10),
			PaidTotal: decimal.NewFromInt(8),
			Balance:   decimal.NewFromInt(2),
			Spend:     decimal.NewFromInt(int64(i + 1)),
			Status:    records.StatusReview,
			StatusRaw: "REVISAR",
		})
	}
	return layout.NewEngine(layout.Options{}).Build(layout.Report{
		ID:          "abc-123",
		GeneratedAt: time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC),
		Summary: records.SummaryTotals{
			Received:  decimal.RequireFromString("1500"),
			Delivered: decimal.RequireFromString("1200"),
			Balance:   decimal.RequireFromString("300"),
		},
		Ledger: ledger,
	})
}

func TestRenderProducesPDF(t *testing.T) {
	doc := sampleDocument(50)
	var buf bytes.Buffer
	require.NoError(t, NewPDFRenderer().Render(doc, &buf))

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, buf.String(), "%%EOF")
	assert.Contains(t, buf.String(), "/Count "+strconv.Itoa(len(doc.Pages)))
}

func TestRenderIsDeterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, NewPDFRenderer().Render(sampleDocument(3), &a))
	require.NoError(t, NewPDFRenderer().Render(sampleDocument(3), &b))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestRenderRejectsEmptyDocument(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, NewPDFRenderer().Render(&layout.Document{}, &buf), ErrEmptyDocument)
	assert.ErrorIs(t, NewPDFRenderer().Render(nil, &buf), ErrEmptyDocument)
	assert.Zero(t, buf.Len())
}

func TestEncodeText(t *testing.T) {
	assert.Equal(t, "P\xe1gina 1", EncodeText("Página 1"))
	assert.Equal(t, "\x85", EncodeText("…"))
	assert.Equal(t, "\x97", EncodeText("—"))
	assert.Equal(t, "###", EncodeText("███"))
	assert.Equal(t, "?", EncodeText("漢"))
	assert.Equal(t, "N\xb0", EncodeText("N°"))
}

func TestWedgePoints(t *testing.T) {
	points := wedgePoints(layout.WedgeOp{CX: 100, CY: 100, R: 10, Start: 0, End: 90})
	require.Len(t, points, 20)
	assert.Equal(t, 100.0, points[0].X)
	assert.InDelta(t, 110, points[1].X, 1e-9)
	assert.InDelta(t, 100, points[1].Y, 1e-9)
	last := points[len(points)-1]
	assert.InDelta(t, 100, last.X, 1e-9)
	assert.InDelta(t, 90, last.Y, 1e-9)
	for _, p := range points[1:] {
		assert.InDelta(t, 10, math.Hypot(p.X-100, p.Y-100), 1e-9)
	}
}
