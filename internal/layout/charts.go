package layout

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/tesoreria/internal/aggregate"
	"github.com/odyssey-erp/tesoreria/internal/records"
)

const (
	textBarSize   = 8.0
	textBarHeight = 12.0
	barLabelWidth = 130.0
	barTrackWidth = 250.0
	barHeight     = 12.0
	barGap        = 5.0
	pieRadius     = 70.0
	swatchSize    = 10.0
	legendGap     = 30.0
)

// Chart captions.
const (
	CaptionTextBars = "Distribución de gastos por estudiante"
	CaptionBars     = "Gasto por estudiante"
	CaptionPie      = "Gastado frente a disponible"
	NoChartData     = "Sin datos para graficar"
	LegendSpend     = "Gastado"
	LegendAvailable = "Disponible"
)

func caption(f *Flow, cur PageCursor, text string) PageCursor {
	cur = textLine(f, cur, Margin, ContentWidth, text, Font{Family: FamilySans, Bold: true, Size: labelSize}, ColorSubtle, AlignLeft)
	return cur.Advance(lineGap / 2)
}

// drawTextBars renders one monospace line per share, widest spender first.
func drawTextBars(f *Flow, cur PageCursor, b aggregate.SpendBreakdown) PageCursor {
	cur = caption(f, cur, CaptionTextBars)
	font := Font{Family: FamilyMono, Size: textBarSize}
	for _, share := range b.Shares {
		cur, _ = f.Ensure(cur, textBarHeight)
		f.Draw(cur, TextOp{
			X: Margin, Y: cur.Y, W: ContentWidth, H: textBarHeight,
			Text: aggregate.TextBar(share, b.Max), Font: font, Color: ColorText,
		})
		cur = cur.Advance(textBarHeight)
	}
	return cur.Advance(2 * lineGap)
}

// drawBars renders the same breakdown as filled rectangles on a fixed track.
func drawBars(f *Flow, cur PageCursor, b aggregate.SpendBreakdown) PageCursor {
	cur = caption(f, cur, CaptionBars)
	label := Font{Family: FamilySans, Size: bodySize}
	track := ColorStripeFill
	fill := ColorSpend
	for _, share := range b.Shares {
		cur, _ = f.Ensure(cur, barHeight+barGap)
		x := Margin + barLabelWidth
		w := float64(aggregate.BarLength(share.Spend, b.Max, int(barTrackWidth)))
		f.Draw(cur,
			TextOp{X: Margin, Y: cur.Y, W: barLabelWidth - cellPadding, H: barHeight, Text: FitText(share.Name, barLabelWidth-cellPadding, label), Font: label, Color: ColorText},
			RectOp{X: x, Y: cur.Y, W: barTrackWidth, H: barHeight, Fill: &track},
		)
		if w > 0 {
			f.Draw(cur, RectOp{X: x, Y: cur.Y, W: w, H: barHeight, Fill: &fill})
		}
		valueX := x + barTrackWidth + cellPadding
		f.Draw(cur, TextOp{
			X: valueX, Y: cur.Y, W: PageWidth - Margin - valueX, H: barHeight,
			Text: records.FormatAmount(share.Spend), Font: label, Color: ColorText, Align: AlignRight,
		})
		cur = cur.Advance(barHeight + barGap)
	}
	return cur.Advance(2 * lineGap)
}

// drawPie renders spend against available balance with a legend on the right.
func drawPie(f *Flow, cur PageCursor, b aggregate.SpendBreakdown) PageCursor {
	cur = caption(f, cur, CaptionPie)
	total := b.TotalSpend.Add(b.Available)
	if total.Sign() <= 0 {
		return textLine(f, cur, Margin+indent, ContentWidth-indent, NoChartData, Font{Family: FamilySans, Size: bodySize}, ColorFooter, AlignLeft)
	}

	cur, _ = f.Ensure(cur, 2*pieRadius+2*lineGap)
	cx, cy := Margin+pieRadius, cur.Y+pieRadius
	slices := []struct {
		label string
		value decimal.Decimal
		color Color
	}{
		{LegendSpend, b.TotalSpend, ColorSpend},
		{LegendAvailable, b.Available, ColorAvailable},
	}

	start := 90.0
	legendY := cy - swatchSize - lineGap
	legendX := Margin + 2*pieRadius + legendGap
	font := Font{Family: FamilySans, Size: bodySize}
	for _, s := range slices {
		pct := aggregate.Percent(s.value, total)
		if s.value.Sign() > 0 {
			sweep, _ := pct.Div(decimal.NewFromInt(100)).Mul(decimal.NewFromInt(360)).Float64()
			f.Draw(cur, WedgeOp{CX: cx, CY: cy, R: pieRadius, Start: start, End: start + sweep, Fill: s.color})
			start += sweep
		}
		swatch := s.color
		f.Draw(cur,
			RectOp{X: legendX, Y: legendY, W: swatchSize, H: swatchSize, Fill: &swatch},
			TextOp{
				X: legendX + swatchSize + cellPadding, Y: legendY, W: PageWidth - Margin - legendX - swatchSize - cellPadding, H: swatchSize,
				Text: s.label + ": " + records.FormatAmount(s.value) + " (" + records.FormatAmount(pct) + "%)", Font: font, Color: ColorText,
			},
		)
		legendY += swatchSize + lineGap*2
	}
	return cur.Advance(2*pieRadius + 2*lineGap)
}
