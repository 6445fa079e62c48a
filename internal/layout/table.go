package layout

import (
	"strings"
	"unicode/utf8"
)

const (
	rowHeight     = 20.0
	cellPadding   = 4.0
	headerSize    = 10.0
	bodySize      = 9.0
	borderWidth   = 0.5
	avgGlyphRatio = 0.5
	minFontSize   = 5.0
	ellipsis      = "…"
)

// Column describes one fixed-width table column.
type Column struct {
	Title string
	Width float64
	Align Align
}

// Cell is a body or totals cell. Span > 1 merges it with the following columns.
type Cell struct {
	Text  string
	Color *Color
	Span  int
}

// Table is a grid with a header, body rows and an optional totals row.
type Table struct {
	Columns []Column
	Rows    [][]Cell
	Totals  []Cell
}

func (t Table) width() float64 {
	w := 0.0
	for _, c := range t.Columns {
		w += c.Width
	}
	return w
}

// DrawTable lays out t starting at cur. Every row is checked against the page
// bottom before any of it is drawn; after a break the header is drawn again.
func DrawTable(f *Flow, cur PageCursor, t Table) PageCursor {
	cur, _ = f.Ensure(cur, 2*rowHeight)
	cur = drawHeaderRow(f, cur, t)

	for i, row := range t.Rows {
		var broke bool
		cur, broke = f.Ensure(cur, rowHeight)
		if broke {
			cur = drawHeaderRow(f, cur, t)
		}
		var fill *Color
		if i%2 == 1 {
			stripe := ColorStripeFill
			fill = &stripe
		}
		cur = drawRow(f, cur, t, row, fill, false)
	}

	if t.Totals != nil {
		var broke bool
		cur, broke = f.Ensure(cur, rowHeight)
		if broke {
			cur = drawHeaderRow(f, cur, t)
		}
		totals := ColorTotalsFill
		cur = drawRow(f, cur, t, t.Totals, &totals, true)
	}
	return cur
}

func drawHeaderRow(f *Flow, cur PageCursor, t Table) PageCursor {
	fill := ColorHeaderFill
	f.Draw(cur, RectOp{X: Margin, Y: cur.Y, W: t.width(), H: rowHeight, Fill: &fill})
	x := Margin
	font := Font{Family: FamilySans, Bold: true, Size: headerSize}
	for _, col := range t.Columns {
		border := ColorBorder
		f.Draw(cur,
			RectOp{X: x, Y: cur.Y, W: col.Width, H: rowHeight, Stroke: &border, LineWidth: borderWidth},
			TextOp{
				X: x + cellPadding, Y: cur.Y, W: col.Width - 2*cellPadding, H: rowHeight,
				Text: FitText(col.Title, col.Width-2*cellPadding, font), Font: font, Color: ColorWhite, Align: AlignCenter,
			},
		)
		x += col.Width
	}
	return cur.Advance(rowHeight)
}

func drawRow(f *Flow, cur PageCursor, t Table, cells []Cell, fill *Color, bold bool) PageCursor {
	if fill != nil {
		f.Draw(cur, RectOp{X: Margin, Y: cur.Y, W: t.width(), H: rowHeight, Fill: fill})
	}
	font := Font{Family: FamilySans, Bold: bold, Size: bodySize}
	x := Margin
	col := 0
	for _, cell := range cells {
		if col >= len(t.Columns) {
			break
		}
		span := cell.Span
		if span < 1 {
			span = 1
		}
		if col+span > len(t.Columns) {
			span = len(t.Columns) - col
		}
		width := 0.0
		for _, c := range t.Columns[col : col+span] {
			width += c.Width
		}
		align := t.Columns[col].Align
		if span > 1 {
			align = AlignLeft
		}
		color := ColorText
		if cell.Color != nil {
			color = *cell.Color
		}
		// Amounts are never truncated; they shrink instead.
		text, cellFont := FitText(cell.Text, width-2*cellPadding, font), font
		if align == AlignRight {
			text, cellFont = cell.Text, ShrinkToFit(cell.Text, width-2*cellPadding, font)
		}
		border := ColorBorder
		f.Draw(cur,
			RectOp{X: x, Y: cur.Y, W: width, H: rowHeight, Stroke: &border, LineWidth: borderWidth},
			TextOp{
				X: x + cellPadding, Y: cur.Y, W: width - 2*cellPadding, H: rowHeight,
				Text: text, Font: cellFont, Color: color, Align: align,
			},
		)
		x += width
		col += span
	}
	return cur.Advance(rowHeight)
}

func glyphRatio(font Font) float64 {
	switch {
	case font.Family == FamilyMono:
		return 0.6
	case font.Bold:
		return 0.55
	default:
		return avgGlyphRatio
	}
}

// ShrinkToFit returns font with its size reduced, in half-point steps down to
// minFontSize, until s fits width.
func ShrinkToFit(s string, width float64, font Font) Font {
	n := float64(utf8.RuneCountInString(s))
	for font.Size > minFontSize && n*font.Size*glyphRatio(font) > width {
		font.Size -= 0.5
	}
	if font.Size < minFontSize {
		font.Size = minFontSize
	}
	return font
}

// FitText truncates s with an ellipsis so it fits width at the given font,
// using an average glyph width estimate (monospace fonts are exact).
func FitText(s string, width float64, font Font) string {
	maxRunes := int(width / (font.Size * glyphRatio(font)))
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	r := []rune(s)
	if maxRunes == 1 {
		return ellipsis
	}
	return strings.TrimSpace(string(r[:maxRunes-1])) + ellipsis
}
