package layout

import (
	"strconv"

	"github.com/odyssey-erp/tesoreria/internal/aggregate"
	"github.com/odyssey-erp/tesoreria/internal/records"
)

const (
	titleSize   = 16.0
	sectionSize = 12.0
	labelSize   = 10.0
	summarySize = 11.0
	lineGap     = 6.0
	labelWidth  = 120.0
	indent      = 20.0
)

// Executive summary labels.
const (
	LabelReceived  = "VALORES RECIBIDOS (+): "
	LabelDelivered = "VALORES ENTREGADOS (-): "
	LabelBalance   = "SALDO TOTAL (=): "
	LabelGrandTot  = "TOTAL GENERAL"
)

// Section titles.
const (
	TitleSummary     = "RESUMEN EJECUTIVO"
	TitleLedger      = "ESTADO DE CUENTA DE ESTUDIANTES"
	TitleCollections = "DETALLE DE REGISTROS"
	TitlePayments    = "REGISTRO DE PAGOS"
	TitleSpend       = "ANÁLISIS DE GASTOS"
	TitleNotes       = "OBSERVACIONES DE DATOS"
)

func textLine(f *Flow, cur PageCursor, x, w float64, text string, font Font, color Color, align Align) PageCursor {
	h := font.Size + lineGap
	cur, _ = f.Ensure(cur, h)
	f.Draw(cur, TextOp{X: x, Y: cur.Y, W: w, H: h, Text: FitText(text, w, font), Font: font, Color: color, Align: align})
	return cur.Advance(h)
}

func sectionTitle(f *Flow, cur PageCursor, title string) PageCursor {
	cur = textLine(f, cur, Margin, ContentWidth, title, Font{Family: FamilySans, Bold: true, Size: sectionSize}, ColorText, AlignLeft)
	return cur.Advance(lineGap)
}

func rule(f *Flow, cur PageCursor) PageCursor {
	cur, _ = f.Ensure(cur, 2*lineGap)
	y := cur.Y + lineGap
	f.Draw(cur, LineOp{X1: Margin, Y1: y, X2: PageWidth - Margin, Y2: y, Color: ColorRule, Width: 1})
	return cur.Advance(2 * lineGap)
}

func drawHeader(f *Flow, cur PageCursor, title, treasurer, date string) PageCursor {
	cur = textLine(f, cur, Margin, ContentWidth, title, Font{Family: FamilySans, Bold: true, Size: titleSize}, ColorText, AlignCenter)
	cur = cur.Advance(lineGap)

	bold := Font{Family: FamilySans, Bold: true, Size: labelSize}
	plain := Font{Family: FamilySans, Size: labelSize}
	for _, pair := range [][2]string{{"TESORERO:", treasurer}, {"FECHA DEL INFORME:", date}} {
		h := labelSize + lineGap
		cur, _ = f.Ensure(cur, h)
		f.Draw(cur,
			TextOp{X: Margin, Y: cur.Y, W: labelWidth, H: h, Text: pair[0], Font: bold, Color: ColorSubtle},
			TextOp{X: Margin + labelWidth, Y: cur.Y, W: ContentWidth - labelWidth, H: h, Text: FitText(pair[1], ContentWidth-labelWidth, plain), Font: plain, Color: ColorSubtle},
		)
		cur = cur.Advance(h)
	}
	return cur.Advance(2 * lineGap)
}

func drawSummary(f *Flow, cur PageCursor, totals records.SummaryTotals) PageCursor {
	cur = sectionTitle(f, cur, TitleSummary)
	plain := Font{Family: FamilySans, Size: summarySize}
	bold := Font{Family: FamilySans, Bold: true, Size: summarySize}
	x, w := Margin+indent, ContentWidth-indent
	cur = textLine(f, cur, x, w, LabelReceived+records.FormatAmount(totals.Received), plain, ColorText, AlignLeft)
	cur = textLine(f, cur, x, w, LabelDelivered+records.FormatAmount(totals.Delivered), plain, ColorText, AlignLeft)
	cur = textLine(f, cur, x, w, LabelBalance+records.FormatAmount(totals.Balance), bold, ColorText, AlignLeft)
	return rule(f, cur)
}

// StatusColor is the text colour of a ledger status cell.
func StatusColor(s records.Status) *Color {
	switch s {
	case records.StatusPending:
		c := ColorWarning
		return &c
	case records.StatusReview:
		c := ColorInformation
		return &c
	default:
		return nil
	}
}

// LedgerTable builds the student ledger grid: alphabetical rows, totals last.
func LedgerTable(rows []records.StudentRow) Table {
	sorted := aggregate.SortLedgerByName(rows)
	totals := aggregate.LedgerTotals(sorted)
	t := Table{
		Columns: []Column{
			{Title: "N°", Width: 30, Align: AlignCenter},
			{Title: "Estudiante", Width: 165, Align: AlignLeft},
			{Title: "Cuotas", Width: 75, Align: AlignRight},
			{Title: "Pagado", Width: 75, Align: AlignRight},
			{Title: "Saldo", Width: 75, Align: AlignRight},
			{Title: "Estado", Width: ContentWidth - 420, Align: AlignCenter},
		},
		Rows: make([][]Cell, 0, len(sorted)),
		Totals: []Cell{
			{Text: LabelGrandTot, Span: 2},
			{Text: records.FormatAmount(totals.Dues)},
			{Text: records.FormatAmount(totals.Paid)},
			{Text: records.FormatAmount(totals.Balance)},
			{Text: ""},
		},
	}
	for i, row := range sorted {
		t.Rows = append(t.Rows, []Cell{
			{Text: strconv.Itoa(i + 1)},
			{Text: row.Name},
			{Text: records.FormatAmount(row.DuesTotal)},
			{Text: records.FormatAmount(row.PaidTotal)},
			{Text: records.FormatAmount(row.Balance)},
			{Text: row.StatusRaw, Color: StatusColor(row.Status)},
		})
	}
	return t
}

// CollectionTable builds the collection log grid with a totals row.
func CollectionTable(rows []records.TransactionRow) Table {
	return transactionTable([]Column{
		{Title: "Fecha", Width: 80, Align: AlignCenter},
		{Title: "Estudiante", Width: 165, Align: AlignLeft},
		{Title: "Banco", Width: 120, Align: AlignLeft},
		{Title: "Valor", Width: ContentWidth - 365, Align: AlignRight},
	}, rows)
}

// PaymentTable builds the payment log grid with a totals row.
func PaymentTable(rows []records.TransactionRow) Table {
	return transactionTable([]Column{
		{Title: "Fecha", Width: 80, Align: AlignCenter},
		{Title: "Descripción", Width: 195, Align: AlignLeft},
		{Title: "Referencia", Width: 100, Align: AlignLeft},
		{Title: "Monto", Width: ContentWidth - 375, Align: AlignRight},
	}, rows)
}

func transactionTable(cols []Column, rows []records.TransactionRow) Table {
	t := Table{
		Columns: cols,
		Rows:    make([][]Cell, 0, len(rows)),
		Totals: []Cell{
			{Text: LabelGrandTot, Span: 3},
			{Text: records.FormatAmount(aggregate.TransactionTotals(rows))},
		},
	}
	for _, row := range rows {
		t.Rows = append(t.Rows, []Cell{
			{Text: row.Date.String()},
			{Text: row.Counterpart},
			{Text: row.Reference},
			{Text: records.FormatAmount(row.Amount)},
		})
	}
	return t
}

func drawNotes(f *Flow, cur PageCursor, notes []string) PageCursor {
	cur = sectionTitle(f, cur, TitleNotes)
	font := Font{Family: FamilySans, Size: bodySize}
	for _, note := range notes {
		cur = textLine(f, cur, Margin+indent, ContentWidth-indent, "• "+note, font, ColorSubtle, AlignLeft)
	}
	return cur
}
