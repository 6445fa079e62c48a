// Package render replays layout documents onto a PDF canvas.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/odyssey-erp/tesoreria/internal/layout"
)

const (
	creator    = "tesoreria"
	arcStepDeg = 5.0
)

// ErrEmptyDocument is returned when a document has no pages.
var ErrEmptyDocument = errors.New("render: document has no pages")

// substitutes maps runes outside Windows-1252 to a printable stand-in.
var substitutes = map[rune]byte{
	'\u2588': '#', // full block
	'\u258c': '#',
	'\u2713': 'x',
	'\u202f': ' ',
}

// PDFRenderer writes A4 PDFs using the core Helvetica and Courier fonts.
type PDFRenderer struct {
	compress bool
}

// NewPDFRenderer constructs a renderer with stream compression enabled.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{compress: true}
}

// Render draws every page of doc and writes the finished PDF to w.
func (r *PDFRenderer) Render(doc *layout.Document, w io.Writer) error {
	if doc == nil || len(doc.Pages) == 0 {
		return ErrEmptyDocument
	}

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetCompression(r.compress)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	pdf.SetTitle(doc.Meta.Title, true)
	pdf.SetAuthor(doc.Meta.Author, true)
	pdf.SetSubject(doc.Meta.Subject, true)
	pdf.SetKeywords(doc.Meta.ReportID, true)
	pdf.SetCreator(creator, false)
	if !doc.Meta.CreatedAt.IsZero() {
		pdf.SetCreationDate(doc.Meta.CreatedAt)
		pdf.SetModificationDate(doc.Meta.CreatedAt)
	}

	for _, page := range doc.Pages {
		pdf.AddPage()
		for _, op := range page.Ops {
			draw(pdf, op)
		}
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("render page %d: %w", page.Number, err)
		}
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func draw(pdf *fpdf.Fpdf, op layout.Op) {
	switch o := op.(type) {
	case layout.TextOp:
		drawText(pdf, o)
	case layout.RectOp:
		drawRect(pdf, o)
	case layout.LineOp:
		pdf.SetDrawColor(rgb(o.Color))
		pdf.SetLineWidth(o.Width)
		pdf.Line(o.X1, o.Y1, o.X2, o.Y2)
	case layout.WedgeOp:
		pdf.SetFillColor(rgb(o.Fill))
		pdf.Polygon(wedgePoints(o), "F")
	}
}

func drawText(pdf *fpdf.Fpdf, o layout.TextOp) {
	style := ""
	if o.Font.Bold {
		style = "B"
	}
	pdf.SetFont(o.Font.Family, style, o.Font.Size)
	pdf.SetTextColor(rgb(o.Color))
	pdf.SetXY(o.X, o.Y)
	pdf.CellFormat(o.W, o.H, EncodeText(o.Text), "", 0, alignment(o.Align), false, 0, "")
}

func drawRect(pdf *fpdf.Fpdf, o layout.RectOp) {
	var style string
	if o.Fill != nil {
		pdf.SetFillColor(rgb(*o.Fill))
		style += "F"
	}
	if o.Stroke != nil {
		pdf.SetDrawColor(rgb(*o.Stroke))
		pdf.SetLineWidth(o.LineWidth)
		style += "D"
	}
	if style == "" {
		return
	}
	pdf.Rect(o.X, o.Y, o.W, o.H, style)
}

func alignment(a layout.Align) string {
	switch a {
	case layout.AlignCenter:
		return "CM"
	case layout.AlignRight:
		return "RM"
	default:
		return "LM"
	}
}

func rgb(c layout.Color) (int, int, int) {
	return int(c.R), int(c.G), int(c.B)
}

// wedgePoints approximates a pie slice as a polygon. Angles run
// counter-clockwise from three o'clock; page Y grows downwards.
func wedgePoints(o layout.WedgeOp) []fpdf.PointType {
	sweep := o.End - o.Start
	steps := int(math.Ceil(math.Abs(sweep) / arcStepDeg))
	if steps < 1 {
		steps = 1
	}
	points := make([]fpdf.PointType, 0, steps+2)
	points = append(points, fpdf.PointType{X: o.CX, Y: o.CY})
	for i := 0; i <= steps; i++ {
		rad := (o.Start + sweep*float64(i)/float64(steps)) * math.Pi / 180
		points = append(points, fpdf.PointType{
			X: o.CX + o.R*math.Cos(rad),
			Y: o.CY - o.R*math.Sin(rad),
		})
	}
	return points
}

// EncodeText converts UTF-8 to the Windows-1252 bytes the core fonts expect.
// Runes outside the code page become a substitute or '?'.
func EncodeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x80 {
			b.WriteRune(r)
			continue
		}
		if c, ok := charmap.Windows1252.EncodeRune(r); ok {
			b.WriteByte(c)
			continue
		}
		if c, ok := substitutes[r]; ok {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('?')
	}
	return b.String()
}
