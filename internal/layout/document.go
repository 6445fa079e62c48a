// Package layout turns aggregated report data into paginated draw instructions.
// It knows nothing about PDF encoding; internal/render replays the instructions.
package layout

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// A4 portrait in points with fixed 50pt margins.
const (
	PageWidth       = 595.28
	PageHeight      = 841.89
	Margin          = 50.0
	ContentWidth    = PageWidth - 2*Margin
	PrintableBottom = PageHeight - Margin
	FooterY         = PageHeight - 30
)

// Color is an RGB triple.
type Color struct {
	R, G, B uint8
}

// Hex parses "#rrggbb". It panics on malformed input and is meant for constants.
func Hex(s string) Color {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		panic(fmt.Sprintf("layout: bad colour %q", s))
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		panic(fmt.Sprintf("layout: bad colour %q: %v", s, err))
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

// Palette.
var (
	ColorText        = Hex("#2c3e50")
	ColorSubtle      = Hex("#34495e")
	ColorFooter      = Hex("#7f8c8d")
	ColorRule        = Hex("#bdc3c7")
	ColorBorder      = Hex("#000000")
	ColorWhite       = Hex("#ffffff")
	ColorHeaderFill  = Hex("#2c3e50")
	ColorStripeFill  = Hex("#ecf0f1")
	ColorTotalsFill  = Hex("#bdc3c7")
	ColorWarning     = Hex("#e67e22")
	ColorInformation = Hex("#2980b9")
	ColorSpend       = Hex("#e74c3c")
	ColorAvailable   = Hex("#27ae60")
)

// Font families understood by the renderer.
const (
	FamilySans = "Helvetica"
	FamilyMono = "Courier"
)

// Font selects family, weight and size.
type Font struct {
	Family string
	Bold   bool
	Size   float64
}

// Align is horizontal text alignment inside a box.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Op is a single draw instruction.
type Op interface {
	op()
}

// TextOp draws a single line of text vertically centred in the box (X, Y, W, H).
type TextOp struct {
	X, Y, W, H float64
	Text       string
	Font       Font
	Color      Color
	Align      Align
}

// RectOp fills and/or strokes a rectangle.
type RectOp struct {
	X, Y, W, H float64
	Fill       *Color
	Stroke     *Color
	LineWidth  float64
}

// LineOp strokes a straight line.
type LineOp struct {
	X1, Y1, X2, Y2 float64
	Color          Color
	Width          float64
}

// WedgeOp fills a pie slice centred at (CX, CY). Angles are degrees,
// counter-clockwise from three o'clock.
type WedgeOp struct {
	CX, CY, R  float64
	Start, End float64
	Fill       Color
}

func (TextOp) op()  {}
func (RectOp) op()  {}
func (LineOp) op()  {}
func (WedgeOp) op() {}

// Page is one finished page of instructions.
type Page struct {
	Number int
	Ops    []Op
}

// Texts returns the text of every TextOp on the page in drawing order.
func (p *Page) Texts() []string {
	var out []string
	for _, op := range p.Ops {
		if t, ok := op.(TextOp); ok {
			out = append(out, t.Text)
		}
	}
	return out
}

// Meta is copied into the PDF info dictionary.
type Meta struct {
	Title     string
	Author    string
	Subject   string
	ReportID  string
	CreatedAt time.Time
}

// Document is the in-memory report: every page fully laid out before rendering.
type Document struct {
	Meta  Meta
	Pages []*Page
}

// Texts returns every text run in page order.
func (d *Document) Texts() []string {
	var out []string
	for _, p := range d.Pages {
		out = append(out, p.Texts()...)
	}
	return out
}
