package layout

import (
	"fmt"
	"time"
)

// PageCursor is the drawing position: a page index and the next free Y.
// Layout functions take a cursor and return the advanced one.
type PageCursor struct {
	Page int
	Y    float64
}

// Advance moves the cursor down by dy.
func (c PageCursor) Advance(dy float64) PageCursor {
	c.Y += dy
	return c
}

// Flow owns page creation for one document and appends instructions to the
// page a cursor points at.
type Flow struct {
	doc    *Document
	top    float64
	bottom float64
}

// NewFlow starts page flow over doc.
func NewFlow(doc *Document) *Flow {
	return &Flow{doc: doc, top: Margin, bottom: PrintableBottom}
}

// NewPage appends a blank page and returns a cursor at its top margin.
func (f *Flow) NewPage() PageCursor {
	f.doc.Pages = append(f.doc.Pages, &Page{Number: len(f.doc.Pages) + 1})
	return PageCursor{Page: len(f.doc.Pages) - 1, Y: f.top}
}

// Fits reports whether a block of height h fits below the cursor.
func (f *Flow) Fits(cur PageCursor, h float64) bool {
	return cur.Y+h <= f.bottom
}

// Ensure returns cur when a block of height h fits, otherwise a cursor on a
// fresh page. The boolean reports whether a page break happened. Callers must
// call Ensure before emitting any part of the block.
func (f *Flow) Ensure(cur PageCursor, h float64) (PageCursor, bool) {
	if f.Fits(cur, h) {
		return cur, false
	}
	return f.NewPage(), true
}

// Draw appends ops to the cursor's page.
func (f *Flow) Draw(cur PageCursor, ops ...Op) {
	page := f.doc.Pages[cur.Page]
	page.Ops = append(page.Ops, ops...)
}

// FooterFormat is the footer text; the arguments are timestamp, page and page count.
const FooterFormat = "Generado el %s - Página %d de %d"

// StampFooters adds the footer to every page. It runs once, after layout has
// finished, so the page count is final.
func StampFooters(doc *Document, generatedAt time.Time) {
	total := len(doc.Pages)
	stamp := generatedAt.Format("02/01/2006 15:04:05")
	for _, page := range doc.Pages {
		page.Ops = append(page.Ops, TextOp{
			X:     Margin,
			Y:     FooterY - 5,
			W:     ContentWidth,
			H:     10,
			Text:  fmt.Sprintf(FooterFormat, stamp, page.Number, total),
			Font:  Font{Family: FamilySans, Size: 8},
			Color: ColorFooter,
			Align: AlignCenter,
		})
	}
}
