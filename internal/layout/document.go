package layout

import (
	"errors"
	"time"
)

// ErrFinalized is returned when the footer pass runs twice on one document.
var ErrFinalized = errors.New("layout: document already finalized")

// Page collects the commands of one physical page. Content is written while
// the page templates are drawn; Footer is only written by Finalize.
type Page struct {
	Number  int
	Width   float64
	Height  float64
	Content []Command
	Footer  []Command
}

// Commands returns content followed by footer, the order they are painted in.
func (p *Page) Commands() []Command {
	out := make([]Command, 0, len(p.Content)+len(p.Footer))
	out = append(out, p.Content...)
	return append(out, p.Footer...)
}

// Texts returns the text runs of the page in paint order.
func (p *Page) Texts() []string {
	var out []string
	for _, cmd := range p.Commands() {
		if t, ok := cmd.(Text); ok {
			out = append(out, t.Content)
		}
	}
	return out
}

// Metadata ends up in the PDF info dictionary.
type Metadata struct {
	Title   string
	Subject string
	Author  string
	Creator string
	Created time.Time
}

type Document struct {
	Meta      Metadata
	Pages     []*Page
	finalized bool
}

func (d *Document) PageCount() int {
	return len(d.Pages)
}

func (d *Document) Finalized() bool {
	return d.finalized
}

// FooterFunc builds the footer commands of one page once the total page
// count is known.
type FooterFunc func(page *Page, total int) []Command

// Finalize is the second pass: it stamps every page, in order, with the
// commands returned by footer. Page content is left untouched.
func (d *Document) Finalize(footer FooterFunc) error {
	if d.finalized {
		return ErrFinalized
	}
	total := len(d.Pages)
	for _, page := range d.Pages {
		page.Footer = append(page.Footer, footer(page, total)...)
	}
	d.finalized = true
	return nil
}

// Paginator owns page creation and the vertical cursor of the page being
// drawn. It never knows how many pages the document will end up with.
type Paginator struct {
	doc    *Document
	geo    Geometry
	page   *Page
	cursor float64
}

func NewPaginator(doc *Document, geo Geometry) *Paginator {
	return &Paginator{doc: doc, geo: geo}
}

// NewPage appends a page and resets the cursor to startY.
func (p *Paginator) NewPage(startY float64) *Page {
	page := &Page{
		Number: len(p.doc.Pages) + 1,
		Width:  p.geo.PageWidth,
		Height: p.geo.PageHeight,
	}
	p.doc.Pages = append(p.doc.Pages, page)
	p.page = page
	p.cursor = startY
	return page
}

func (p *Paginator) Page() *Page {
	return p.page
}

func (p *Paginator) Cursor() float64 {
	return p.cursor
}

func (p *Paginator) SetCursor(y float64) {
	p.cursor = y
}

func (p *Paginator) Advance(dy float64) float64 {
	p.cursor += dy
	return p.cursor
}

// Draw appends cmds to the current page, opening the first page on demand.
func (p *Paginator) Draw(cmds ...Command) {
	if p.page == nil {
		p.NewPage(p.geo.Margin)
	}
	p.page.Content = append(p.page.Content, cmds...)
}
