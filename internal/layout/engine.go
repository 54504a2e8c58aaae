package layout

import (
	"fmt"
	"strings"
)

// Placeholder stands in for optional values that are absent.
const Placeholder = "—"

// Engine lays out proposals with one immutable configuration. It is safe for
// concurrent use: every Render gets its own document, paginator and measurer.
type Engine struct {
	cfg         Config
	newMeasurer MeasurerFactory
}

type Option func(*Engine)

// WithMeasurer sets the text metrics used for fitting and wrapping.
func WithMeasurer(f MeasurerFactory) Option {
	return func(e *Engine) {
		e.newMeasurer = f
	}
}

func NewEngine(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg: cfg,
		newMeasurer: func() Measurer {
			return ApproxMeasurer{Ratio: 0.5}
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Render draws the cover, technical and investment pages for rec and then
// stamps the footer on each of them. The record is not validated.
func (e *Engine) Render(rec Record) *Document {
	doc := &Document{
		Meta: Metadata{
			Title:   "Proposta Comercial – " + rec.CustomerName,
			Subject: fmt.Sprintf("Sistema fotovoltaico de %s kWp", FormatQuantity(rec.PowerKWp, 2)),
			Author:  e.cfg.Variant.Copy.CompanyName,
			Creator: e.cfg.Variant.Copy.CompanyName,
			Created: rec.ProposalDate,
		},
	}
	c := &canvas{
		cfg: e.cfg,
		m:   e.newMeasurer(),
		pg:  NewPaginator(doc, e.cfg.Geometry),
	}

	c.coverPage(rec)
	c.technicalPage(rec)
	c.investmentPage(rec)

	// a fresh document cannot already be finalized
	_ = doc.Finalize(c.footer)
	return doc
}

func (c *canvas) footer(page *Page, total int) []Command {
	g, p, cp := c.geo(), c.palette(), c.copy()
	top := g.FooterTop()
	counterW := 60.0

	parts := []string{cp.CompanyName, cp.CompanyAddress, cp.CompanyPhone, cp.CompanyEmail}
	var nonEmpty []string
	for _, part := range parts {
		if part != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	identityFont := c.font(StyleRegular, 8)
	identity := fitLine(c.m, strings.Join(nonEmpty, " | "), identityFont, g.ContentWidth()-counterW)

	return []Command{
		Panel{X: 0, Y: top, W: g.PageWidth, H: g.FooterBand, Fill: p.Primary},
		Panel{X: 0, Y: top, W: g.PageWidth, H: 2, Fill: p.Accent},
		Text{X: g.Margin, Y: top + 2, W: g.ContentWidth() - counterW, H: g.FooterBand - 2, Content: identity, Font: identityFont, Color: p.Inverse, Align: AlignLeft},
		Text{X: g.Margin + g.ContentWidth() - counterW, Y: top + 2, W: counterW, H: g.FooterBand - 2, Content: fmt.Sprintf("%d / %d", page.Number, total), Font: c.font(StyleBold, 9), Color: p.Inverse, Align: AlignRight},
	}
}
