package layout

import "strings"

const (
	sectionHeaderHeight = 28
	cardGap             = 12
	cardPadding         = 12
	timelineRadius      = 16
)

// Equipment table column shares: item, model, quantity.
var tableColumns = [3]float64{0.32, 0.53, 0.15}

// canvas is the drawing state of one render call.
type canvas struct {
	cfg Config
	m   Measurer
	pg  *Paginator
}

func (c *canvas) geo() Geometry    { return c.cfg.Geometry }
func (c *canvas) palette() Palette { return c.cfg.Variant.Palette }
func (c *canvas) copy() Copy       { return c.cfg.Variant.Copy }

func (c *canvas) font(style string, size float64) Font {
	return Font{Family: c.cfg.FontFamily, Style: style, Size: size}
}

func (c *canvas) drawPanel(x, y, w, h, radius float64, fill Color) {
	c.pg.Draw(Panel{X: x, Y: y, W: w, H: h, Radius: radius, Fill: fill})
}

// text draws one line fitted to w.
func (c *canvas) text(x, y, w, h float64, s string, font Font, color Color, align Align) {
	s = fitLine(c.m, s, font, w)
	if s == "" {
		return
	}
	c.pg.Draw(Text{X: x, Y: y, W: w, H: h, Content: s, Font: font, Color: color, Align: align})
}

// paragraph wraps s into at most maxLines lines of lineHeight and returns
// the y below the last line. Justified paragraphs place each word on its own;
// the last line stays left aligned.
func (c *canvas) paragraph(x, y, w float64, s string, font Font, color Color, lineHeight float64, maxLines int, align Align) float64 {
	lines := wrap(c.m, s, font, w)
	clipped := false
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
		clipped = true
	}
	for i, line := range lines {
		lineAlign := align
		if i == len(lines)-1 {
			lineAlign = lastLineAlign(align)
			if clipped {
				line = wrapLine{words: []string{truncate(c.m, line.text(), font, w)}}
			}
		}
		c.paragraphLine(x, y+float64(i)*lineHeight, w, line, font, color, lineHeight, lineAlign)
	}
	return y + float64(len(lines))*lineHeight
}

func lastLineAlign(a Align) Align {
	if a == AlignJustify {
		return AlignLeft
	}
	return a
}

func (c *canvas) paragraphLine(x, y, w float64, line wrapLine, font Font, color Color, h float64, align Align) {
	if align != AlignJustify || len(line.words) < 2 {
		if align == AlignJustify {
			align = AlignLeft
		}
		c.pg.Draw(Text{X: x, Y: y, W: w, H: h, Content: line.text(), Font: font, Color: color, Align: align})
		return
	}
	var wordsWidth float64
	widths := make([]float64, len(line.words))
	for i, word := range line.words {
		widths[i] = c.m.StringWidth(word, font)
		wordsWidth += widths[i]
	}
	gap := (w - wordsWidth) / float64(len(line.words)-1)
	cx := x
	for i, word := range line.words {
		c.pg.Draw(Text{X: cx, Y: y, W: widths[i], H: h, Content: word, Font: font, Color: color, Align: AlignLeft})
		cx += widths[i] + gap
	}
}

// drawSectionHeader paints an accent bar and a bold title at y and returns
// the y reserved for the block below it.
func (c *canvas) drawSectionHeader(title string, y float64) float64 {
	g, p := c.geo(), c.palette()
	c.drawPanel(g.Margin, y+1, 4, 18, 0, p.Accent)
	c.text(g.Margin+12, y, g.ContentWidth()-12, 20, strings.ToUpper(title), c.font(StyleBold, 13), p.Primary, AlignLeft)
	c.pg.Draw(Line{X1: g.Margin, Y1: y + 22, X2: g.Margin + g.ContentWidth(), Y2: y + 22, Width: 0.5, Color: p.Border})
	return y + sectionHeaderHeight
}

func infoCardHeight(subtitle string) float64 {
	if subtitle == "" {
		return 62
	}
	return 78
}

// drawInfoCard draws a titled metric card and returns its bottom plus the
// card gap.
func (c *canvas) drawInfoCard(x, y, w float64, title, value, subtitle string) float64 {
	return c.card(x, y, w, title, value, subtitle, 16)
}

// drawDetailCard is an info card with a smaller value, for free-text labels.
func (c *canvas) drawDetailCard(x, y, w float64, title, value, subtitle string) float64 {
	return c.card(x, y, w, title, value, subtitle, 11)
}

func (c *canvas) card(x, y, w float64, title, value, subtitle string, valueSize float64) float64 {
	p := c.palette()
	h := infoCardHeight(subtitle)
	inner := w - 2*cardPadding
	c.drawPanel(x, y, w, h, c.geo().CardRadius, p.Surface)
	c.drawPanel(x, y+cardPadding, 3, h-2*cardPadding, 0, p.Accent)
	c.text(x+cardPadding, y+10, inner, 12, strings.ToUpper(title), c.font(StyleBold, 8), p.Muted, AlignLeft)
	c.text(x+cardPadding, y+26, inner, 22, value, c.font(StyleBold, valueSize), p.Primary, AlignLeft)
	if subtitle != "" {
		c.text(x+cardPadding, y+52, inner, 14, subtitle, c.font(StyleRegular, 9), p.Muted, AlignLeft)
	}
	return y + h + cardGap
}

// cardColumns splits the content width into n cards separated by gap.
func (c *canvas) cardColumns(n int, gap float64) (xs []float64, w float64) {
	g := c.geo()
	w = (g.ContentWidth() - gap*float64(n-1)) / float64(n)
	for i := 0; i < n; i++ {
		xs = append(xs, g.Margin+float64(i)*(w+gap))
	}
	return xs, w
}

func (c *canvas) columnBoxes(x, w float64) (xs, ws [3]float64) {
	cx := x
	for i, share := range tableColumns {
		xs[i] = cx
		ws[i] = w * share
		cx += ws[i]
	}
	return xs, ws
}

func (c *canvas) drawTableHeader(x, y, w float64, cells [3]string) float64 {
	g, p := c.geo(), c.palette()
	c.drawPanel(x, y, w, g.RowHeight, 0, p.Primary)
	c.tableCells(x, y, w, cells, c.font(StyleBold, 9), p.Inverse)
	return y + g.RowHeight
}

// drawTableRow draws one equipment row; shaded rows get the surface fill.
func (c *canvas) drawTableRow(x, y, w float64, cells [3]string, shaded bool) float64 {
	g, p := c.geo(), c.palette()
	if shaded {
		c.drawPanel(x, y, w, g.RowHeight, 0, p.Surface)
	}
	c.tableCells(x, y, w, cells, c.font(StyleRegular, 10), p.Text)
	c.pg.Draw(Line{X1: x, Y1: y + g.RowHeight, X2: x + w, Y2: y + g.RowHeight, Width: 0.5, Color: p.Border})
	return y + g.RowHeight
}

func (c *canvas) tableCells(x, y, w float64, cells [3]string, font Font, color Color) {
	xs, ws := c.columnBoxes(x, w)
	const pad = 8
	for i, cell := range cells {
		align := AlignLeft
		if i == len(cells)-1 {
			align = AlignCenter
		}
		c.text(xs[i]+pad, y, ws[i]-2*pad, c.geo().RowHeight, cell, font, color, align)
	}
}

// drawTimelineStep draws one schedule step in a box of width w: the label
// inside a circle, a connector towards the next step unless last, then the
// title and the wrapped description. It returns the bottom of the step.
func (c *canvas) drawTimelineStep(x, y, w float64, step TimelineStep, last bool) float64 {
	p := c.palette()
	cx, cy := x+w/2, y+timelineRadius
	if !last {
		c.pg.Draw(Line{X1: cx + timelineRadius, Y1: cy, X2: cx + w - timelineRadius, Y2: cy, Width: 1.5, Color: p.Accent})
	}
	c.pg.Draw(Circle{X: cx, Y: cy, R: timelineRadius, Fill: p.Primary})
	c.text(cx-timelineRadius, cy-6, 2*timelineRadius, 12, step.Label, c.font(StyleBold, 8), p.Inverse, AlignCenter)

	inner := w - 6
	c.text(x+3, y+2*timelineRadius+6, inner, 12, step.Title, c.font(StyleBold, 9), p.Primary, AlignCenter)
	return c.paragraph(x+3, y+2*timelineRadius+20, inner, step.Description, c.font(StyleRegular, 7.5), p.Muted, 10, 4, AlignCenter)
}

// drawBullets draws a bulleted list and returns the y below it.
func (c *canvas) drawBullets(x, y, w float64, items []string, lineHeight float64) float64 {
	p := c.palette()
	for _, item := range items {
		c.pg.Draw(Circle{X: x + 6, Y: y + lineHeight/2, R: 2.5, Fill: p.Accent})
		c.text(x+16, y, w-16, lineHeight, item, c.font(StyleRegular, 10), p.Text, AlignLeft)
		y += lineHeight
	}
	return y
}
