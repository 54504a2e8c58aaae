package layout

import (
	"fmt"
	"strings"
)

const (
	bannerHeight = 190
	logoSize     = 64
	clientRowH   = 22
)

func (c *canvas) powerLabel(rec Record) string {
	return FormatQuantity(rec.PowerKWp, 2) + " kWp"
}

func (c *canvas) generationLabel(rec Record) string {
	return FormatQuantity(rec.MonthlyGenerationKWh, 0) + " kWh/mês"
}

func (c *canvas) areaLabel(rec Record) string {
	if rec.UsableAreaM2 == nil {
		return Placeholder
	}
	return FormatQuantity(*rec.UsableAreaM2, 1) + " m²"
}

func validityLabel(days int) string {
	return Plural(days, "dia corrido", "dias corridos")
}

// coverPage: banner, client identity, system summary and company profile.
func (c *canvas) coverPage(rec Record) {
	g, p, cp := c.geo(), c.palette(), c.copy()
	c.pg.NewPage(0)

	c.drawPanel(0, 0, g.PageWidth, bannerHeight, 0, p.Primary)
	c.drawPanel(0, bannerHeight, g.PageWidth, 6, 0, p.Accent)

	if c.cfg.LogoPath != "" {
		c.pg.Draw(Image{X: g.Margin, Y: 40, W: logoSize, H: logoSize, Path: c.cfg.LogoPath})
	} else {
		r := float64(logoSize) / 2
		c.pg.Draw(Circle{X: g.Margin + r, Y: 40 + r, R: r, Fill: p.Accent})
		c.text(g.Margin, 40+r-14, logoSize, 28, Initials(cp.CompanyName), c.font(StyleBold, 22), p.Inverse, AlignCenter)
	}
	textX := g.Margin + logoSize + 16
	textW := g.ContentWidth() - logoSize - 16
	c.text(textX, 48, textW, 24, cp.CompanyName, c.font(StyleBold, 20), p.Inverse, AlignLeft)
	c.text(textX, 74, textW, 16, cp.Tagline, c.font(StyleRegular, 10), p.Inverse, AlignLeft)

	c.text(g.Margin, 122, g.ContentWidth(), 30, cp.Title, c.font(StyleBold, 26), p.Inverse, AlignLeft)
	c.text(g.Margin, 154, g.ContentWidth(), 18, "Sistema fotovoltaico on-grid de "+c.powerLabel(rec), c.font(StyleRegular, 12), p.Inverse, AlignLeft)

	y := c.drawSectionHeader("Dados do Cliente", bannerHeight+30)

	type row struct{ label, value string }
	rows := []row{{"Cliente", rec.CustomerName}}
	if rec.CityState != "" {
		rows = append(rows, row{"Localização", rec.CityState})
	}
	rows = append(rows,
		row{"Data da Proposta", FormatLongDate(rec.ProposalDate)},
		row{"Validade", validityLabel(rec.ValidityDays)},
	)
	cardH := 2*cardPadding + float64(len(rows))*clientRowH
	c.drawPanel(g.Margin, y, g.ContentWidth(), cardH, g.CardRadius, p.Surface)
	for i, r := range rows {
		ry := y + cardPadding + float64(i)*clientRowH
		c.text(g.Margin+16, ry, 130, clientRowH, r.label, c.font(StyleBold, 10), p.Muted, AlignLeft)
		c.text(g.Margin+150, ry, g.ContentWidth()-166, clientRowH, r.value, c.font(StyleRegular, 11), p.Text, AlignLeft)
	}
	y += cardH + g.SectionGap

	y = c.drawSectionHeader("Resumo do Sistema", y)
	xs, w := c.cardColumns(3, cardGap)
	c.drawInfoCard(xs[0], y, w, "Potência", c.powerLabel(rec), "potência de pico")
	c.drawInfoCard(xs[1], y, w, "Geração Estimada", c.generationLabel(rec), "média mensal")
	y = c.drawInfoCard(xs[2], y, w, "Investimento", FormatBRL(rec.TotalPrice), "à vista")
	y += g.SectionGap - cardGap

	y = c.drawSectionHeader("Sobre Nós", y)
	c.paragraph(g.Margin, y, g.ContentWidth(), cp.About, c.font(StyleRegular, 10), p.Text, 14, 8, AlignJustify)
}

// technicalPage: dimensioning cards, equipment table, warranties and the
// execution schedule.
func (c *canvas) technicalPage(rec Record) {
	g, p, cp := c.geo(), c.palette(), c.copy()
	c.pg.NewPage(g.Margin)

	y := c.drawSectionHeader("Dimensionamento do Sistema", c.pg.Cursor())
	xs, w := c.cardColumns(3, cardGap)
	c.drawInfoCard(xs[0], y, w, "Potência Proposta", c.powerLabel(rec), "potência de pico")
	c.drawInfoCard(xs[1], y, w, "Geração Estimada", c.generationLabel(rec), "média mensal")
	y = c.drawInfoCard(xs[2], y, w, "Área Útil", c.areaLabel(rec), "área de instalação")
	y += g.SectionGap - cardGap

	y = c.drawSectionHeader("Equipamentos Principais", y)
	y = c.drawTableHeader(g.Margin, y, g.ContentWidth(), [3]string{"ITEM", "MODELO", "QTD"})
	rows := [][3]string{
		{"Módulos Fotovoltaicos", rec.ModuleModel, fmt.Sprint(rec.ModuleQuantity)},
		{"Inversor(es)", rec.InverterModel, fmt.Sprint(rec.InverterQuantity)},
	}
	if other := strings.TrimSpace(rec.OtherItems); other != "" {
		rows = append(rows, [3]string{"Outros Itens", strings.Join(strings.Fields(other), " "), Placeholder})
	}
	for i, cells := range rows {
		y = c.drawTableRow(g.Margin, y, g.ContentWidth(), cells, i%2 == 1)
	}
	y += g.SectionGap

	y = c.drawSectionHeader("Garantias Incluídas", y)
	c.drawDetailCard(xs[0], y, w, "Nossos Serviços", rec.WarrantyServices, "")
	c.drawDetailCard(xs[2], y, w, "Inversores", rec.WarrantyInverter, "")
	y = c.drawDetailCard(xs[1], y, w, "Módulos Fotovoltaicos", rec.WarrantyModuleEquipment, rec.WarrantyModulePerformance)
	c.text(g.Margin, y-4, g.ContentWidth(), 14, cp.ManufacturerNote, c.font(StyleItalic, 8), p.Muted, AlignCenter)
	y += 10 + g.SectionGap

	y = c.drawSectionHeader("Cronograma de Execução", y)
	steps := cp.Timeline
	if len(steps) == 0 {
		return
	}
	stepW := g.ContentWidth() / float64(len(steps))
	for i, step := range steps {
		c.drawTimelineStep(g.Margin+float64(i)*stepW, y, stepW, step, i == len(steps)-1)
	}
}

// investmentPage: price, inclusions, financing, validity and acceptance.
func (c *canvas) investmentPage(rec Record) {
	g, p, cp := c.geo(), c.palette(), c.copy()
	c.pg.NewPage(g.Margin)

	y := c.drawSectionHeader("Investimento", c.pg.Cursor())
	const panelH = 110
	c.drawPanel(g.Margin, y, g.ContentWidth(), panelH, g.PanelRadius, p.Primary)
	inner := g.ContentWidth() - 48
	c.text(g.Margin+24, y+16, inner, 14, "VALOR TOTAL À VISTA", c.font(StyleBold, 10), p.Accent, AlignLeft)
	c.text(g.Margin+24, y+34, inner, 36, FormatBRL(rec.TotalPrice), c.font(StyleBold, 28), p.Inverse, AlignLeft)
	summary := fmt.Sprintf("Sistema de %s • %s • %s",
		c.powerLabel(rec),
		Plural(rec.ModuleQuantity, "módulo", "módulos"),
		Plural(rec.InverterQuantity, "inversor", "inversores"),
	)
	c.text(g.Margin+24, y+78, inner, 16, summary, c.font(StyleRegular, 10), p.Inverse, AlignLeft)
	y += panelH + g.SectionGap

	y = c.drawSectionHeader("O que está incluso", y)
	y = c.drawBullets(g.Margin, y, g.ContentWidth(), cp.Inclusions, 16)
	y += g.SectionGap - 4

	y = c.drawSectionHeader("Financiamento", y)
	y = c.paragraph(g.Margin, y, g.ContentWidth(), cp.Financing, c.font(StyleRegular, 10), p.Text, 14, 4, AlignJustify)
	y += g.SectionGap

	y = c.drawSectionHeader("Validade da Proposta", y)
	const validityH = 64
	c.drawPanel(g.Margin, y, g.ContentWidth(), validityH, g.CardRadius, p.Surface)
	validity := cp.ValidityText
	if strings.Contains(validity, "%s") {
		validity = fmt.Sprintf(validity, validityLabel(rec.ValidityDays))
	}
	c.paragraph(g.Margin+16, y+8, g.ContentWidth()-32, validity, c.font(StyleRegular, 10), p.Text, 13, 2, AlignLeft)
	c.text(g.Margin+16, y+38, g.ContentWidth()-32, 16, "Válida até "+FormatLongDate(rec.ValidUntil()), c.font(StyleBold, 10), p.Primary, AlignLeft)
	y += validityH + g.SectionGap

	y = c.drawSectionHeader("Aceite da Proposta", y)
	c.text(g.Margin, y+4, g.ContentWidth(), 16, "Local e data: ________________________________________", c.font(StyleRegular, 10), p.Text, AlignLeft)
	lineY := y + 70
	colW := (g.ContentWidth() - 40) / 2
	signers := [2][2]string{
		{"CONTRATANTE", rec.CustomerName},
		{"CONTRATADA", cp.CompanyName},
	}
	for i, s := range signers {
		x := g.Margin + float64(i)*(colW+40)
		c.pg.Draw(Line{X1: x, Y1: lineY, X2: x + colW, Y2: lineY, Width: 0.8, Color: p.Text})
		c.text(x, lineY+6, colW, 14, s[0], c.font(StyleBold, 9), p.Muted, AlignCenter)
		c.text(x, lineY+20, colW, 14, s[1], c.font(StyleRegular, 10), p.Text, AlignCenter)
	}
}
