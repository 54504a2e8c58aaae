package render

import (
	"solar-proposal-backend/internal/layout"

	"github.com/jung-kurt/gofpdf"
)

// Measurer uses the core font metrics of gofpdf, so fitted text matches what
// the sink paints. It is not safe for concurrent use.
type Measurer struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func NewMeasurer() layout.Measurer {
	pdf := gofpdf.New("P", "pt", "A4", "")
	return &Measurer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (m *Measurer) StringWidth(s string, font layout.Font) float64 {
	m.pdf.SetFont(fontFamily(font), font.Style, font.Size)
	return m.pdf.GetStringWidth(m.tr(s))
}
