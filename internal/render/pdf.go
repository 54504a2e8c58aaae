package render

import (
	"strings"

	"solar-proposal-backend/internal/layout"

	"github.com/jung-kurt/gofpdf"
)

// newPDF returns a point-based document with no automatic layout: every
// position comes from the draw commands.
func newPDF(first *layout.Page) *gofpdf.Fpdf {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: first.Width, Ht: first.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetCellMargin(0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(true)
	// fonts and images are otherwise written in map order
	pdf.SetCatalogSort(true)
	return pdf
}

func fontFamily(f layout.Font) string {
	if f.Family == "" {
		return "Helvetica"
	}
	return f.Family
}

func alignStr(a layout.Align) string {
	switch a {
	case layout.AlignCenter:
		return "CM"
	case layout.AlignRight:
		return "RM"
	default:
		return "LM"
	}
}

// painter replays commands onto one gofpdf document.
type painter struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func newPainter(pdf *gofpdf.Fpdf) *painter {
	return &painter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (p *painter) draw(cmd layout.Command) {
	pdf := p.pdf
	switch c := cmd.(type) {
	case layout.Panel:
		pdf.SetFillColor(int(c.Fill.R), int(c.Fill.G), int(c.Fill.B))
		if c.Radius > 0 {
			pdf.RoundedRect(c.X, c.Y, c.W, c.H, c.Radius, "1234", "F")
		} else {
			pdf.Rect(c.X, c.Y, c.W, c.H, "F")
		}
	case layout.Text:
		pdf.SetFont(fontFamily(c.Font), c.Font.Style, c.Font.Size)
		pdf.SetTextColor(int(c.Color.R), int(c.Color.G), int(c.Color.B))
		pdf.SetXY(c.X, c.Y)
		pdf.CellFormat(c.W, c.H, p.tr(c.Content), "", 0, alignStr(c.Align), false, 0, "")
	case layout.Line:
		pdf.SetDrawColor(int(c.Color.R), int(c.Color.G), int(c.Color.B))
		pdf.SetLineWidth(c.Width)
		pdf.Line(c.X1, c.Y1, c.X2, c.Y2)
	case layout.Circle:
		pdf.SetFillColor(int(c.Fill.R), int(c.Fill.G), int(c.Fill.B))
		pdf.Circle(c.X, c.Y, c.R, "F")
	case layout.Image:
		pdf.ImageOptions(c.Path, c.X, c.Y, c.W, c.H, false, gofpdf.ImageOptions{
			ImageType: imageType(c.Path),
		}, 0, "")
	}
}

func imageType(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return ""
	}
	ext := strings.ToLower(path[i+1:])
	if ext == "jpeg" {
		return "jpg"
	}
	return ext
}

func pdfSize(page *layout.Page) gofpdf.SizeType {
	return gofpdf.SizeType{Wd: page.Width, Ht: page.Height}
}
