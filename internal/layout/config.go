package layout

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Geometry holds page measurements in points.
type Geometry struct {
	PageWidth   float64 `yaml:"page_width"`
	PageHeight  float64 `yaml:"page_height"`
	Margin      float64 `yaml:"margin"`
	FooterBand  float64 `yaml:"footer_band"`
	SectionGap  float64 `yaml:"section_gap"`
	RowHeight   float64 `yaml:"row_height"`
	CardRadius  float64 `yaml:"card_radius"`
	PanelRadius float64 `yaml:"panel_radius"`
}

// DefaultGeometry is A4 portrait with 50pt margins.
func DefaultGeometry() Geometry {
	return Geometry{
		PageWidth:   595.28,
		PageHeight:  841.89,
		Margin:      50,
		FooterBand:  36,
		SectionGap:  20,
		RowHeight:   28,
		CardRadius:  8,
		PanelRadius: 14,
	}
}

func (g Geometry) ContentWidth() float64 {
	return g.PageWidth - 2*g.Margin
}

// FooterTop is the first y that belongs to the footer band.
func (g Geometry) FooterTop() float64 {
	return g.PageHeight - g.FooterBand
}

type Palette struct {
	Primary   Color `yaml:"primary"`
	Secondary Color `yaml:"secondary"`
	Accent    Color `yaml:"accent"`
	Text      Color `yaml:"text"`
	Muted     Color `yaml:"muted"`
	Surface   Color `yaml:"surface"`
	Border    Color `yaml:"border"`
	Inverse   Color `yaml:"inverse"`
}

type TimelineStep struct {
	Label       string `yaml:"label"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

// Copy is every fixed string printed on the proposal.
type Copy struct {
	CompanyName      string         `yaml:"company_name"`
	CompanyAddress   string         `yaml:"company_address"`
	CompanyPhone     string         `yaml:"company_phone"`
	CompanyEmail     string         `yaml:"company_email"`
	Title            string         `yaml:"title"`
	Tagline          string         `yaml:"tagline"`
	About            string         `yaml:"about"`
	Financing        string         `yaml:"financing"`
	ManufacturerNote string         `yaml:"manufacturer_note"`
	Inclusions       []string       `yaml:"inclusions"`
	Timeline         []TimelineStep `yaml:"timeline"`
	// ValidityText receives the pluralised day count, e.g. "4 dias corridos".
	ValidityText string `yaml:"validity_text"`
}

// Variant is a named palette and copy pair selected when the engine is built.
type Variant struct {
	Name    string  `yaml:"name"`
	Palette Palette `yaml:"palette"`
	Copy    Copy    `yaml:"copy"`
}

type Config struct {
	Geometry Geometry
	Variant  Variant
	// LogoPath, when set, replaces the monogram on the cover.
	LogoPath   string
	FontFamily string
}

func NewConfig(v Variant) Config {
	return Config{
		Geometry:   DefaultGeometry(),
		Variant:    v,
		FontFamily: "Helvetica",
	}
}

const DefaultVariant = "solar"

func defaultCopy() Copy {
	return Copy{
		CompanyName:    "SolarPro Energia",
		CompanyAddress: "Jaboatão dos Guararapes, PE",
		CompanyPhone:   "(81) 99999-9999",
		CompanyEmail:   "contato@solarpro.com.br",
		Title:          "PROPOSTA COMERCIAL",
		Tagline:        "Soluções em energia solar fotovoltaica",
		About: "Somos uma empresa especializada no desenvolvimento de soluções de energia fotovoltaica. " +
			"Nosso compromisso é oferecer sistemas de alta qualidade, com equipamentos de primeira linha " +
			"e instalação profissional, garantindo economia e sustentabilidade para nossos clientes.",
		Financing: "Contamos com parcerias com os principais bancos para análise de financiamento, " +
			"facilitando o acesso à energia solar para residências e empresas.",
		ManufacturerNote: "A garantia dos equipamentos é de responsabilidade dos fabricantes.",
		Inclusions: []string{
			"Projeto elétrico e homologação junto à distribuidora",
			"Módulos fotovoltaicos e inversor(es) especificados",
			"Estruturas de fixação, cabos e materiais elétricos",
			"Instalação por equipe técnica especializada",
			"Monitoramento da geração pelo aplicativo do fabricante",
			"Suporte pós-venda durante o período de garantia",
		},
		Timeline: []TimelineStep{
			{Label: "A", Title: "Aprovação", Description: "Aprovação da proposta"},
			{Label: "D", Title: "Contrato", Description: "Validação do projeto pelo setor técnico e assinatura de contrato"},
			{Label: "D+30", Title: "Encomenda", Description: "Encomenda dos equipamentos e preparação da infraestrutura"},
			{Label: "D+60", Title: "Montagem", Description: "Montagem do sistema"},
			{Label: "D+90", Title: "Homologação", Description: "Testes e homologação na distribuidora"},
		},
		ValidityText: "Esta proposta é válida em todos os seus termos por %s contados a partir da data de envio.",
	}
}

// SolarVariant is the default green and amber look.
func SolarVariant() Variant {
	return Variant{
		Name: DefaultVariant,
		Palette: Palette{
			Primary:   MustHex("#14532D"),
			Secondary: MustHex("#166534"),
			Accent:    MustHex("#F59E0B"),
			Text:      MustHex("#1F2937"),
			Muted:     MustHex("#6B7280"),
			Surface:   MustHex("#F3F4F6"),
			Border:    MustHex("#D1D5DB"),
			Inverse:   MustHex("#FFFFFF"),
		},
		Copy: defaultCopy(),
	}
}

func CorporateVariant() Variant {
	return Variant{
		Name: "corporate",
		Palette: Palette{
			Primary:   MustHex("#1E3A5F"),
			Secondary: MustHex("#274C77"),
			Accent:    MustHex("#C9A227"),
			Text:      MustHex("#111827"),
			Muted:     MustHex("#64748B"),
			Surface:   MustHex("#EEF2F7"),
			Border:    MustHex("#CBD5E1"),
			Inverse:   MustHex("#FFFFFF"),
		},
		Copy: defaultCopy(),
	}
}

func BuiltinVariants() map[string]Variant {
	return map[string]Variant{
		DefaultVariant: SolarVariant(),
		"corporate":    CorporateVariant(),
	}
}

type variantsFile struct {
	Variants []yaml.Node `yaml:"variants"`
}

// LoadVariants decodes a YAML list of variants. Fields a variant leaves out
// keep the values of the default variant.
func LoadVariants(r io.Reader) (map[string]Variant, error) {
	var file variantsFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode variants: %w", err)
	}
	out := make(map[string]Variant, len(file.Variants))
	for i := range file.Variants {
		v := SolarVariant()
		v.Name = ""
		if err := file.Variants[i].Decode(&v); err != nil {
			return nil, fmt.Errorf("decode variant #%d: %w", i+1, err)
		}
		if v.Name == "" {
			return nil, fmt.Errorf("variant #%d has no name", i+1)
		}
		if _, dup := out[v.Name]; dup {
			return nil, fmt.Errorf("duplicate variant %q", v.Name)
		}
		out[v.Name] = v
	}
	return out, nil
}

// LoadVariantsFile merges the variants found in path over the built-in ones.
func LoadVariantsFile(path string) (map[string]Variant, error) {
	variants := BuiltinVariants()
	if path == "" {
		return variants, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open variants file: %w", err)
	}
	defer f.Close()

	loaded, err := LoadVariants(f)
	if err != nil {
		return nil, err
	}
	for name, v := range loaded {
		variants[name] = v
	}
	return variants, nil
}

func VariantNames(variants map[string]Variant) []string {
	names := make([]string, 0, len(variants))
	for name := range variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
