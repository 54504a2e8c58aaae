package layout

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const acmeVariants = `
variants:
  - name: acme
    palette:
      primary: "#000000"
      accent: "ff8800"
    copy:
      company_name: Acme Solar
      inclusions:
        - Projeto
        - Instalação
`

func TestLoadVariantsOverlaysDefaults(t *testing.T) {
	variants, err := LoadVariants(strings.NewReader(acmeVariants))
	require.NoError(t, err)
	require.Contains(t, variants, "acme")

	acme := variants["acme"]
	base := SolarVariant()
	assert.Equal(t, Color{}, acme.Palette.Primary)
	assert.Equal(t, Color{R: 0xff, G: 0x88}, acme.Palette.Accent)
	assert.Equal(t, base.Palette.Surface, acme.Palette.Surface)
	assert.Equal(t, "Acme Solar", acme.Copy.CompanyName)
	assert.Equal(t, []string{"Projeto", "Instalação"}, acme.Copy.Inclusions)
	assert.Equal(t, base.Copy.About, acme.Copy.About)
	assert.Equal(t, base.Copy.Timeline, acme.Copy.Timeline)
}

func TestLoadVariantsErrors(t *testing.T) {
	cases := map[string]string{
		"missing name": "variants:\n  - palette:\n      primary: '#000000'\n",
		"duplicate":    "variants:\n  - name: a\n  - name: a\n",
		"bad color":    "variants:\n  - name: a\n    palette:\n      primary: nope\n",
	}
	for name, src := range cases {
		_, err := LoadVariants(strings.NewReader(src))
		assert.Error(t, err, name)
	}
}

func TestLoadVariantsFileMergesBuiltins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "variants.yaml")
	require.NoError(t, os.WriteFile(path, []byte(acmeVariants), 0o644))

	variants, err := LoadVariantsFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme", "corporate", "solar"}, VariantNames(variants))

	_, err = LoadVariantsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestColorHexRoundTrip(t *testing.T) {
	c, err := ParseHex("#14532d")
	require.NoError(t, err)
	assert.Equal(t, "#14532D", c.Hex())

	out, err := yaml.Marshal(struct {
		C Color `yaml:"c"`
	}{c})
	require.NoError(t, err)
	assert.Contains(t, string(out), "#14532D")

	_, err = ParseHex("#123")
	assert.Error(t, err)
	assert.Panics(t, func() { MustHex("zzzzzz") })
}

func TestBuiltinVariantsDiffer(t *testing.T) {
	variants := BuiltinVariants()
	require.Len(t, variants, 2)
	assert.Equal(t, DefaultVariant, variants[DefaultVariant].Name)
	assert.NotEqual(t, variants["solar"].Palette.Primary, variants["corporate"].Palette.Primary)
}
