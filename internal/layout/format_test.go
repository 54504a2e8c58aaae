package layout

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatBRL(t *testing.T) {
	cases := map[string]string{
		"11537.92": "R$ 11.537,92",
		"0.5":      "R$ 0,50",
		"1234567":  "R$ 1.234.567,00",
		"999":      "R$ 999,00",
		"-10":      "-R$ 10,00",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatBRL(decimal.RequireFromString(in)), in)
	}
}

func TestFormatQuantityTrimsZeros(t *testing.T) {
	assert.Equal(t, "532", FormatQuantity(532, 0))
	assert.Equal(t, "532", FormatQuantity(532, 2))
	assert.Equal(t, "4,27", FormatQuantity(4.27, 2))
	assert.Equal(t, "4,2", FormatQuantity(4.2, 2))
	assert.Equal(t, "1.234,5", FormatQuantity(1234.5, 1))
	assert.Equal(t, "10.000", FormatQuantity(10000, 0))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "1.234,50", FormatNumber(1234.5, 2))
	assert.Equal(t, "0,0", FormatNumber(0, 1))
}

func TestFormatDates(t *testing.T) {
	d := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "1 de março de 2025", FormatLongDate(d))
	assert.Equal(t, "01/03/2025", FormatShortDate(d))
}

func TestPluralAndInitials(t *testing.T) {
	assert.Equal(t, "1 módulo", Plural(1, "módulo", "módulos"))
	assert.Equal(t, "0 módulos", Plural(0, "módulo", "módulos"))
	assert.Equal(t, "8 módulos", Plural(8, "módulo", "módulos"))

	assert.Equal(t, "SE", Initials("SolarPro Energia"))
	assert.Equal(t, "É", Initials("  é "))
	assert.Equal(t, "", Initials(""))
}
