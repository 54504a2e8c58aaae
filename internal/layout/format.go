package layout

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var monthsPT = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// FormatBRL renders a value as Brazilian reais: "R$ 11.537,92".
func FormatBRL(v decimal.Decimal) string {
	sign := ""
	if v.IsNegative() {
		sign = "-"
		v = v.Neg()
	}
	return sign + "R$ " + groupDecimal(v.StringFixed(2))
}

// FormatNumber uses pt-BR separators with a fixed number of decimal places.
func FormatNumber(v float64, places int32) string {
	d := decimal.NewFromFloat(v)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + groupDecimal(d.StringFixed(places))
}

// FormatQuantity drops trailing zeros: 532 -> "532", 4.27 -> "4,27".
func FormatQuantity(v float64, maxPlaces int32) string {
	d := decimal.NewFromFloat(v).Round(maxPlaces)
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + groupDecimal(d.Abs().String())
}

// groupDecimal turns "11537.92" into "11.537,92".
func groupDecimal(s string) string {
	intPart, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}

// FormatLongDate: "15 de dezembro de 2025".
func FormatLongDate(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), monthsPT[t.Month()-1], t.Year())
}

// FormatShortDate: "15/12/2025".
func FormatShortDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// Plural picks the singular form only for exactly one.
func Plural(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

// Initials returns up to two leading letters of the first words of name.
func Initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			out = append(out, r)
			break
		}
		if len(out) == 2 {
			break
		}
	}
	return strings.ToUpper(string(out))
}
