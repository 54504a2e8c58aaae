package layout

import (
	"strings"
	"unicode/utf8"
)

const Ellipsis = "…"

// Measurer reports the rendered width of a string in points.
type Measurer interface {
	StringWidth(s string, font Font) float64
}

// MeasurerFactory returns a measurer owned by a single render call.
type MeasurerFactory func() Measurer

// ApproxMeasurer assumes every glyph is Ratio em wide. It is good enough for
// tests and for callers that have no font metrics at hand.
type ApproxMeasurer struct {
	Ratio float64
}

func (m ApproxMeasurer) StringWidth(s string, font Font) float64 {
	ratio := m.Ratio
	if ratio <= 0 {
		ratio = 0.5
	}
	return float64(utf8.RuneCountInString(s)) * font.Size * ratio
}

// fitLine returns s unchanged when it fits width, otherwise the longest
// prefix that fits once an ellipsis is appended.
func fitLine(m Measurer, s string, font Font, width float64) string {
	if m.StringWidth(s, font) <= width {
		return s
	}
	return truncate(m, s, font, width)
}

// truncate always appends the ellipsis, dropping runes from the end until
// the result fits.
func truncate(m Measurer, s string, font Font, width float64) string {
	runes := []rune(strings.TrimRight(s, " "))
	for n := len(runes); n > 0; n-- {
		candidate := strings.TrimRight(string(runes[:n]), " ") + Ellipsis
		if m.StringWidth(candidate, font) <= width {
			return candidate
		}
	}
	if m.StringWidth(Ellipsis, font) <= width {
		return Ellipsis
	}
	return ""
}

// wrapLine is one line of a wrapped paragraph.
type wrapLine struct {
	words []string
	width float64
}

func (l wrapLine) text() string {
	return strings.Join(l.words, " ")
}

// wrap breaks text into greedy lines no wider than width. A single word that
// is wider than the line is truncated with an ellipsis.
func wrap(m Measurer, text string, font Font, width float64) []wrapLine {
	space := m.StringWidth(" ", font)
	var lines []wrapLine
	var cur wrapLine
	for _, word := range strings.Fields(text) {
		w := m.StringWidth(word, font)
		if w > width {
			word = truncate(m, word, font, width)
			w = m.StringWidth(word, font)
		}
		if len(cur.words) > 0 && cur.width+space+w > width {
			lines = append(lines, cur)
			cur = wrapLine{}
		}
		if len(cur.words) > 0 {
			cur.width += space
		}
		cur.words = append(cur.words, word)
		cur.width += w
	}
	if len(cur.words) > 0 {
		lines = append(lines, cur)
	}
	return lines
}
