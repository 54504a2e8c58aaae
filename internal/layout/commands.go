package layout

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Color is an RGB fill, stroke or text color.
type Color struct {
	R, G, B uint8
}

// ParseHex reads "#RRGGBB" or "RRGGBB".
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("invalid color %q: expected 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MustHex is ParseHex for compile-time palettes.
func MustHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseHex(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Color) MarshalYAML() (interface{}, error) {
	return c.Hex(), nil
}

// Font styles understood by the sink.
const (
	StyleRegular = ""
	StyleBold    = "B"
	StyleItalic  = "I"
)

type Font struct {
	Family string
	Style  string
	Size   float64
}

type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
	// AlignJustify is only meaningful for paragraphs; the engine resolves it
	// into individually placed words before any command is emitted.
	AlignJustify
)

// Command is one absolutely positioned drawing instruction. Coordinates are
// points from the top-left corner of the page.
type Command interface {
	Kind() string
	command()
}

// Panel is an opaque filled rectangle, rounded when Radius > 0.
type Panel struct {
	X, Y, W, H float64
	Radius     float64
	Fill       Color
}

// Text is a single line of text vertically centered in its box.
type Text struct {
	X, Y, W, H float64
	Content    string
	Font       Font
	Color      Color
	Align      Align
}

type Line struct {
	X1, Y1, X2, Y2 float64
	Width          float64
	Color          Color
}

type Circle struct {
	X, Y, R float64
	Fill    Color
}

// Image places a raster file (png, jpg, gif) in the given box.
type Image struct {
	X, Y, W, H float64
	Path       string
}

func (Panel) Kind() string  { return "panel" }
func (Text) Kind() string   { return "text" }
func (Line) Kind() string   { return "line" }
func (Circle) Kind() string { return "circle" }
func (Image) Kind() string  { return "image" }

func (Panel) command()  {}
func (Text) command()   {}
func (Line) command()   {}
func (Circle) command() {}
func (Image) command()  {}

// Bottom reports the lowest y a command paints to.
func Bottom(cmd Command) float64 {
	switch c := cmd.(type) {
	case Panel:
		return c.Y + c.H
	case Text:
		return c.Y + c.H
	case Line:
		if c.Y1 > c.Y2 {
			return c.Y1
		}
		return c.Y2
	case Circle:
		return c.Y + c.R
	case Image:
		return c.Y + c.H
	}
	return 0
}

// Top reports the highest y a command paints to.
func Top(cmd Command) float64 {
	switch c := cmd.(type) {
	case Panel:
		return c.Y
	case Text:
		return c.Y
	case Line:
		if c.Y1 < c.Y2 {
			return c.Y1
		}
		return c.Y2
	case Circle:
		return c.Y - c.R
	case Image:
		return c.Y
	}
	return 0
}
