// Package measure computes the rendered size of label text.
package measure

import (
	"github.com/rivo/uniseg"
)

// LineHeight is the ratio of line height to font size.
const LineHeight = 1.5

// widthFactor approximates the advance of one glyph relative to the font size.
const widthFactor = 0.75

// Size is a width and height pair in diagram units.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Measurer measures a single line of text.
type Measurer interface {
	MeasureText(text string, fontSize float64, family string) Size
}

// Heuristic measures text without a font: every grapheme cluster is assumed
// to be three quarters of the font size wide.
type Heuristic struct{}

// MeasureText implements Measurer.
func (Heuristic) MeasureText(text string, fontSize float64, _ string) Size {
	return Size{
		Width:  float64(uniseg.GraphemeClusterCount(text)) * fontSize * widthFactor,
		Height: LineHeight * fontSize,
	}
}

// MeasureLines measures a block of lines: the widest line's width and the sum
// of the line heights.
func MeasureLines(m Measurer, lines []string, fontSize float64, family string) Size {
	var size Size
	for _, line := range lines {
		s := m.MeasureText(line, fontSize, family)
		size.Width = max(size.Width, s.Width)
		size.Height += s.Height
	}
	return size
}
