package layout

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/KromDaniel/regraph/measure"
)

// Config holds the graph constants used by both layout passes.
type Config struct {
	FontFamily              string  `yaml:"font_family" json:"font_family"`
	TextFontSize            float64 `yaml:"text_font_size" json:"text_font_size"`                   // Leaf and name labels
	QuantifierFontSize      float64 `yaml:"quantifier_font_size" json:"quantifier_font_size"`       // Quantifier labels
	NodePaddingHorizontal   float64 `yaml:"node_padding_horizontal" json:"node_padding_horizontal"` // Around label text
	NodePaddingVertical     float64 `yaml:"node_padding_vertical" json:"node_padding_vertical"`     // Around label text
	QuotePadding            float64 `yaml:"quote_padding" json:"quote_padding"`                     // Per quote mark, added twice
	NodeMinWidth            float64 `yaml:"node_min_width" json:"node_min_width"`                   // Floor for every content size
	NodeMinHeight           float64 `yaml:"node_min_height" json:"node_min_height"`                 // Floor for every content size
	NodeMarginHorizontal    float64 `yaml:"node_margin_horizontal" json:"node_margin_horizontal"`   // Between siblings
	NodeMarginVertical      float64 `yaml:"node_margin_vertical" json:"node_margin_vertical"`       // Between branches
	ChoicePaddingHorizontal float64 `yaml:"choice_padding_horizontal" json:"choice_padding_horizontal"`
	ChoicePaddingVertical   float64 `yaml:"choice_padding_vertical" json:"choice_padding_vertical"`
	IconSize                float64 `yaml:"icon_size" json:"icon_size"`                 // Quantifier icons
	NameHeight              float64 `yaml:"name_height" json:"name_height"`             // Reserved above and below content
	QuantifierHeight        float64 `yaml:"quantifier_height" json:"quantifier_height"` // Reserved above and below content
	RootRadius              float64 `yaml:"root_radius" json:"root_radius"`             // Start and end markers
}

// DefaultConfig returns the constants used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		FontFamily:              measure.FamilySans,
		TextFontSize:            16,
		QuantifierFontSize:      12,
		NodePaddingHorizontal:   10,
		NodePaddingVertical:     5,
		QuotePadding:            2,
		NodeMinWidth:            30,
		NodeMinHeight:           30,
		NodeMarginHorizontal:    20,
		NodeMarginVertical:      10,
		ChoicePaddingHorizontal: 20,
		ChoicePaddingVertical:   10,
		IconSize:                16,
		NameHeight:              20,
		QuantifierHeight:        20,
		RootRadius:              5,
	}
}

// RootSize is the size of the start and end markers. It does not depend on
// the pattern.
func (c Config) RootSize() measure.Size {
	return measure.Size{Width: c.RootRadius * 2, Height: c.RootRadius * 2}
}

// Validate reports every constant that is out of range.
func (c Config) Validate() error {
	var errs []error
	positive := map[string]float64{
		"text_font_size":       c.TextFontSize,
		"quantifier_font_size": c.QuantifierFontSize,
	}
	nonNegative := map[string]float64{
		"node_padding_horizontal":   c.NodePaddingHorizontal,
		"node_padding_vertical":     c.NodePaddingVertical,
		"quote_padding":             c.QuotePadding,
		"node_min_width":            c.NodeMinWidth,
		"node_min_height":           c.NodeMinHeight,
		"node_margin_horizontal":    c.NodeMarginHorizontal,
		"node_margin_vertical":      c.NodeMarginVertical,
		"choice_padding_horizontal": c.ChoicePaddingHorizontal,
		"choice_padding_vertical":   c.ChoicePaddingVertical,
		"icon_size":                 c.IconSize,
		"name_height":               c.NameHeight,
		"quantifier_height":         c.QuantifierHeight,
		"root_radius":               c.RootRadius,
	}
	for _, name := range sortedKeys(positive) {
		if positive[name] <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, positive[name]))
		}
	}
	for _, name := range sortedKeys(nonNegative) {
		if nonNegative[name] < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %v", name, nonNegative[name]))
		}
	}
	return errors.Join(errs...)
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
