// Package codegen provides naming helpers and constants for generated code.
package codegen

import (
	"fmt"
	"go/token"
	"strings"
)

// Import paths referenced by generated code.
const (
	LayoutPkg  = "github.com/KromDaniel/regraph/layout"
	ASTPkg     = "github.com/KromDaniel/regraph/ast"
	RegraphPkg = "github.com/KromDaniel/regraph/pkg/regraph"
)

// Suffixes of the generated declarations.
const (
	PatternSuffix = "Pattern"
	FlagsSuffix   = "Flags"
	DiagramSuffix = "Diagram"
	LayoutSuffix  = "LayoutConfig"
)

// PatternName returns the name of the generated pattern constant.
func PatternName(name string) string { return UpperFirst(name) + PatternSuffix }

// FlagsName returns the name of the generated flags constant.
func FlagsName(name string) string { return UpperFirst(name) + FlagsSuffix }

// DiagramName returns the name of the generated diagram constructor.
func DiagramName(name string) string { return UpperFirst(name) + DiagramSuffix }

// LayoutName returns the name of the generated layout constants function.
func LayoutName(name string) string { return UpperFirst(name) + LayoutSuffix }

// KindName returns the name of the ast constant for a node kind name.
func KindName(kind string) string { return "Kind" + kind }

// ValidateName checks that name can prefix exported Go identifiers.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if !token.IsIdentifier(name) {
		return fmt.Errorf("name %q is not a valid Go identifier", name)
	}
	if strings.HasPrefix(name, "_") {
		return fmt.Errorf("name %q must start with a letter", name)
	}
	return nil
}

// LowerFirst converts the first character of a string to lowercase.
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]|0x20) + s[1:]
}

// UpperFirst converts the first character of a string to uppercase.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]&^0x20) + s[1:]
}
