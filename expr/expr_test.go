package expr

import (
	"errors"
	"testing"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "empty", input: "", want: ""},
		{name: "global", input: "g", want: "g"},
		{name: "canonical order", input: "ymig", want: "gimy"},
		{name: "all but v", input: "dgimsuy", want: "dgimsuy"},
		{name: "duplicate", input: "gg", wantErr: true},
		{name: "unknown", input: "gx", wantErr: true},
		{name: "u and v", input: "uv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFlags(tt.input)
			if tt.wantErr {
				var flagErr *FlagError
				if !errors.As(err, &flagErr) {
					t.Fatalf("ParseFlags(%q) error = %v, want *FlagError", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFlags(%q) unexpected error: %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseFlags(%q).String() = %q, want %q", tt.input, got.String(), tt.want)
			}
		})
	}
}

func TestFlagsHas(t *testing.T) {
	f := MustParseFlags("gu")
	if !f.Global() {
		t.Error("Global() = false, want true")
	}
	if !f.UnicodeMode() {
		t.Error("UnicodeMode() = false, want true")
	}
	if f.Has(FlagIgnoreCase) {
		t.Error("Has(i) = true, want false")
	}
	if f.Has(Flag('x')) {
		t.Error("Has(x) = true, want false")
	}
	if got := f.With(FlagIgnoreCase).String(); got != "giu" {
		t.Errorf("With(i) = %q, want %q", got, "giu")
	}
}

func TestExpressionLiteral(t *testing.T) {
	e, err := New(`a+b`, "ig")
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if got := e.Literal(); got != "/a+b/gi" {
		t.Errorf("Literal() = %q, want %q", got, "/a+b/gi")
	}

	if _, err := New("a", "gg"); err == nil {
		t.Error("New() with duplicate flags returned nil error")
	}
}
