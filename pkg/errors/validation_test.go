package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateContainerWidth(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"positive", 800, false},
		{"fractional", 0.5, false},

		{"zero", 0, true},
		{"negative", -10, true},
		{"nan", math.NaN(), true},
		{"inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContainerWidth(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateContainerWidth(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidConfig) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidConfig)
			}
		})
	}
}

func TestValidateBlockSize(t *testing.T) {
	if err := ValidateBlockSize("base width", 200); err != nil {
		t.Errorf("valid size should pass: %v", err)
	}
	err := ValidateBlockSize("base width", 0)
	if err == nil {
		t.Fatal("zero size should fail")
	}
	if !strings.Contains(err.Error(), "base width") {
		t.Errorf("error should name the field: %v", err)
	}
	if err := ValidateBlockSize("base height", math.Inf(-1)); err == nil {
		t.Error("infinite size should fail")
	}
}

func TestValidateSpan(t *testing.T) {
	tests := []struct {
		name    string
		input   int
		wantErr bool
	}{
		{"unspecified", 0, false},
		{"one", 1, false},
		{"max", MaxSpan, false},

		{"negative", -1, true},
		{"too large", MaxSpan + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSpan("cols", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSpan(%d) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateItemID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty", "", false},
		{"simple", "hero", false},
		{"with dash", "item-1", false},
		{"with colon", "news:42", false},

		{"leading dash", "-x", true},
		{"space", "a b", true},
		{"slash", "a/b", true},
		{"too long", strings.Repeat("a", 129), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateItemID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateItemID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"json", "items.json", false},
		{"toml", "gallery.toml", false},

		{"empty", "", true},
		{"with path /", "path/to/file", true},
		{"with path \\", "path\\to\\file", true},
		{"hidden file", ".hidden", true},
		{"control char", "a\x01.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"uuid", "3f2b8c1e-9a4d-4c7e-8b1a-2d3e4f5a6b7c", false},

		{"empty", "", true},
		{"uppercase", "3F2B8C1E-9A4D-4C7E-8B1A-2D3E4F5A6B7C", true},
		{"traversal", "../../etc/passwd", true},
		{"short", "abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
