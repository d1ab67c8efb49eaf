package sanitizer

import (
	"reflect"
	"testing"
)

func TestNormalizeAmenities(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"nil input", nil, []string{}},
		{"drops empties", []string{"wifi", "", "  "}, []string{"wifi"}},
		{"dedupes after normalization", []string{"Sea View", "sea view", "WIFI", "wifi"}, []string{"sea view", "wifi"}},
		{"preserves first-seen order", []string{"minibar", "balcony", "minibar"}, []string{"minibar", "balcony"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAmenities(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("NormalizeAmenities(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
