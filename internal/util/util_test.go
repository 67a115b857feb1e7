package util

import "testing"

func TestClamp01(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"below range", -0.5, 0},
		{"zero", 0, 0},
		{"inside range", 0.42, 0.42},
		{"one", 1, 1},
		{"above range", 3.7, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Clamp01(tt.input)
			if result != tt.expected {
				t.Errorf("Clamp01(%v) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFormatMissionTime(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"zero", 0, "T+00:00:00"},
		{"seconds only", 42, "T+00:00:42"},
		{"fractional rounds down", 42.9, "T+00:00:42"},
		{"minutes", 153, "T+00:02:33"},
		{"hours", 3725, "T+01:02:05"},
		{"countdown", -10, "T-00:00:10"},
		{"countdown fractional", -9.5, "T-00:00:09"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatMissionTime(tt.input)
			if result != tt.expected {
				t.Errorf("FormatMissionTime(%v) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
