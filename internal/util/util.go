// Package util provides common utility functions used across the host.
package util

import (
	"fmt"
	"math"
)

// Clamp01 clamps v to the [0, 1] interval.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// FormatMissionTime renders a mission-clock value as T+hh:mm:ss, or
// T-hh:mm:ss for countdown values. Fractional seconds round down.
func FormatMissionTime(seconds float64) string {
	sign := "+"
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}

	total := int(math.Floor(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("T%s%02d:%02d:%02d", sign, h, m, s)
}
