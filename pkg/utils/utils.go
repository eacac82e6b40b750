package utils

import (
	"math"
	"time"
)

const sqftPerSqm = 10.764

// ToPointer returns a pointer to the given value.
func ToPointer[T any](value T) *T {
	return &value
}

// Truncate hard-limits a string to max runes. Oversized upstream values are
// cut instead of failing the row on a column length constraint.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// TruncatePtr applies Truncate to an optional string.
func TruncatePtr(s *string, max int) *string {
	if s == nil {
		return nil
	}
	t := Truncate(*s, max)
	return &t
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SqmToSqft converts square meters to square feet.
func SqmToSqft(sqm float64) float64 {
	return sqm * sqftPerSqm
}

// DaysSince returns whole elapsed days between a past timestamp and now,
// truncated toward zero.
func DaysSince(from time.Time, now time.Time) int {
	if from.After(now) {
		return 0
	}
	return int(now.Sub(from).Hours() / 24)
}
