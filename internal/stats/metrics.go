// Package stats contains scoring calculations.
package stats

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/quotype/internal/model"
)

// Characters per word in the standard WPM approximation.
const charsPerWord = 5.0

const sparkChars = " .:-=+*#%@"

var (
	// ErrNoInput is returned when metrics are requested without typed characters.
	ErrNoInput = errors.New("stats: no typed characters")
	// ErrNoElapsed is returned when the elapsed time is zero, negative or not finite.
	ErrNoElapsed = errors.New("stats: no elapsed time")
)

// ComputeMetrics derives words-per-minute and accuracy for a finished session.
func ComputeMetrics(totalTyped, errorCount int, elapsedSeconds float64) (model.Metrics, error) {
	if totalTyped <= 0 {
		return model.Metrics{}, ErrNoInput
	}
	if elapsedSeconds <= 0 || math.IsNaN(elapsedSeconds) || math.IsInf(elapsedSeconds, 0) {
		return model.Metrics{}, ErrNoElapsed
	}
	if errorCount < 0 {
		errorCount = 0
	}
	if errorCount > totalTyped {
		errorCount = totalTyped
	}
	minutes := elapsedSeconds / 60
	wpm := math.Round(float64(totalTyped) / charsPerWord / minutes)
	accuracy := math.Round(float64(totalTyped-errorCount) / float64(totalTyped) * 100)
	return model.Metrics{
		WPM:      int(wpm),
		Accuracy: int(accuracy),
		Elapsed:  time.Duration(elapsedSeconds * float64(time.Second)),
	}, nil
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}
