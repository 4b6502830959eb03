// Package stats contains result statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/shapematch/internal/model"
)

const sparkChars = " .:-=+*#%@"

// NoGamesMessage is shown when no results have been stored yet.
const NoGamesMessage = "No games played yet!"

// LoadErrorMessage is shown when results could not be queried.
const LoadErrorMessage = "Error loading average"

// Average is the mean move count over stored results.
type Average struct {
	Mean  float64
	Count int
}

// Empty reports whether no results contributed to the average.
func (a Average) Empty() bool {
	return a.Count == 0
}

func (a Average) String() string {
	if a.Empty() {
		return NoGamesMessage
	}
	return fmt.Sprintf("Average clicks: %.2f (from %d games)", a.Mean, a.Count)
}

// AverageClicks computes the arithmetic mean of clicks across records.
func AverageClicks(records []model.ResultRecord) Average {
	if len(records) == 0 {
		return Average{}
	}
	total := 0
	for _, r := range records {
		total += r.Clicks
	}
	return Average{Mean: float64(total) / float64(len(records)), Count: len(records)}
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
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

// RenderSummary prints the average and best/worst/last move counts.
func RenderSummary(w io.Writer, records []model.ResultRecord) error {
	avg := AverageClicks(records)
	if avg.Empty() {
		_, err := fmt.Fprintln(w, NoGamesMessage)
		return err
	}
	best, worst := records[0].Clicks, records[0].Clicks
	for _, r := range records[1:] {
		if r.Clicks < best {
			best = r.Clicks
		}
		if r.Clicks > worst {
			worst = r.Clicks
		}
	}
	lines := []string{
		"Summary",
		avg.String(),
		fmt.Sprintf("Best: %d moves", best),
		fmt.Sprintf("Worst: %d moves", worst),
		fmt.Sprintf("Last: %d moves", records[len(records)-1].Clicks),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurve prints a moving-average sparkline of clicks, newest last, clipped to width.
func RenderCurve(w io.Writer, records []model.ResultRecord, window, width int) error {
	if len(records) < 2 {
		return nil
	}
	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = float64(r.Clicks)
	}
	values = MovingAverage(values, window)
	if width > 0 && len(values) > width {
		values = values[len(values)-width:]
	}
	if _, err := fmt.Fprintf(w, "Clicks (moving average, window %d)\n", window); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "|%s|\n\n", Sparkline(values)); err != nil {
		return err
	}
	return nil
}

// RenderRecent prints a table of the given records, newest first.
func RenderRecent(w io.Writer, records []model.ResultRecord) error {
	if len(records) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Recent Games"); err != nil {
		return err
	}
	for _, line := range formatResults(resultRows(records)) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
