// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/digita/internal/compare"
	"github.com/verte-zerg/digita/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Goals shown on the results screen.
const (
	GoalWPM      = 40
	GoalAccuracy = 90
)

// Accuracy returns the rounded percentage of index-aligned runes that match.
// Empty typed text scores 0.
func Accuracy(reference, typed string) int {
	if typed == "" {
		return 0
	}
	correct, total := compare.CountCorrect(compare.Compare(reference, typed))
	if total == 0 {
		return 0
	}
	return roundHalfUp(100 * float64(correct) / float64(total))
}

// WPM returns typed words per minute of elapsed time, rounded.
func WPM(typed string, elapsedSeconds int) int {
	if elapsedSeconds <= 0 {
		return 0
	}
	return roundHalfUp(float64(WordCount(typed)) / (float64(elapsedSeconds) / 60.0))
}

// WordCount returns the number of whitespace-delimited tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// Live computes the metrics shown while typing. Elapsed time is clamped to one
// second so the first keystrokes do not read as zero WPM.
func Live(reference, typed string, elapsedSeconds int) model.Metrics {
	if elapsedSeconds < 1 {
		elapsedSeconds = 1
	}
	return model.Metrics{
		WPM:      WPM(typed, elapsedSeconds),
		Accuracy: Accuracy(reference, typed),
		Words:    WordCount(typed),
	}
}

// Final computes the frozen metrics of a finished attempt.
func Final(reference, typed string, elapsedSeconds int) model.Metrics {
	return model.Metrics{
		WPM:      WPM(typed, elapsedSeconds),
		Accuracy: Accuracy(reference, typed),
		Words:    WordCount(typed),
	}
}

// GoalResult reports which performance goals an attempt met.
type GoalResult struct {
	WPM      bool
	Accuracy bool
}

// All is true when every goal was met.
func (g GoalResult) All() bool {
	return g.WPM && g.Accuracy
}

// Goals checks an attempt's metrics against the fixed goals.
func Goals(wpm, accuracy int) GoalResult {
	return GoalResult{WPM: wpm >= GoalWPM, Accuracy: accuracy >= GoalAccuracy}
}

// SessionTotals averages a set of finished attempts.
type SessionTotals struct {
	Attempts    int
	AvgWPM      float64
	BestWPM     int
	AvgAccuracy float64
	Errors      int
}

// Totals averages the attempts of a session.
func Totals(attempts []model.TestAttempt) SessionTotals {
	var t SessionTotals
	if len(attempts) == 0 {
		return t
	}
	var wpm, acc float64
	for _, a := range attempts {
		wpm += float64(a.WPM)
		acc += float64(a.Accuracy)
		t.Errors += len(a.Errors)
		if a.WPM > t.BestWPM {
			t.BestWPM = a.WPM
		}
	}
	t.Attempts = len(attempts)
	t.AvgWPM = wpm / float64(len(attempts))
	t.AvgAccuracy = acc / float64(len(attempts))
	return t
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
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints averages over stored attempts.
func RenderSummary(w io.Writer, attempts []model.AttemptAggregate) error {
	if len(attempts) == 0 {
		_, err := fmt.Fprintln(w, "No attempts found.")
		return err
	}
	var totalWPM, totalAcc float64
	best := 0
	passed := 0
	for _, a := range attempts {
		totalWPM += float64(a.WPM)
		totalAcc += float64(a.Accuracy)
		if a.WPM > best {
			best = a.WPM
		}
		if Goals(a.WPM, a.Accuracy).All() {
			passed++
		}
	}
	count := float64(len(attempts))
	lines := []string{
		"Summary",
		fmt.Sprintf("Attempts: %d", len(attempts)),
		fmt.Sprintf("Avg WPM: %.1f", totalWPM/count),
		fmt.Sprintf("Best WPM: %d", best),
		fmt.Sprintf("Avg Accuracy: %.1f%%", totalAcc/count),
		fmt.Sprintf("Goals met (%d WPM, %d%%): %d/%d", GoalWPM, GoalAccuracy, passed, len(attempts)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints WPM and accuracy sparklines, fitted to width when it is positive.
func RenderCurves(w io.Writer, attempts []model.AttemptAggregate, window, width int) error {
	if len(attempts) == 0 {
		return nil
	}
	wpms := make([]float64, len(attempts))
	accs := make([]float64, len(attempts))
	for i, a := range attempts {
		wpms[i] = float64(a.WPM)
		accs[i] = float64(a.Accuracy)
	}
	wpms = tail(MovingAverage(wpms, window), width)
	accs = tail(MovingAverage(accs, window), width)
	tbl := newTable(column{}, column{}, column{right: true})
	tbl.add("WPM", Sparkline(wpms), fmt.Sprintf("%.1f", wpms[len(wpms)-1]))
	tbl.add("Accuracy", Sparkline(accs), fmt.Sprintf("%.1f%%", accs[len(accs)-1]))
	if _, err := fmt.Fprintf(w, "Learning Curves (window %d)\n", window); err != nil {
		return err
	}
	if err := tbl.write(w); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderErrorTable prints the count of every error kind, most frequent first.
func RenderErrorTable(w io.Writer, summary map[model.ErrorKind]int) error {
	if _, err := fmt.Fprintln(w, "Errors by Kind"); err != nil {
		return err
	}
	tbl := newTable(column{title: "Kind"}, column{title: "Count", right: true})
	for _, kind := range TopKinds(summary, len(model.ErrorKinds)) {
		tbl.add(kind.Label(), fmt.Sprintf("%d", summary[kind]))
	}
	if err := tbl.write(w); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderErrorList prints every error of an attempt in emission order.
func RenderErrorList(w io.Writer, errs []model.TextError) error {
	if len(errs) == 0 {
		_, err := fmt.Fprintln(w, "No errors detected.")
		return err
	}
	tbl := newTable(
		column{title: "Kind"},
		column{title: "Pos", right: true},
		column{title: "Typed"},
		column{title: "Suggestion"},
		column{title: "Context"},
	)
	for _, e := range errs {
		tbl.add(e.Kind.Label(), fmt.Sprintf("%d", e.Position), e.Error, e.Suggestion, e.Context)
	}
	return tbl.write(w)
}

func tail(values []float64, width int) []float64 {
	if width <= 0 || len(values) <= width {
		return values
	}
	return values[len(values)-width:]
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
