package stats

import (
	"context"
	"fmt"
	"io"

	"github.com/verte-zerg/digita/internal/model"
	"github.com/verte-zerg/digita/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Attempts         []model.AttemptAggregate
	WindowAttemptIDs []string
	ErrorsAll        map[model.ErrorKind]int
	ErrorsWindow     map[model.ErrorKind]int
	CurveWindow      int
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	attempts, err := st.ListAttempts(ctx, cfg)
	if err != nil {
		return Report{}, err
	}

	windowIDs := lastAttemptIDs(attempts, cfg.CurveWindow)
	errorsAll, err := st.ErrorSummary(ctx, attemptIDs(attempts))
	if err != nil {
		return Report{}, err
	}
	errorsWindow, err := st.ErrorSummary(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Attempts:         attempts,
		WindowAttemptIDs: windowIDs,
		ErrorsAll:        errorsAll,
		ErrorsWindow:     errorsWindow,
		CurveWindow:      cfg.CurveWindow,
	}, nil
}

// Render prints the summary, learning curves and error tables of a report.
// Sparklines are cut to width when it is positive.
func Render(w io.Writer, r Report, width int) error {
	if err := RenderSummary(w, r.Attempts); err != nil {
		return err
	}
	if len(r.Attempts) == 0 {
		return nil
	}
	if err := RenderCurves(w, r.Attempts, max(1, r.CurveWindow), width); err != nil {
		return err
	}
	if err := RenderErrorTable(w, r.ErrorsAll); err != nil {
		return err
	}
	if r.CurveWindow > 0 && len(r.WindowAttemptIDs) < len(r.Attempts) {
		if _, err := fmt.Fprintf(w, "Last %d attempts\n", len(r.WindowAttemptIDs)); err != nil {
			return err
		}
		return RenderErrorTable(w, r.ErrorsWindow)
	}
	return nil
}

func attemptIDs(attempts []model.AttemptAggregate) []string {
	ids := make([]string, len(attempts))
	for i, a := range attempts {
		ids[i] = a.AttemptID
	}
	return ids
}

func lastAttemptIDs(attempts []model.AttemptAggregate, window int) []string {
	if window <= 0 || len(attempts) <= window {
		return attemptIDs(attempts)
	}
	return attemptIDs(attempts[len(attempts)-window:])
}
