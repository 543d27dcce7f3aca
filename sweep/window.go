package sweep

import (
	"fmt"
	"time"
)

// Window bounds which log events qualify, inclusive at both ends.
type Window struct {
	Start time.Time
	End   time.Time
}

// DefaultWindow is the last 30 days ending at now.
func DefaultWindow(now time.Time) Window {
	return Window{
		Start: now.AddDate(0, 0, -30),
		End:   now,
	}
}

func (w Window) Validate() error {
	if w.Start.After(w.End) {
		return fmt.Errorf("start date %s is after end date %s",
			w.Start.Format(time.DateOnly), w.End.Format(time.DateOnly))
	}
	return nil
}
