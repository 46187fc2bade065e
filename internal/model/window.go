package model

import (
	"time"

	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/errm"
)

// Window is a fixed aggregation time range ending at the current moment
type Window string

// SupportedWindows defines the supported aggregation windows
const (
	WindowDay   Window = "day"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
)

var windowDurations = abstract.NewSafeMap(map[Window]time.Duration{
	WindowDay:   24 * time.Hour,
	WindowWeek:  7 * 24 * time.Hour,
	WindowMonth: 30 * 24 * time.Hour,
})

var windowLabels = abstract.NewSafeMap(map[Window]string{
	WindowDay:   "Last 24 hours",
	WindowWeek:  "Last 7 days",
	WindowMonth: "Last 30 days",
})

// ParseWindow validates a raw window name coming from API or CLI input
func ParseWindow(raw string) (Window, error) {
	w := Window(raw)
	if windowDurations.Get(w) == 0 {
		return "", errm.New("unsupported window: %s", raw)
	}
	return w, nil
}

// Duration returns the window length
func (w Window) Duration() time.Duration {
	return windowDurations.Get(w)
}

// Label returns the human readable name used in prompts
func (w Window) Label() string {
	return windowLabels.Get(w)
}

// Bounds returns the half-open interval [since, until) ending at now
func (w Window) Bounds(now time.Time) (since, until time.Time) {
	return now.Add(-w.Duration()), now
}
