package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel titles shown in place of a percentage when normal data is
// unavailable.
const (
	TitleSetup = "Claude: Setup"
	TitleError = "Claude: Error"
)

const notConfiguredText = "Not configured"

// DisplayState holds the strings shown on the menu surface: a short title
// plus one row per usage window. It is recomputed on every refresh and has
// no identity across refreshes.
type DisplayState struct {
	Title   string
	Session string
	Weekly  string
	Sonnet  string
}

// Result is the outcome of one refresh cycle: a snapshot on success, or an
// error. ErrNotConfigured marks the credentials-absent state; any other
// error is a fetch failure.
type Result struct {
	Snapshot *UsageSnapshot
	Err      error
}

// Reduce derives the next DisplayState from a refresh result, the previous
// state, and the current time. It is a pure function: no other state
// influences the output.
//
// Priority order: not configured wins over everything; a fetch failure
// flips the title to the error sentinel but leaves the previously rendered
// rows visible (stale-but-visible, signalled by the title alone); a success
// re-renders all rows.
func Reduce(res Result, prev DisplayState, now time.Time) DisplayState {
	switch {
	case errors.Is(res.Err, ErrNotConfigured):
		return DisplayState{
			Title:   TitleSetup,
			Session: "Session: " + notConfiguredText,
			Weekly:  "Weekly: " + notConfiguredText,
			Sonnet:  "Sonnet: " + notConfiguredText,
		}
	case res.Err != nil || res.Snapshot == nil:
		next := prev
		next.Title = TitleError
		return next
	}

	snapshot := res.Snapshot
	next := DisplayState{
		Title:   fmt.Sprintf("Claude: %.0f%%", snapshot.FiveHour.Percent()),
		Session: windowRow("Session", snapshot.FiveHour, now),
		Weekly:  windowRow("Weekly", snapshot.SevenDay, now),
	}

	if snapshot.SevenDaySonnet != nil {
		next.Sonnet = windowRow("Sonnet", snapshot.SevenDaySonnet, now)
	} else {
		next.Sonnet = "Sonnet: N/A"
	}

	return next
}

func windowRow(label string, window *UsageWindow, now time.Time) string {
	return fmt.Sprintf("%s: %.0f%% (resets in %s)", label, window.Percent(), Countdown(window.Reset(), now))
}
