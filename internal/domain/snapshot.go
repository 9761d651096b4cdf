package domain

// UsageSnapshot is one parsed usage response. Windows are pointers so that
// an absent key (plan tiers without a Sonnet window) stays distinguishable
// from a present-but-empty record.
type UsageSnapshot struct {
	FiveHour       *UsageWindow `json:"five_hour"`
	SevenDay       *UsageWindow `json:"seven_day"`
	SevenDaySonnet *UsageWindow `json:"seven_day_sonnet"`
}

type UsageWindow struct {
	PercentUsed float64 `json:"percent_used"`
	ResetsAt    string  `json:"resets_at"`
}

// Percent returns the consumed percentage, defaulting to 0 for a missing
// window.
func (w *UsageWindow) Percent() float64 {
	if w == nil {
		return 0
	}

	return w.PercentUsed
}

func (w *UsageWindow) Reset() string {
	if w == nil {
		return ""
	}

	return w.ResetsAt
}
