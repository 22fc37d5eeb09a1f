package scoring

import (
	"sort"
	"time"
)

const (
	DefaultEventWindow = 14 * 24 * time.Hour

	EventAdjustmentMin = -30.0
	EventAdjustmentMax = 20.0

	sentimentScale      = 5.0
	maxReasonTextLength = 180
)

// Event tags with a rule in EventTagRules.
const (
	TagDebtRestructuring = "debt_restructuring"
	TagDefaultWarning    = "default_warning"
	TagGuidanceCut       = "guidance_cut"
	TagLawsuit           = "lawsuit"
	TagBondIssueSuccess  = "bond_issue_success"
	TagGuidanceRaise     = "guidance_raise"
)

// EventTagRules maps a tag to its score delta. Unlisted tags contribute nothing.
var EventTagRules = map[string]float64{
	TagDebtRestructuring: -15,
	TagDefaultWarning:    -25,
	TagGuidanceCut:       -10,
	TagLawsuit:           -8,
	TagBondIssueSuccess:  6,
	TagGuidanceRaise:     8,
}

// EventInput is a qualitative event as seen by the adjuster.
type EventInput struct {
	Text        string
	Date        time.Time
	Sentiment   *float64
	Tags        []string
	ImpactScore *float64
}

// EventReason records one event's contribution to the adjustment.
type EventReason struct {
	Event string  `json:"event"`
	Delta float64 `json:"delta"`
}

// EventAdjustment is the clipped aggregate delta plus the events behind it.
type EventAdjustment struct {
	Delta   float64
	Reasons []EventReason
}

// EventAdjuster turns recent events into a bounded score delta.
type EventAdjuster struct {
	Window time.Duration
}

func NewEventAdjuster(window time.Duration) *EventAdjuster {
	if window <= 0 {
		window = DefaultEventWindow
	}
	return &EventAdjuster{Window: window}
}

// WindowStart is the earliest event date that still counts at asOf.
func (a *EventAdjuster) WindowStart(asOf time.Time) time.Time {
	return asOf.Add(-a.Window)
}

// Adjust scores the events inside [asOf-window, asOf], newest first.
func (a *EventAdjuster) Adjust(events []EventInput, asOf time.Time) EventAdjustment {
	start := a.WindowStart(asOf)
	recent := make([]EventInput, 0, len(events))
	for _, e := range events {
		if e.Date.Before(start) || e.Date.After(asOf) {
			continue
		}
		recent = append(recent, e)
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Date.After(recent[j].Date)
	})

	result := EventAdjustment{Reasons: []EventReason{}}
	var total float64
	for _, e := range recent {
		delta := EventDelta(e)
		if delta != 0 {
			result.Reasons = append(result.Reasons, EventReason{
				Event: truncateRunes(e.Text, maxReasonTextLength),
				Delta: round(delta, 2),
			})
		}
		total += delta
	}
	result.Delta = clip(total, EventAdjustmentMin, EventAdjustmentMax)
	return result
}

// EventDelta is the unclipped delta of a single event.
func EventDelta(e EventInput) float64 {
	seen := make(map[string]struct{}, len(e.Tags))
	var base float64
	for _, tag := range e.Tags {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		base += EventTagRules[tag]
	}

	var sentiment, impact float64
	if e.Sentiment != nil {
		sentiment = *e.Sentiment
	}
	if e.ImpactScore != nil {
		impact = *e.ImpactScore
	}
	return base + sentiment*sentimentScale + impact
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
