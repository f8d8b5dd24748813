package controlroom

import (
	"fmt"
	"sort"
	"time"
)

// TimelineGap is a stretch of the guest's timeline with no recorded events.
type TimelineGap struct {
	Start       TimelineEvent
	End         TimelineEvent
	Days        int
	Description string
}

// TapesEngine finds silent stretches in the supplied timeline, the
// "missing tapes". Stateless; the timeline is owned upstream and never
// mutated here.
type TapesEngine struct {
	thresholdDays int
}

// NewTapesEngine creates a missing-tapes engine with the default gap
// threshold.
func NewTapesEngine() *TapesEngine {
	return &TapesEngine{thresholdDays: DefaultGapThresholdDays}
}

// FindGaps flags every adjacent pair of dated events further apart than the
// threshold, sorted descending by gap size. Events with zero dates are
// treated as non-contributing rather than aborting detection. Fewer than
// two dated events means no gaps.
func (e *TapesEngine) FindGaps(timeline []TimelineEvent) []TimelineGap {
	dated := make([]TimelineEvent, 0, len(timeline))
	for _, ev := range timeline {
		if !ev.Date.IsZero() {
			dated = append(dated, ev)
		}
	}
	if len(dated) < 2 {
		return nil
	}

	sort.Slice(dated, func(i, j int) bool { return dated[i].Date.Before(dated[j].Date) })

	var gaps []TimelineGap
	for i := 1; i < len(dated); i++ {
		days := int(dated[i].Date.Sub(dated[i-1].Date) / (24 * time.Hour))
		if days <= e.thresholdDays {
			continue
		}
		gaps = append(gaps, TimelineGap{
			Start:       dated[i-1],
			End:         dated[i],
			Days:        days,
			Description: describeGap(dated[i-1], dated[i], days),
		})
	}

	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].Days > gaps[j].Days })
	return gaps
}

// describeGap renders the human-readable month-count summary used on the
// receipt card.
func describeGap(start, end TimelineEvent, days int) string {
	months := days / 30
	if months < 1 {
		months = 1
	}
	return fmt.Sprintf("about %d months with nothing on the record, between %s (%s) and %s (%s)",
		months,
		start.Label, start.Date.Format("Jan 2006"),
		end.Label, end.Date.Format("Jan 2006"),
	)
}

// ReceiptCard builds the missing-tape payload for a detected gap.
func (e *TapesEngine) ReceiptCard(gap TimelineGap) ReceiptCard {
	return ReceiptCard{
		Type:           RevealMissingTape,
		DateStart:      gap.Start.Date,
		DateEnd:        gap.End.Date,
		GapDescription: gap.Description,
	}
}
