package controlroom

import (
	"strings"
	"testing"
	"time"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestFindGapsFlagsLongSilence(t *testing.T) {
	engine := NewTapesEngine()

	timeline := []TimelineEvent{
		{ID: "a", Label: "wedding", Date: date(2004, 1, 10)},
		{ID: "b", Label: "move north", Date: date(2004, 7, 28)}, // 200 days on
	}

	gaps := engine.FindGaps(timeline)
	if len(gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(gaps))
	}
	if gaps[0].Days != 200 {
		t.Errorf("expected 200 days, got %d", gaps[0].Days)
	}
	if !strings.Contains(gaps[0].Description, "6 months") {
		t.Errorf("expected month count in description, got %q", gaps[0].Description)
	}
}

func TestFindGapsIgnoresShortIntervals(t *testing.T) {
	engine := NewTapesEngine()

	timeline := []TimelineEvent{
		{ID: "a", Label: "spring", Date: date(2010, 3, 1)},
		{ID: "b", Label: "summer", Date: date(2010, 8, 1)}, // 153 days
	}

	if gaps := engine.FindGaps(timeline); len(gaps) != 0 {
		t.Fatalf("expected no gaps, got %d", len(gaps))
	}
}

func TestFindGapsSortedDescending(t *testing.T) {
	engine := NewTapesEngine()

	timeline := []TimelineEvent{
		{ID: "a", Label: "one", Date: date(2000, 1, 1)},
		{ID: "b", Label: "two", Date: date(2000, 8, 1)},  // ~213 days
		{ID: "c", Label: "three", Date: date(2002, 1, 1)}, // ~518 days
	}

	gaps := engine.FindGaps(timeline)
	if len(gaps) != 2 {
		t.Fatalf("expected 2 gaps, got %d", len(gaps))
	}
	if gaps[0].Days < gaps[1].Days {
		t.Errorf("expected descending order, got %d then %d", gaps[0].Days, gaps[1].Days)
	}
}

func TestFindGapsSortsUnorderedTimeline(t *testing.T) {
	engine := NewTapesEngine()

	timeline := []TimelineEvent{
		{ID: "b", Label: "late", Date: date(2005, 12, 1)},
		{ID: "a", Label: "early", Date: date(2005, 1, 1)},
	}

	gaps := engine.FindGaps(timeline)
	if len(gaps) != 1 {
		t.Fatalf("expected 1 gap, got %d", len(gaps))
	}
	if gaps[0].Start.ID != "a" || gaps[0].End.ID != "b" {
		t.Errorf("expected chronological pairing, got %s → %s", gaps[0].Start.ID, gaps[0].End.ID)
	}

	// The caller's timeline must not be reordered.
	if timeline[0].ID != "b" {
		t.Error("input timeline was mutated")
	}
}

func TestFindGapsSkipsZeroDates(t *testing.T) {
	engine := NewTapesEngine()

	timeline := []TimelineEvent{
		{ID: "a", Label: "dated", Date: date(2001, 1, 1)},
		{ID: "x", Label: "undated"},
		{ID: "b", Label: "dated too", Date: date(2002, 1, 1)},
	}

	gaps := engine.FindGaps(timeline)
	if len(gaps) != 1 {
		t.Fatalf("expected the undated event to be skipped, got %d gaps", len(gaps))
	}
}

func TestFindGapsNeedsTwoDatedEvents(t *testing.T) {
	engine := NewTapesEngine()

	if gaps := engine.FindGaps([]TimelineEvent{{ID: "a", Date: date(2001, 1, 1)}}); gaps != nil {
		t.Errorf("expected nil for a single event, got %v", gaps)
	}
	if gaps := engine.FindGaps(nil); gaps != nil {
		t.Errorf("expected nil for an empty timeline, got %v", gaps)
	}
}

func TestReceiptCard(t *testing.T) {
	engine := NewTapesEngine()

	gap := engine.FindGaps([]TimelineEvent{
		{ID: "a", Label: "wedding", Date: date(2004, 1, 10)},
		{ID: "b", Label: "move", Date: date(2004, 7, 28)},
	})[0]

	card := engine.ReceiptCard(gap)
	if card.Type != RevealMissingTape {
		t.Errorf("expected type %s, got %s", RevealMissingTape, card.Type)
	}
	if !card.DateStart.Equal(gap.Start.Date) || !card.DateEnd.Equal(gap.End.Date) {
		t.Error("receipt card dates do not match the gap")
	}
	if card.GapDescription != gap.Description {
		t.Error("receipt card description does not match the gap")
	}
}
