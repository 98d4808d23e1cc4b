package job

import (
	"testing"
	"time"
)

func TestScheduleWindow_AM(t *testing.T) {
	start, end := scheduleWindow("2026-01-05", "AM")
	if start == nil || end == nil {
		t.Fatalf("expected a window")
	}
	if start.Hour() != 8 || end.Hour() != 12 {
		t.Fatalf("expected 8-12, got %d-%d", start.Hour(), end.Hour())
	}
	if start.Year() != 2026 || start.Month() != time.January || start.Day() != 5 {
		t.Fatalf("wrong day: %v", start)
	}
}

func TestScheduleWindow_UnknownWindowIsFullDay(t *testing.T) {
	start, end := scheduleWindow("2026-01-05", "")
	if start == nil || end == nil {
		t.Fatalf("expected a window")
	}
	if start.Hour() != 8 || end.Hour() != 17 {
		t.Fatalf("expected 8-17, got %d-%d", start.Hour(), end.Hour())
	}
}

func TestScheduleWindow_BadInputLeavesOpen(t *testing.T) {
	if start, end := scheduleWindow("", "AM"); start != nil || end != nil {
		t.Fatalf("expected open window for missing date")
	}
	if start, end := scheduleWindow("soonish", "AM"); start != nil || end != nil {
		t.Fatalf("expected open window for unparseable date")
	}
}
