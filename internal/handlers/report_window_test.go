package handlers

import (
	"testing"
	"time"
)

func TestReportWindowDaily(t *testing.T) {
	now := time.Date(2025, 3, 12, 15, 30, 0, 0, time.UTC)
	from, to, err := reportWindow("daily", "", "", now)
	if err != nil {
		t.Fatalf("reportWindow returned error: %v", err)
	}
	if from.Day() != 12 || from.Hour() != 0 {
		t.Fatalf("expected window to start at midnight of the same day, got %v", from)
	}
	if to.Day() != 12 || to.Hour() != 23 {
		t.Fatalf("expected window to end the same day, got %v", to)
	}
}

func TestReportWindowWeeklyStartsMonday(t *testing.T) {
	// 2025-03-12 is a Wednesday.
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	from, _, err := reportWindow("weekly", "", "", now)
	if err != nil {
		t.Fatalf("reportWindow returned error: %v", err)
	}
	if from.Weekday() != time.Monday || from.Day() != 10 {
		t.Fatalf("expected week to start Monday 2025-03-10, got %v", from)
	}
}

func TestReportWindowWeeklySundayBelongsToPreviousMonday(t *testing.T) {
	// 2025-03-16 is a Sunday.
	now := time.Date(2025, 3, 16, 10, 0, 0, 0, time.UTC)
	from, _, err := reportWindow("weekly", "", "", now)
	if err != nil {
		t.Fatalf("reportWindow returned error: %v", err)
	}
	if from.Weekday() != time.Monday || from.Day() != 10 {
		t.Fatalf("expected Sunday to fall in the week of Monday the 10th, got %v", from)
	}
}

func TestReportWindowMonthly(t *testing.T) {
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	from, to, err := reportWindow("monthly", "", "", now)
	if err != nil {
		t.Fatalf("reportWindow returned error: %v", err)
	}
	if from.Day() != 1 || from.Month() != time.March {
		t.Fatalf("expected window to start March 1, got %v", from)
	}
	if to.Month() != time.March || to.Day() != 31 {
		t.Fatalf("expected window to end March 31, got %v", to)
	}
}

func TestReportWindowCustom(t *testing.T) {
	now := time.Now()
	from, to, err := reportWindow("custom", "2025-01-01", "2025-01-31", now)
	if err != nil {
		t.Fatalf("reportWindow returned error: %v", err)
	}
	if from.Day() != 1 || to.Day() != 31 {
		t.Fatalf("expected January window, got %v to %v", from, to)
	}
	if !to.After(from) {
		t.Fatal("expected end after start")
	}
}

func TestReportWindowCustomRejectsInvertedRange(t *testing.T) {
	if _, _, err := reportWindow("custom", "2025-02-01", "2025-01-01", time.Now()); err == nil {
		t.Fatal("expected error for endDate before startDate")
	}
}

func TestReportWindowRejectsUnknownFilter(t *testing.T) {
	if _, _, err := reportWindow("quarterly", "", "", time.Now()); err == nil {
		t.Fatal("expected error for unsupported filter")
	}
}
