package common

import (
	"testing"
	"time"
)

func TestDaysBetweenIgnoresTimeOfDay(t *testing.T) {
	a := time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC)
	b := time.Date(2025, 3, 4, 0, 1, 0, 0, time.UTC)

	if got := DaysBetween(a, b); got != 3 {
		t.Fatalf("expected 3 days, got %d", got)
	}
	if got := DaysBetween(b, a); got != -3 {
		t.Fatalf("expected -3 days, got %d", got)
	}
}

func TestAddDaysAcrossMonthBoundary(t *testing.T) {
	d := time.Date(2025, 1, 30, 15, 0, 0, 0, time.UTC)
	got := AddDays(d, 3)
	want := time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate(" 2025-06-10 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Format(DateLayout) != "2025-06-10" {
		t.Fatalf("unexpected date %s", got)
	}

	if _, err := ParseDate("10/06/2025"); err == nil {
		t.Fatalf("expected error for non-ISO date")
	}
}

func TestHasAny(t *testing.T) {
	if !HasAny("Patchy Light Rain", "rain", "snow") {
		t.Fatalf("expected match")
	}
	if HasAny("Sunny", "rain", "snow") {
		t.Fatalf("unexpected match")
	}
}
