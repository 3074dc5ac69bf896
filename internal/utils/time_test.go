package utils

import (
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{"empty", "", false},
		{"local", "Local", false},
		{"utc", "UTC", false},
		{"iana", "America/New_York", false},
		{"invalid", "Not/AZone", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Fatalf("LoadLocation(%q) error = %v, wantErr %v", tt.timezone, err, tt.wantErr)
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation(%q) returned nil location", tt.timezone)
			}
		})
	}
}

func TestDayKeyUsesLocation(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}
	// 03:00 UTC on Jan 2 is still Jan 1 in New York
	instant := time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC)
	if got := DayKey(instant, ny); got != "2025-01-01" {
		t.Errorf("DayKey = %s, want 2025-01-01", got)
	}
	if got := DayKey(instant, time.UTC); got != "2025-01-02" {
		t.Errorf("DayKey = %s, want 2025-01-02", got)
	}
}

func TestStartAndEndOfDay(t *testing.T) {
	ts := time.Date(2025, 3, 10, 14, 25, 0, 0, time.UTC)
	if got := StartOfDay(ts); !got.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("StartOfDay = %v", got)
	}
	end := EndOfDay(ts)
	if end.Day() != 10 || end.Add(time.Nanosecond).Day() != 11 {
		t.Errorf("EndOfDay = %v, expected last instant of the 10th", end)
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if !SameDay(a, a.Add(23*time.Hour)) {
		t.Error("expected same day")
	}
	if SameDay(a, a.Add(24*time.Hour)) {
		t.Error("expected different days")
	}
}

func TestDaysIn(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2025, time.January, 31},
		{2025, time.February, 28},
		{2024, time.February, 29},
		{2025, time.April, 30},
	}
	for _, tt := range tests {
		if got := DaysIn(tt.year, tt.month, time.UTC); got != tt.want {
			t.Errorf("DaysIn(%d, %s) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}

func TestParseDateTimeInLocation(t *testing.T) {
	for _, in := range []string{"2025-01-01 09:30", "2025-01-01T09:30"} {
		got, err := ParseDateTimeInLocation(in, time.UTC)
		if err != nil {
			t.Fatalf("ParseDateTimeInLocation(%q) error: %v", in, err)
		}
		if !got.Equal(time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC)) {
			t.Errorf("ParseDateTimeInLocation(%q) = %v", in, got)
		}
	}
	if _, err := ParseDateTimeInLocation("tomorrow", time.UTC); err == nil {
		t.Error("expected error for invalid input")
	}
}

func TestValidateTimeFormat(t *testing.T) {
	if !ValidateTimeFormat("23:59") {
		t.Error("23:59 should be valid")
	}
	if ValidateTimeFormat("24:61") {
		t.Error("24:61 should be invalid")
	}
}
