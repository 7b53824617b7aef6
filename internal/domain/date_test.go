package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("ParseDate returned error: %v", err)
	}
	if d.Year != 2024 || d.Month != time.February || d.Day != 29 {
		t.Errorf("ParseDate(2024-02-29) = %v", d)
	}

	if _, err := ParseDate("2023-02-29"); err == nil {
		t.Error("expected error for non-leap Feb 29")
	}
	if _, err := ParseDate("2024-13-01"); err == nil {
		t.Error("expected error for month 13")
	}
	if _, err := ParseDate("not-a-date"); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestDate_String(t *testing.T) {
	d := NewDate(2024, time.March, 5)
	if got := d.String(); got != "2024-03-05" {
		t.Errorf("String() = %q, want 2024-03-05", got)
	}
	if got := d.MonthKey(); got != "2024-03" {
		t.Errorf("MonthKey() = %q, want 2024-03", got)
	}
}

func TestDate_Compare(t *testing.T) {
	a := NewDate(2024, time.January, 31)
	b := NewDate(2024, time.February, 1)

	if !a.Before(b) {
		t.Error("Jan 31 should be before Feb 1")
	}
	if !b.After(a) {
		t.Error("Feb 1 should be after Jan 31")
	}
	if !a.Equal(NewDate(2024, time.January, 31)) {
		t.Error("equal dates should compare equal")
	}
}

func TestDate_AddDays(t *testing.T) {
	tests := []struct {
		start Date
		n     int
		want  Date
	}{
		{NewDate(2024, time.January, 31), 1, NewDate(2024, time.February, 1)},
		{NewDate(2024, time.February, 28), 1, NewDate(2024, time.February, 29)}, // leap year
		{NewDate(2023, time.February, 28), 1, NewDate(2023, time.March, 1)},
		{NewDate(2024, time.December, 31), 1, NewDate(2025, time.January, 1)},
		{NewDate(2024, time.March, 1), 7, NewDate(2024, time.March, 8)},
	}

	for _, tt := range tests {
		if got := tt.start.AddDays(tt.n); !got.Equal(tt.want) {
			t.Errorf("%v.AddDays(%d) = %v, want %v", tt.start, tt.n, got, tt.want)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.February, 29},
		{2023, time.February, 28},
		{2024, time.April, 30},
		{2024, time.January, 31},
		{2100, time.February, 28}, // century non-leap
	}

	for _, tt := range tests {
		if got := DaysInMonth(tt.year, tt.month); got != tt.want {
			t.Errorf("DaysInMonth(%d, %v) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := NewDate(2024, time.October, 26)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(data) != `"2024-10-26"` {
		t.Errorf("Marshal = %s, want \"2024-10-26\"", data)
	}

	var back Date
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if !back.Equal(d) {
		t.Errorf("round trip = %v, want %v", back, d)
	}
}
