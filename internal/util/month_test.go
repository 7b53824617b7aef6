package util

import "testing"

func TestPreviousMonth_SameYear(t *testing.T) {
	tests := []struct {
		year      int
		month     int
		wantYear  int
		wantMonth int
	}{
		{2026, 6, 2026, 5},   // June -> May
		{2026, 12, 2026, 11}, // Dec -> Nov
		{2026, 2, 2026, 1},   // Feb -> Jan
	}

	for _, tt := range tests {
		gotYear, gotMonth := PreviousMonth(tt.year, tt.month)
		if gotYear != tt.wantYear || gotMonth != tt.wantMonth {
			t.Errorf("PreviousMonth(%d, %d) = (%d, %d), want (%d, %d)",
				tt.year, tt.month, gotYear, gotMonth, tt.wantYear, tt.wantMonth)
		}
	}
}

func TestPreviousMonth_YearBoundary(t *testing.T) {
	// January -> December of previous year
	gotYear, gotMonth := PreviousMonth(2026, 1)
	if gotYear != 2025 || gotMonth != 12 {
		t.Errorf("PreviousMonth(2026, 1) = (%d, %d), want (2025, 12)", gotYear, gotMonth)
	}
}

func TestPreviousMonthKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"2026-06", "2026-05"},
		{"2026-01", "2025-12"},
		{"2024-03", "2024-02"},
	}

	for _, tt := range tests {
		got, err := PreviousMonthKey(tt.key)
		if err != nil {
			t.Fatalf("PreviousMonthKey(%q) returned error: %v", tt.key, err)
		}
		if got != tt.want {
			t.Errorf("PreviousMonthKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestParseMonthKey_Invalid(t *testing.T) {
	for _, key := range []string{"2026-13", "2026-00", "2026-6", "202606", "abcd-ef", ""} {
		if _, _, err := ParseMonthKey(key); err == nil {
			t.Errorf("ParseMonthKey(%q) expected error, got nil", key)
		}
	}
}
