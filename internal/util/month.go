package util

import (
	"fmt"
	"regexp"
	"strconv"
)

var monthKeyPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// ParseMonthKey splits a YYYY-MM month key into year and month
func ParseMonthKey(key string) (int, int, error) {
	m := monthKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid month key %q", key)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month key %q", key)
	}
	return year, month, nil
}

// FormatMonthKey builds a YYYY-MM month key
func FormatMonthKey(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// PreviousMonth returns the year and month for the previous month
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// PreviousMonthKey returns the month key immediately preceding the given one
func PreviousMonthKey(key string) (string, error) {
	year, month, err := ParseMonthKey(key)
	if err != nil {
		return "", err
	}
	py, pm := PreviousMonth(year, month)
	return FormatMonthKey(py, pm), nil
}
