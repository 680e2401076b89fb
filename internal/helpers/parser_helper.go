package helpers

import (
	"strconv"
	"time"
)

func StringToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// ParseIntPtr converts an optional query value, returning nil when the
// value is absent or malformed.
func ParseIntPtr(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// ParseDatePtr accepts a calendar day in YYYY-MM-DD form.
func ParseDatePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return nil
	}
	return &t
}

func ParseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}
