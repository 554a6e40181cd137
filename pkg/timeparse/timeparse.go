// Package timeparse normalizes the date and time strings the unit types into
// the bot: DDMMYY or YYYY-MM-DD dates, HHMM or HH:MM times.
package timeparse

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidDate = errors.New("invalid date format: use DDMMYY or YYYY-MM-DD")
	ErrInvalidTime = errors.New("invalid time format: use HHMM or HH:MM")
)

var dateLayouts = []string{"020106", "2006-01-02"}

// ParseDate accepts DDMMYY or YYYY-MM-DD.
func ParseDate(value string) (time.Time, error) {
	raw := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidDate
}

// ToDDMMYY normalizes any accepted date input to DDMMYY.
func ToDDMMYY(value string) (string, error) {
	t, err := ParseDate(value)
	if err != nil {
		return "", err
	}
	return t.Format("020106"), nil
}

// ParseTime accepts HHMM or HH:MM.
func ParseTime(value string) (time.Time, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(value), ":", "")
	if len(raw) != 4 {
		return time.Time{}, ErrInvalidTime
	}
	t, err := time.Parse("1504", raw)
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}
	return t, nil
}

// ToHHMM normalizes any accepted time input to HHMM.
func ToHHMM(value string) (string, error) {
	t, err := ParseTime(value)
	if err != nil {
		return "", err
	}
	return t.Format("1504"), nil
}

// IsValid24hTime reports whether the value is an accepted time input.
func IsValid24hTime(value string) bool {
	_, err := ParseTime(value)
	return err == nil
}
