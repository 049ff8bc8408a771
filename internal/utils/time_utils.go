package utils

import (
	"fmt"
	"math"
	"time"
)

// Now returns the current time in UTC. All timestamps stored by the
// orchestrator go through this so comparisons never cross time zones.
func Now() time.Time {
	return time.Now().UTC()
}

func NowPtr() *time.Time {
	return TimePtr(Now())
}

func TimePtr(t time.Time) *time.Time {
	return &t
}

// ToDate truncates a timestamp to midnight UTC, used to key a warmup
// session to its calendar day.
func ToDate(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

func StartOfDayInUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func EndOfDayInUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, time.UTC)
}

// IsEqualTimePtr compares two *time.Time values and returns true if both are
// nil or if both point to the same time.
func IsEqualTimePtr(t1, t2 *time.Time) bool {
	if t1 == nil && t2 == nil {
		return true
	}
	if t1 == nil || t2 == nil {
		return false
	}
	return (*t1).Equal(*t2)
}

// IsAfter compares two *time.Time, treating nil as far in the future.
func IsAfter(t1, t2 *time.Time) bool {
	if t1 == nil && t2 == nil {
		return false
	}
	if t1 == nil {
		return true
	}
	if t2 == nil {
		return false
	}
	return t1.After(*t2)
}

// ConvertToUTC parses an RFC 5322 Date header (or one of its common
// malformed variants seen in the wild) into UTC.
func ConvertToUTC(datetimeStr string) (time.Time, error) {
	layouts := []string{
		"2006-01-02T15:04:05Z07:00",
		"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
		"Mon, 2 Jan 2006 15:04:05 MST",
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 +0000 (GMT)",
		"2 Jan 2006 15:04:05 -0700",
	}

	var parsedTime time.Time
	var err error
	for _, layout := range layouts {
		parsedTime, err = time.Parse(layout, datetimeStr)
		if err == nil {
			return parsedTime.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse datetime string: %s", datetimeStr)
}

func CloseToNow(t time.Time) bool {
	return math.Abs(time.Since(t).Seconds()) < time.Minute.Seconds()
}
