package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Matches "+08:00", "-0530", "+8".
var offsetPattern = regexp.MustCompile(`^([+-])(\d{1,2}):?(\d{2})?$`)

// ParseTimezone resolves an explicit numeric offset or an IANA zone name.
// An empty string yields fallback.
func ParseTimezone(s string, fallback *time.Location) (*time.Location, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		if fallback == nil {
			return time.UTC, nil
		}
		return fallback, nil
	}

	if m := offsetPattern.FindStringSubmatch(s); m != nil {
		hours, _ := strconv.Atoi(m[2])
		minutes := 0
		if m[3] != "" {
			minutes, _ = strconv.Atoi(m[3])
		}
		if hours > 14 || minutes > 59 {
			return nil, Validation(fmt.Sprintf("Invalid timezone offset: %q", s))
		}
		offset := hours*3600 + minutes*60
		if m[1] == "-" {
			offset = -offset
		}
		return time.FixedZone(s, offset), nil
	}

	loc, err := time.LoadLocation(s)
	if err != nil {
		return nil, Validation(fmt.Sprintf("Invalid timezone: %q", s))
	}
	return loc, nil
}

// DayRange returns the absolute [start, end) instants of the calendar day
// date ("YYYY-MM-DD") in loc. time.Date normalises local times that fall in
// DST transitions, so the day may be 23 or 25 hours long.
func DayRange(date string, loc *time.Location) (time.Time, time.Time, error) {
	day, err := time.Parse(time.DateOnly, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, time.Time{}, Validation(fmt.Sprintf("Invalid date: %q (expected YYYY-MM-DD)", date))
	}
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := day.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	end := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	return start, end, nil
}
