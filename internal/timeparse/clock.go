// Package timeparse extracts clock-time expressions from free-form text and
// resolves them to absolute instants.
package timeparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrNoMatch means the text contains no clock-time expression.
	ErrNoMatch = errors.New("no time expression found")
	// ErrInvalidTime means a candidate was found but is not a valid time of day.
	ErrInvalidTime = errors.New("invalid time of day")
)

// clockRx matches clock times in upper-cased text:
//
//	12:12AM, 1:02 AM, 1 AM
//	23:23, 11:11, 10:10 PM, 09:30
//
// A single leading zero is allowed and is not part of the hour group.
var clockRx = regexp.MustCompile(`\b0?([1-9]\d?)(?::(\d{2})(?: ?(AM|PM)\b)?| ?(AM|PM)\b)`)

// Meridiem is the AM/PM half of a 12-hour clock time.
type Meridiem string

const (
	NoMeridiem Meridiem = ""
	AM         Meridiem = "AM"
	PM         Meridiem = "PM"
)

// Clock is a time of day written on a 12-hour clock.
type Clock struct {
	Hour     int // 1-12
	Minute   int // 0-59
	Meridiem Meridiem
}

// Hour24 returns the hour on a 24-hour clock (0-23).
func (c Clock) Hour24() int {
	h := c.Hour % 12
	if c.Meridiem == PM {
		h += 12
	}
	return h
}

// String formats the clock as "H:MM AM".
func (c Clock) String() string {
	return fmt.Sprintf("%d:%02d %s", c.Hour, c.Minute, c.Meridiem)
}

// FindClock returns the first clock-time substring in text, or ErrNoMatch.
// Matching is case-insensitive. A zero-padded hour is returned without its
// leading zero, so "09:30" yields "9:30".
func FindClock(text string) (string, error) {
	m := clockRx.FindString(strings.ToUpper(text))
	if m == "" {
		return "", ErrNoMatch
	}
	return trimMatch(m), nil
}

// FindClocks returns every clock-time substring in text, in order.
func FindClocks(text string) []string {
	matches := clockRx.FindAllString(strings.ToUpper(text), -1)
	for i, m := range matches {
		matches[i] = trimMatch(m)
	}
	return matches
}

func trimMatch(m string) string {
	return strings.TrimPrefix(strings.TrimSpace(m), "0")
}

// ParseClock parses a single clock-time expression such as "1:05pm",
// "13:05" or "1 PM". A missing minute defaults to zero. Without a meridiem
// the hour is read on a 24-hour clock, so "13:05" is 1:05 PM and "11:11" is
// 11:11 AM.
func ParseClock(s string) (Clock, error) {
	m := clockRx.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return Clock{}, fmt.Errorf("%w: %q", ErrNoMatch, s)
	}

	hour, err := strconv.Atoi(m[1])
	if err != nil {
		return Clock{}, fmt.Errorf("%w: %q: %w", ErrInvalidTime, s, err)
	}

	minute := 0
	if m[2] != "" {
		minute, err = strconv.Atoi(m[2])
		if err != nil {
			return Clock{}, fmt.Errorf("%w: %q: %w", ErrInvalidTime, s, err)
		}
	}
	if minute > 59 {
		return Clock{}, fmt.Errorf("%w: %q: minute out of range", ErrInvalidTime, s)
	}

	meridiem := Meridiem(m[3] + m[4])
	if meridiem != NoMeridiem {
		if hour > 12 {
			return Clock{}, fmt.Errorf("%w: %q: hour out of range for %s", ErrInvalidTime, s, meridiem)
		}
		return Clock{Hour: hour, Minute: minute, Meridiem: meridiem}, nil
	}

	// Bare times are 24-hour.
	switch {
	case hour > 23:
		return Clock{}, fmt.Errorf("%w: %q: hour out of range", ErrInvalidTime, s)
	case hour < 12:
		return Clock{Hour: hour, Minute: minute, Meridiem: AM}, nil
	case hour == 12:
		return Clock{Hour: 12, Minute: minute, Meridiem: PM}, nil
	default:
		return Clock{Hour: hour - 12, Minute: minute, Meridiem: PM}, nil
	}
}

// ClockEmoji returns the Slack clock-face emoji for a 24-hour hour value.
// Hours 0 and 12 both map to ":clock12:".
func ClockEmoji(hour24 int) string {
	h := hour24 % 12
	if h < 0 {
		h += 12
	}
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf(":clock%d:", h)
}
