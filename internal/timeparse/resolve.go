package timeparse

import (
	"fmt"
	"time"
)

// Result is a clock-time expression resolved to an absolute instant.
type Result struct {
	Time        string    // normalized "H:MM AM"
	Clock       Clock     // parsed clock time
	Instant     time.Time // the clock time today in the resolved zone
	OffsetLabel string    // ±HH:MM
	Emoji       string    // :clockN:
	Zone        Zone
}

// Resolver resolves clock-time expressions. The zero value uses time.Now.
type Resolver struct {
	// Now returns the evaluation time. It defaults to time.Now.
	Now func() time.Time
}

func (r *Resolver) now() time.Time {
	if r == nil || r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// Resolve finds the first clock time in text and resolves it. A timezone
// abbreviation in text takes precedence over requesterOffset, which is the
// author's UTC offset in minutes. It returns ErrNoMatch or ErrInvalidTime
// when text holds no usable time.
func (r *Resolver) Resolve(text string, requesterOffset int) (Result, error) {
	match, err := FindClock(text)
	if err != nil {
		return Result{}, err
	}

	clock, err := ParseClock(match)
	if err != nil {
		return Result{}, err
	}

	now := r.now()

	var zone Zone = RequesterZone{Offset: requesterOffset}
	if abbr, ok := FindAbbreviation(text); ok {
		az, err := ResolveAbbreviation(abbr, now)
		if err != nil {
			return Result{}, fmt.Errorf("failed to resolve %s: %w", abbr, err)
		}
		zone = az
	}

	return Result{
		Time:        clock.String(),
		Clock:       clock,
		Instant:     instant(clock, zone, now),
		OffsetLabel: zone.Label(),
		Emoji:       ClockEmoji(clock.Hour24()),
		Zone:        zone,
	}, nil
}

// instant places clock on the current calendar date of zone.
func instant(clock Clock, zone Zone, now time.Time) time.Time {
	loc := time.FixedZone(zone.Label(), zone.OffsetMinutes()*60)
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, clock.Hour24(), clock.Minute, 0, 0, loc)
}
