package timeparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// Abbreviation is a timezone abbreviation recognized in message text.
type Abbreviation string

const (
	PST Abbreviation = "PST"
	EST Abbreviation = "EST"
	GMT Abbreviation = "GMT"
	UTC Abbreviation = "UTC"
	CET Abbreviation = "CET"
	MSK Abbreviation = "MSK"
)

// abbreviationZones maps each abbreviation to its canonical IANA zone. The
// zone, not a fixed offset, is what gets resolved, so PST and EST follow
// daylight saving time.
var abbreviationZones = map[Abbreviation]string{
	PST: "America/Los_Angeles",
	EST: "America/New_York",
	GMT: "UTC",
	UTC: "UTC",
	CET: "Europe/Rome",
	MSK: "Europe/Moscow",
}

var abbreviationRx = regexp.MustCompile(`\b(PST|EST|GMT|UTC|CET|MSK)\b`)

// Abbreviations returns every supported abbreviation.
func Abbreviations() []Abbreviation {
	return []Abbreviation{PST, EST, GMT, UTC, CET, MSK}
}

// ZoneName returns the canonical IANA zone name for the abbreviation.
func (a Abbreviation) ZoneName() string {
	return abbreviationZones[a]
}

// Location loads the canonical zone for the abbreviation.
func (a Abbreviation) Location() (*time.Location, error) {
	name, ok := abbreviationZones[a]
	if !ok {
		return nil, fmt.Errorf("unknown timezone abbreviation %q", string(a))
	}
	return time.LoadLocation(name)
}

// LookupAbbreviation converts s to an Abbreviation, ignoring case.
func LookupAbbreviation(s string) (Abbreviation, bool) {
	a := Abbreviation(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := abbreviationZones[a]
	return a, ok
}

// FindAbbreviation returns the first whole-word abbreviation in text.
func FindAbbreviation(text string) (Abbreviation, bool) {
	m := abbreviationRx.FindString(strings.ToUpper(text))
	if m == "" {
		return "", false
	}
	return Abbreviation(m), true
}

// Zone is the offset a clock time was resolved against. It is either an
// AbbreviationZone or a RequesterZone.
type Zone interface {
	// OffsetMinutes is the signed offset from UTC in minutes.
	OffsetMinutes() int
	// Label is the offset formatted as ±HH:MM.
	Label() string

	zone()
}

// AbbreviationZone is a zone named explicitly in the message text.
type AbbreviationZone struct {
	Abbreviation Abbreviation
	Location     *time.Location
	Offset       int // minutes, at evaluation time
}

func (z AbbreviationZone) OffsetMinutes() int { return z.Offset }
func (z AbbreviationZone) Label() string      { return FormatOffset(z.Offset) }
func (AbbreviationZone) zone()                {}

// RequesterZone is the message author's own offset.
type RequesterZone struct {
	Offset int // minutes
}

func (z RequesterZone) OffsetMinutes() int { return z.Offset }
func (z RequesterZone) Label() string      { return FormatOffset(z.Offset) }
func (RequesterZone) zone()                {}

// ResolveAbbreviation computes the offset of the abbreviation's zone at now.
func ResolveAbbreviation(a Abbreviation, now time.Time) (AbbreviationZone, error) {
	loc, err := a.Location()
	if err != nil {
		return AbbreviationZone{}, err
	}
	_, offset := now.In(loc).Zone()
	return AbbreviationZone{
		Abbreviation: a,
		Location:     loc,
		Offset:       offset / 60,
	}, nil
}

// FormatOffset formats a signed minute offset as ±HH:MM.
func FormatOffset(minutes int) string {
	sign := '+'
	if minutes < 0 {
		sign = '-'
		minutes = -minutes
	}
	return fmt.Sprintf("%c%02d:%02d", sign, minutes/60, minutes%60)
}

// ParseOffset parses a ±HH:MM label back into signed minutes.
func ParseOffset(label string) (int, error) {
	if len(label) != 6 || label[3] != ':' {
		return 0, fmt.Errorf("invalid offset %q (expected ±HH:MM)", label)
	}

	var sign int
	switch label[0] {
	case '+':
		sign = 1
	case '-':
		sign = -1
	default:
		return 0, fmt.Errorf("invalid offset %q: missing sign", label)
	}

	for _, c := range label[1:3] + label[4:6] {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid offset %q: non-digit %q", label, c)
		}
	}

	hours, err := strconv.Atoi(label[1:3])
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q: %w", label, err)
	}
	minutes, err := strconv.Atoi(label[4:6])
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q: %w", label, err)
	}
	if minutes > 59 {
		return 0, fmt.Errorf("invalid offset %q: out of range", label)
	}

	return sign * (hours*60 + minutes), nil
}
