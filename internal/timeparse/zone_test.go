package timeparse

import (
	"testing"
	"time"
)

var (
	winter = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	summer = time.Date(2026, 7, 15, 12, 0, 0, 0, time.UTC)
)

func TestFindAbbreviation(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   Abbreviation
		wantOK bool
	}{
		{name: "upper", input: "3 PM EST", want: EST, wantOK: true},
		{name: "lower", input: "15:20 msk", want: MSK, wantOK: true},
		{name: "first wins", input: "1 pm pst or est", want: PST, wantOK: true},
		{name: "inside word", input: "my best estimate at 3pm", wantOK: false},
		{name: "absent", input: "dinner at 19:30", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindAbbreviation(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("FindAbbreviation(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("FindAbbreviation(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLookupAbbreviation(t *testing.T) {
	for _, a := range Abbreviations() {
		got, ok := LookupAbbreviation(" " + string(a) + " ")
		if !ok || got != a {
			t.Errorf("LookupAbbreviation(%q) = %q, %v", a, got, ok)
		}
		if _, err := a.Location(); err != nil {
			t.Errorf("%s.Location() error = %v", a, err)
		}
	}

	if _, ok := LookupAbbreviation("CST"); ok {
		t.Error("LookupAbbreviation(CST) should not be supported")
	}
	if _, err := Abbreviation("CST").Location(); err == nil {
		t.Error("Abbreviation(CST).Location() expected error")
	}
}

func TestResolveAbbreviation(t *testing.T) {
	tests := []struct {
		abbr   Abbreviation
		now    time.Time
		want   int
		wantTZ string
	}{
		{abbr: PST, now: winter, want: -480, wantTZ: "America/Los_Angeles"},
		{abbr: PST, now: summer, want: -420, wantTZ: "America/Los_Angeles"},
		{abbr: EST, now: winter, want: -300, wantTZ: "America/New_York"},
		{abbr: EST, now: summer, want: -240, wantTZ: "America/New_York"},
		{abbr: GMT, now: summer, want: 0, wantTZ: "UTC"},
		{abbr: UTC, now: winter, want: 0, wantTZ: "UTC"},
		{abbr: CET, now: winter, want: 60, wantTZ: "Europe/Rome"},
		{abbr: CET, now: summer, want: 120, wantTZ: "Europe/Rome"},
		{abbr: MSK, now: summer, want: 180, wantTZ: "Europe/Moscow"},
	}

	for _, tt := range tests {
		t.Run(string(tt.abbr)+"/"+tt.now.Month().String(), func(t *testing.T) {
			got, err := ResolveAbbreviation(tt.abbr, tt.now)
			if err != nil {
				t.Fatalf("ResolveAbbreviation() error = %v", err)
			}
			if got.OffsetMinutes() != tt.want {
				t.Errorf("offset = %d, want %d", got.OffsetMinutes(), tt.want)
			}
			if got.Location.String() != tt.wantTZ || tt.abbr.ZoneName() != tt.wantTZ {
				t.Errorf("location = %s, want %s", got.Location, tt.wantTZ)
			}
		})
	}
}

func TestFormatOffset(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{minutes: 0, want: "+00:00"},
		{minutes: -300, want: "-05:00"},
		{minutes: 180, want: "+03:00"},
		{minutes: 330, want: "+05:30"},
		{minutes: -570, want: "-09:30"},
		{minutes: 765, want: "+12:45"},
	}

	for _, tt := range tests {
		got := FormatOffset(tt.minutes)
		if got != tt.want {
			t.Errorf("FormatOffset(%d) = %q, want %q", tt.minutes, got, tt.want)
		}

		back, err := ParseOffset(got)
		if err != nil {
			t.Errorf("ParseOffset(%q) error = %v", got, err)
			continue
		}
		if back != tt.minutes {
			t.Errorf("ParseOffset(FormatOffset(%d)) = %d", tt.minutes, back)
		}
	}
}

func TestParseOffsetInvalid(t *testing.T) {
	for _, label := range []string{"", "05:00", "+5:00", "+05-00", "*05:00", "+0a:00", "+05:60", "++5:00", "+05:00:00"} {
		if _, err := ParseOffset(label); err == nil {
			t.Errorf("ParseOffset(%q) expected error", label)
		}
	}
}
