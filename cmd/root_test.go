package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/jparise/timebot/internal/timeparse"
	"github.com/spf13/pflag"
)

func TestColorMode(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
		want    colorMode
	}{
		{
			name:    "auto",
			value:   "auto",
			wantErr: false,
			want:    colorAuto,
		},
		{
			name:    "always",
			value:   "always",
			wantErr: false,
			want:    colorAlways,
		},
		{
			name:    "never",
			value:   "never",
			wantErr: false,
			want:    colorNever,
		},
		{
			name:    "invalid value",
			value:   "invalid",
			wantErr: true,
		},
		{
			name:    "empty string",
			value:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c colorMode
			err := c.Set(tt.value)

			if tt.wantErr {
				if err == nil {
					t.Errorf("colorMode.Set(%q) expected error, got nil", tt.value)
				}
				return
			}

			if err != nil {
				t.Errorf("colorMode.Set(%q) unexpected error: %v", tt.value, err)
				return
			}

			if c != tt.want {
				t.Errorf("colorMode.Set(%q) = %v, want %v", tt.value, c, tt.want)
			}

			// Test String() method
			if c.String() != tt.value {
				t.Errorf("colorMode.String() = %q, want %q", c.String(), tt.value)
			}

			// Test Type() method
			if c.Type() != "colorMode" {
				t.Errorf("colorMode.Type() = %q, want %q", c.Type(), "colorMode")
			}
		})
	}
}

func TestParseOffsetFlag(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "empty", input: "", want: 0},
		{name: "zero label", input: "+00:00", want: 0},
		{name: "negative label", input: "-05:00", want: -300},
		{name: "half hour label", input: "+05:30", want: 330},
		{name: "negative minutes", input: "-300", want: -300},
		{name: "positive minutes", input: "180", want: 180},
		{name: "padded", input: "  60 ", want: 60},
		{name: "malformed label", input: "5:00", wantErr: true},
		{name: "words", input: "east", wantErr: true},
		{name: "out of range", input: "900", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOffsetFlag(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseOffsetFlag(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseOffsetFlag(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	// Flag values outlive a single Execute, so restore the defaults.
	resolveCmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := f.Value.Set(f.DefValue); err != nil {
			t.Fatalf("reset --%s: %v", f.Name, err)
		}
		f.Changed = false
	})
	color = colorNever

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if args == nil {
		args = []string{}
	}
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestResolveCommand(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantOut    []string
		wantStderr string
		wantErr    error
	}{
		{
			name: "abbreviation",
			args: []string{"resolve", "--now", "2026-01-15T12:00:00Z", "--color", "never", "let's", "meet", "at", "3", "PM", "EST"},
			wantOut: []string{
				"3:00 PM EST (-05:00) :clock3:",
				"instant: 2026-01-15T15:00:00-05:00",
				"*3:00 PM* is *<!date^1768507200^{time} in your time zone|8:00 PM UTC>*.",
			},
		},
		{
			name: "requester offset",
			args: []string{"resolve", "--now", "2026-01-15T12:00:00Z", "--offset", "-300", "DINNER AT 19:30"},
			wantOut: []string{
				"7:30 PM requester (-05:00) :clock7:",
				"instant: 2026-01-15T19:30:00-05:00",
			},
		},
		{
			name: "several times",
			args: []string{"resolve", "--now", "2026-01-15T12:00:00Z", "10am or 11am UTC"},
			wantOut: []string{
				"10:00 AM UTC (+00:00) :clock10:",
			},
			wantStderr: "2 times found, using the first",
		},
		{
			name:    "no time",
			args:    []string{"resolve", "HOW ARE YOU"},
			wantErr: timeparse.ErrNoMatch,
		},
		{
			name:    "invalid time",
			args:    []string{"resolve", "13:00 PM"},
			wantErr: timeparse.ErrInvalidTime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, stderr, err := runRoot(t, tt.args...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("resolve error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolve error = %v", err)
			}

			for _, want := range tt.wantOut {
				if !strings.Contains(stdout, want) {
					t.Errorf("stdout missing %q:\n%s", want, stdout)
				}
			}
			if tt.wantStderr != "" && !strings.Contains(stderr, tt.wantStderr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantStderr, stderr)
			}
		})
	}
}

func TestResolveCommand_FlagsReset(t *testing.T) {
	if _, _, err := runRoot(t, "resolve", "--offset", "+09:00", "--now", "2026-07-15", "8am"); err != nil {
		t.Fatalf("first run error = %v", err)
	}

	stdout, _, err := runRoot(t, "resolve", "8am")
	if err != nil {
		t.Fatalf("second run error = %v", err)
	}
	if !strings.Contains(stdout, "8:00 AM requester (+00:00)") {
		t.Errorf("second run kept earlier flags:\n%s", stdout)
	}
}

func TestResolveCommand_InvalidFlags(t *testing.T) {
	tests := [][]string{
		{"resolve", "--offset", "east", "3 PM"},
		{"resolve", "--now", "yesterday", "3 PM"},
		{"resolve", "--color", "sometimes", "3 PM"},
		{"resolve"},
	}

	for _, args := range tests {
		if _, _, err := runRoot(t, args...); err == nil {
			t.Errorf("Execute(%q) expected error", args)
		}
	}
}

func TestRootCommand_MissingToken(t *testing.T) {
	for _, key := range []string{"TOKEN", "TIMEBOT_TOKEN", "TIMEBOT_APP_TOKEN"} {
		t.Setenv(key, "")
	}

	_, _, err := runRoot(t)
	if err == nil || !strings.Contains(err.Error(), "bot token is required") {
		t.Errorf("Execute() error = %v, want missing token error", err)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	newLogger(&buf, false).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug output written at info level: %q", buf.String())
	}

	newLogger(&buf, true).Debug("shown", "channel", "C1")
	if !strings.Contains(buf.String(), "msg=shown") || !strings.Contains(buf.String(), "channel=C1") {
		t.Errorf("unexpected debug output: %q", buf.String())
	}
}
