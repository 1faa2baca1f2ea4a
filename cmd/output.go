package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jparise/timebot/internal/bot"
	"github.com/jparise/timebot/internal/timeparse"
	"github.com/mgutz/ansi"
)

// Output handles resolve output formatting with optional color support.
type Output struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer

	cyan   func(string) string
	green  func(string) string
	white  func(string) string
	yellow func(string) string
}

// NewOutput creates a new Output with optional color support.
func NewOutput(stdout, stderr io.Writer, colorize bool) *Output {
	color := func(name string) func(string) string {
		if colorize {
			return ansi.ColorFunc(name)
		}
		return ansi.ColorFunc("")
	}

	return &Output{
		stdout: stdout,
		stderr: stderr,
		cyan:   color("cyan"),
		green:  color("green+b"),
		white:  color("white"),
		yellow: color("yellow"),
	}
}

// Result writes a resolved time in the format:
//
//	3:00 PM EST (-05:00) :clock3:
//	  instant: 2026-01-15T15:00:00-05:00
//	  reply:   *3:00 PM* is *<!date^...>*.
func (o *Output) Result(r timeparse.Result) {
	o.mu.Lock()
	defer o.mu.Unlock()

	source := "requester"
	if az, ok := r.Zone.(timeparse.AbbreviationZone); ok {
		source = string(az.Abbreviation)
	}

	fmt.Fprintf(o.stdout, "%s %s (%s) %s\n",
		o.green(r.Time),
		o.cyan(source),
		o.white(r.OffsetLabel),
		r.Emoji)
	fmt.Fprintf(o.stdout, "  instant: %s\n", r.Instant.Format(time.RFC3339))
	fmt.Fprintf(o.stdout, "  reply:   %s\n", bot.FormatReply(r))
}

// Warningf writes a formatted warning message to stderr.
func (o *Output) Warningf(format string, args ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.stderr, o.yellow("Warning: ")+format+"\n", args...)
}
