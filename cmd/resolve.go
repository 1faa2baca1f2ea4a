package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cli/go-gh/v2/pkg/term"
	"github.com/jparise/timebot/internal/timeparse"
	"github.com/spf13/cobra"
)

// colorMode represents when to use colored output.
type colorMode string

const (
	colorAuto   colorMode = "auto"
	colorAlways colorMode = "always"
	colorNever  colorMode = "never"
)

// String is used both by fmt.Print and by Cobra in help text.
func (c *colorMode) String() string {
	return string(*c)
}

// Set must have pointer receiver to validate and set the value.
func (c *colorMode) Set(v string) error {
	switch v {
	case "auto", "always", "never":
		*c = colorMode(v)
		return nil
	default:
		return fmt.Errorf("must be one of \"auto\", \"always\", or \"never\"")
	}
}

// Type is only used in help text.
func (c *colorMode) Type() string {
	return "colorMode"
}

var (
	// Flags.
	color         = colorAuto
	resolveOffset string
	resolveNow    string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <text>...",
	Short: "Resolve the time in a message without connecting to Slack",
	Long: `resolve runs the same parsing the bot applies to channel messages and
prints the result. Arguments are joined into a single message.

--offset is the author's UTC offset, used when the text has no timezone
abbreviation. It may be given as minutes (-300) or as ±HH:MM (-05:00).

Examples:
  timebot resolve "let's meet at 3 PM EST"
  timebot resolve --offset -05:00 dinner at 19:30
  timebot resolve --now 2026-07-01T12:00:00Z 9am pst`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveOffset, "offset", "+00:00",
		"author's UTC offset in minutes or ±HH:MM")
	resolveCmd.Flags().StringVar(&resolveNow, "now", "",
		"evaluate at this time (RFC3339, date, or Unix seconds) instead of now")
	resolveCmd.Flags().Var(&color, "color",
		"colorize output: auto, always, never")
}

// parseOffsetFlag parses an offset given as signed minutes or ±HH:MM.
func parseOffsetFlag(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if strings.Contains(s, ":") {
		return timeparse.ParseOffset(s)
	}

	minutes, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid offset %q (expected minutes or ±HH:MM)", s)
	}
	if minutes < -14*60 || minutes > 14*60 {
		return 0, fmt.Errorf("offset %d is out of range", minutes)
	}
	return minutes, nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	offset, err := parseOffsetFlag(resolveOffset)
	if err != nil {
		return fmt.Errorf("invalid --offset: %w", err)
	}

	resolver := &timeparse.Resolver{}
	if resolveNow != "" {
		now, err := timeparse.ParseReference(resolveNow)
		if err != nil {
			return fmt.Errorf("invalid --now: %w", err)
		}
		resolver.Now = func() time.Time { return now }
	}

	var colorize bool
	switch color {
	case colorAlways:
		colorize = true
	case colorNever:
		colorize = false
	case colorAuto:
		terminal := term.FromEnv()
		colorize = terminal.IsColorEnabled()
	}

	text := strings.Join(args, " ")
	result, err := resolver.Resolve(text, offset)
	if err != nil {
		return fmt.Errorf("%q: %w", text, err)
	}

	out := NewOutput(cmd.OutOrStdout(), cmd.ErrOrStderr(), colorize)
	if n := len(timeparse.FindClocks(text)); n > 1 {
		out.Warningf("%d times found, using the first", n)
	}
	out.Result(result)
	return nil
}
