package bot

import (
	"fmt"

	"github.com/jparise/timebot/internal/timeparse"
)

// fallbackLayout is shown by clients that cannot render date tokens.
const fallbackLayout = "3:04 PM MST"

// FormatReply builds the reply text for a resolved time, e.g.
//
//	*3:00 PM* is *<!date^1768510800^{time} in your time zone|8:00 PM UTC>*.
func FormatReply(r timeparse.Result) string {
	return fmt.Sprintf("*%s* is *%s*.", r.Time, DateToken(r))
}

// DateToken returns a Slack date token that each viewer sees in their own
// timezone.
func DateToken(r timeparse.Result) string {
	return fmt.Sprintf("<!date^%d^{time} in your time zone|%s>",
		r.Instant.Unix(), r.Instant.UTC().Format(fallbackLayout))
}
