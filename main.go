// timebot is a Slack bot that replies to messages mentioning a clock time
// with that time rendered in each reader's own timezone.
package main

import (
	"fmt"
	"os"

	"github.com/jparise/timebot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
