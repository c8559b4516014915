// Command lunarctl converts dates between the Korean lunar and Gregorian
// calendars from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/zapponejosh/lunar-api/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
