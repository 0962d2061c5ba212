// Command reconcile compares a month of invoicing and payment exports from the acquirer, the
// clinic ledger and the clinic spreadsheet, and reports how far their totals diverge.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := newCLI(os.Stdout, os.Stderr)
	if err := c.execute(ctx, os.Args[1:]); err != nil {
		c.logger.Error("command failed", "error", err)
		cancel()
		os.Exit(1)
	}
}
