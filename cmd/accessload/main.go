// Command accessload generates an access-control dataset and replays badge crossings against it.
//
//	accessload -p 100000 -b 500 -g 2000 -a -s --dsn postgres://...
//
// Connection and runtime settings can also be given as ACCESSLOAD_* environment variables,
// e.g. ACCESSLOAD_DSN or ACCESSLOAD_DB_ADAPTER.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
