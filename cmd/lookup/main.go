package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/safeeats/internal/lookup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := lookup.NewRootCommand(os.Stdout).ExecuteContext(ctx); err != nil {
		os.Stderr.WriteString("lookup: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
}
