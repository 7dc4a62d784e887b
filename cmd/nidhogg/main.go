package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/steviee/nidhogg/internal/cli"
	"github.com/steviee/nidhogg/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCommand(version.Version, version.Commit, version.Date, version.BuiltBy)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// JSON mode already wrote an error envelope to stdout.
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
