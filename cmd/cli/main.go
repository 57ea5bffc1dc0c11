// Command clustrmaps-crawler looks up people on a people-search site and
// saves their listing and contact details as CSV files, skipping anyone whose
// results are already on disk.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	exitFatal   = 1
	exitNoInput = 2
)

// exitError carries the process exit code of a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitFatal
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "clustrmaps-crawler",
		Short:         "Resumable people-search record harvester",
		Long:          "Looks up each person of an input file on the people-search site, extracts listing and quick-facts records, and writes them under the results directory. Re-running skips people whose results already exist.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	crawl := newCrawlCmd()
	root.AddCommand(crawl, newURLCmd())
	// running without a subcommand crawls
	root.Flags().AddFlagSet(crawl.Flags())
	root.RunE = crawl.RunE
	return root
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(exitCode(err))
	}
}
