package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shpitdev/contact-outreach/pkg/redact"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitConfig  = 2
)

// exitError carries the process exit code for a command failure.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func configErr(err error) error  { return &exitError{code: exitConfig, err: err} }
func failureErr(err error) error { return &exitError{code: exitFailure, err: err} }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	_, _ = fmt.Fprintf(stderr, "error: %s\n", redact.Secrets(err.Error()))

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Unknown commands and bad flags.
	return exitConfig
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "outreach",
		Short: "outreach finds contact details for a roster of people and emails them.",
		Long: `outreach reads a roster (NAME, CITY columns), looks for each person's
official website and social profiles with a web search backend, extracts
emails and phone numbers, sends a short outreach email when both are found,
and writes spreadsheet reports.

Settings come from the environment (a .env file is loaded if present) and
an optional YAML file passed with --config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newVersionCmd())
	return root
}
