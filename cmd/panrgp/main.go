// Command panrgp predicts regions of genomic plasticity in a pangenome. It
// ingests annotated genomes into a persistent store, runs the prediction, and
// lists, locates or exports the resulting regions.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"panrgp/internal/core"
	"panrgp/internal/rgp"
)

var exitFunc = os.Exit

// Exit codes returned by run.
const (
	exitOK           = 0
	exitFailure      = 1
	exitPrecondition = 2
	exitUsage        = 64
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	exitFunc(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(stderr, "panrgp: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

func exitCode(err error) int {
	var usage usageError
	switch {
	case errors.As(err, &usage), errors.Is(err, rgp.ErrInvalidParams):
		return exitUsage
	case errors.Is(err, core.ErrMissingAnnotations),
		errors.Is(err, core.ErrMissingFamilies),
		errors.Is(err, core.ErrMissingPartitions),
		errors.Is(err, core.ErrRegionsExist),
		errors.Is(err, core.ErrNoRegions):
		return exitPrecondition
	}
	return exitFailure
}

// usageError marks malformed command lines.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }
