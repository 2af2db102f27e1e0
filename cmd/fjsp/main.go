package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Exit codes; 20 marks a solve that ended without schedule
const (
	exitOK         = 0
	exitFailure    = 1
	exitNoSchedule = 20
)

// exitError carries a non-zero exit code whose cause was already reported on the command output
type exitError struct {
	code   int
	reason string
}

func (err *exitError) Error() string {
	return err.reason
}

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
	var exit *exitError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &exit):
		return exit.code
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitFailure
	}
}
