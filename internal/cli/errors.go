package cli

import (
	"context"
	"errors"
	"fmt"
)

// reportedError marks an error the user has already been shown.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// Execute runs the root command and prints errors that were not surfaced by a command.
func (app *App) Execute(ctx context.Context, args []string) error {
	cmd := app.CreateRootCommand()
	if args != nil {
		cmd.SetArgs(args)
	}

	err := cmd.ExecuteContext(ctx)
	var shown *reportedError
	if err != nil && !errors.As(err, &shown) {
		_, _ = fmt.Fprintf(app.stderr, "Error: %v\n", err)
	}
	return err
}
