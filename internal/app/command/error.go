package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Error marks a failure of the command itself, as opposed to a usage error.
type Error struct {
	Command string
	Inner   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Command, e.Inner)
}

func (e *Error) Unwrap() error {
	return e.Inner
}

func WrapError(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}

	return &Error{
		Command: cmd.Name(),
		Inner:   err,
	}
}
