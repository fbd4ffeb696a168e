package pricing

import "errors"

var (
	// ErrInvalidArgument is returned when an item or rule set fails validation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrCalculation wraps unexpected failures raised while pricing a cart.
	ErrCalculation = errors.New("calculation error")
	// ErrNegativeTotal flags a computed total below zero.
	ErrNegativeTotal = errors.New("negative total")
)

// ArgumentError is a validation failure. Error includes the ErrInvalidArgument
// prefix; Msg is the bare text suitable for end users.
type ArgumentError struct {
	Msg string
}

func (e *ArgumentError) Error() string { return ErrInvalidArgument.Error() + ": " + e.Msg }

// Is reports ErrInvalidArgument as the matching sentinel.
func (e *ArgumentError) Is(target error) bool { return target == ErrInvalidArgument }
