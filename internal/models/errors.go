package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid game state")
	ErrInsufficientFunds = errors.New("insufficient budget for investment")
	ErrInvalidBid        = errors.New("invalid bid")
	ErrInvalidPlant      = errors.New("invalid plant")
	ErrInvalidYear       = errors.New("invalid year")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInvalidInput      = errors.New("invalid input")
)

// InvalidStateError reports a flow transition attempted from the wrong state.
type InvalidStateError struct {
	Operation string
	Current   GameState
	Expected  []GameState
}

func (e *InvalidStateError) Error() string {
	expected := make([]string, 0, len(e.Expected))
	for _, s := range e.Expected {
		expected = append(expected, string(s))
	}
	return fmt.Sprintf("cannot %s in state %s: expected %s", e.Operation, e.Current, strings.Join(expected, " or "))
}

func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidState
}

// NotFoundError wraps ErrNotFound with the kind and id of the missing record.
func NotFoundError(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}
