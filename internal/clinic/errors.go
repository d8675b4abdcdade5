package clinic

import (
	"errors"
	"fmt"
)

// ErrNotFound matches every *NotFoundError.
var ErrNotFound = errors.New("not found")

var ErrNotRefillable = errors.New("Prescription is not refillable or has no refills remaining")

// NotFoundError reports a missing record. For owned records a foreign id
// produces the same error as a missing one.
type NotFoundError struct {
	Entity string
	Owned  bool
}

func (e *NotFoundError) Error() string {
	if e.Owned {
		return fmt.Sprintf("%s not found or not yours", e.Entity)
	}
	return fmt.Sprintf("%s not found", e.Entity)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func notOwned(entity string) error { return &NotFoundError{Entity: entity, Owned: true} }
