package model

import "fmt"

// ErrUniqueConstraintViolation is returned when an object insertion violates
// a unique constraint.
type ErrUniqueConstraintViolation struct {
	Err error
}

func (e ErrUniqueConstraintViolation) Error() string {
	if e.Err == nil {
		return "Unique constraint violation"
	}
	return fmt.Sprintf(
		"Unique constraint violation in %s", e.Err.Error())
}
