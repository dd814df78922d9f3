package catalog

import (
	"errors"
	"fmt"
)

// NotFoundError reports an unknown ingredient or recipe id. It is surfaced
// to the caller and never retried.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// DataIntegrityError reports that propagation was asked to operate on a
// reference that does not resolve; it is fatal to that operation.
type DataIntegrityError struct {
	Op     string
	Detail string
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Detail)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
