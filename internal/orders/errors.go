package orders

import "errors"

var (
	ErrNotFound = errors.New("order not found")

	// ErrUnavailable wraps every failure of the underlying collection.
	ErrUnavailable = errors.New("order store unavailable")
)
