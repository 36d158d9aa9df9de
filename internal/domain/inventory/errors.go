package inventory

import "errors"

var (
	// ErrNoData is reported when the push channel delivers an empty payload
	ErrNoData = errors.New("no data available")

	// ErrItemNotFound is returned when an id is absent from the snapshot
	ErrItemNotFound = errors.New("inventory item not found")

	// ErrNoSnapshot is returned before the first payload has arrived
	ErrNoSnapshot = errors.New("inventory snapshot not loaded yet")

	// ErrInvalidThreshold is returned for thresholds that are not whole numbers >= 0
	ErrInvalidThreshold = errors.New("threshold must be a whole number of zero or more")
)
