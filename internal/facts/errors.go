package facts

import "errors"

// ErrSourceNotFound is returned when the fact file cannot be opened
var ErrSourceNotFound = errors.New("fact source could not be opened")

// ErrEmptySource is returned when the fact file has no lines at all
var ErrEmptySource = errors.New("fact source is empty")

// ErrInsufficientData is returned when fewer non-empty lines exist than requested,
// or when the requested count is not positive
var ErrInsufficientData = errors.New("not enough facts in source")
