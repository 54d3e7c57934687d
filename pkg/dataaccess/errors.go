package dataaccess

import "errors"

var (
	// ErrAppealNotFound is returned when no appeal matches the given filter.
	ErrAppealNotFound = errors.New("no appeal found")

	// ErrAlreadyHandled is returned when a status transition does not match
	// the stored status. Either the appeal was resolved already, or a
	// concurrent worker got there first.
	ErrAlreadyHandled = errors.New("appeal already handled")

	// ErrLogNotFound is returned when no open log entry is linked to the
	// given channel, or no log exists for the given key.
	ErrLogNotFound = errors.New("no log entry found")
)
