package importer

import "errors"

var (
	// ErrTargetNotFound is returned when the database or container a
	// definition targets no longer exists.
	ErrTargetNotFound = errors.New("target database not found")
	// ErrOutputMissing is returned before any work starts when the output
	// folder does not exist and creating it is not allowed.
	ErrOutputMissing = errors.New("output folder does not exist")
)
