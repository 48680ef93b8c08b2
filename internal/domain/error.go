package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrTurnInProgress     = errors.New("another turn is already in progress for this user")
	ErrInvalidExecContext = errors.New("invalid executor context")
)
