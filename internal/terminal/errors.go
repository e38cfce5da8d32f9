package terminal

import "errors"

var (
	// ErrInvalidChoice is returned for menu input that is not a number between 1 and 4.
	ErrInvalidChoice = errors.New("invalid menu choice")

	// ErrActionUnavailable indicates the action is not offered by the current view.
	ErrActionUnavailable = errors.New("action not available on current view")

	// ErrInvalidSession is returned for malformed session identifiers.
	ErrInvalidSession = errors.New("invalid session id")
)
