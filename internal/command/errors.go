package command

import "errors"

var (
	// ErrAbortSilently stops a command after a response was already sent;
	// the dispatcher must not report it to the invoker.
	ErrAbortSilently = errors.New("aborted silently")

	// ErrNotAllowed marks an invocation rejected by a permission check.
	ErrNotAllowed = errors.New("not allowed")
)
