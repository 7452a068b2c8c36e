package audio

import "errors"

var (
	// ErrNoNodes means no reachable audio node is registered.
	ErrNoNodes = errors.New("no reachable audio nodes")

	// ErrNoResults means track resolution produced nothing after the
	// bounded retry loop was exhausted.
	ErrNoResults = errors.New("no results")
)
