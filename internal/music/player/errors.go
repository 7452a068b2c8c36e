package player

import "errors"

var (
	// ErrNotPlaying means the operation needs an active (or paused) track.
	ErrNotPlaying = errors.New("nothing is playing at the moment")

	// ErrNotConnected means the player is not joined to a voice channel.
	ErrNotConnected = errors.New("not connected to a voice channel")

	// ErrAlreadyPaused is the pause-when-paused case.
	ErrAlreadyPaused = errors.New("the player is already paused")

	// ErrNotPaused is the resume-when-playing case.
	ErrNotPaused = errors.New("the player is not paused")
)
