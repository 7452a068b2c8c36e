// Package player implements the per-guild playback core: the track queue,
// the playback state machine, the now-playing display reconciler, the
// quorum vote used to gate skips, and the privilege predicate. Nothing in
// this package locks against concurrent callers; the owning session
// serializes all access.
package player

import (
	"fmt"
	"time"

	"github.com/jakobgrine/lavabot/internal/audio"
)

// Requester identifies the user a track was enqueued for.
type Requester struct {
	ID        string
	Name      string
	AvatarURL string
}

// Track is an audio-node track plus requester metadata. Immutable after
// construction.
type Track struct {
	audio.TrackInfo

	Requester   Requester
	RequestedAt time.Time
}

// NewTrack wraps node track info with the requesting user.
func NewTrack(info audio.TrackInfo, req Requester) Track {
	return Track{
		TrackInfo:   info,
		Requester:   req,
		RequestedAt: time.Now().UTC(),
	}
}

// FormatDuration renders a millisecond duration as m:ss or h:mm:ss.
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
