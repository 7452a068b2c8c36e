// Package audio defines the boundary to the external audio-rendering node:
// the track data carried over it, the Node client interface, and a
// process-wide Registry of configured nodes. The playback core only ever
// talks to this package; the concrete wire client lives in the lavalink
// subpackage.
package audio

import "context"

// TrackInfo describes a playable item as reported by an audio node.
// Encoded is the node-assigned opaque identifier used to start playback.
type TrackInfo struct {
	Encoded    string
	Identifier string
	Title      string
	URI        string
	Author     string
	Duration   int64 // milliseconds
	ArtworkURL string
	Stream     bool
}

// LoadType classifies the result of a track resolution.
type LoadType string

const (
	LoadTypeTrack    LoadType = "track"
	LoadTypePlaylist LoadType = "playlist"
	LoadTypeSearch   LoadType = "search"
	LoadTypeEmpty    LoadType = "empty"
	LoadTypeError    LoadType = "error"
)

// LoadResult is what a node returns for a resolution query.
type LoadResult struct {
	Type         LoadType
	Tracks       []TrackInfo
	PlaylistName string
}

// EndReason tells why a track stopped playing.
type EndReason string

const (
	EndReasonFinished  EndReason = "finished"
	EndReasonStopped   EndReason = "stopped"
	EndReasonStuck     EndReason = "stuck"
	EndReasonException EndReason = "exception"
)

// MayRepeat reports whether repeat-one should re-insert the ended track.
// An explicit stop (which also covers skip) breaks the repeat loop.
func (r EndReason) MayRepeat() bool {
	return r != EndReasonStopped
}

// EventHandler receives playback events from a node. Implementations must
// tolerate events for guilds they no longer track. Nodes deliver events from
// their own read goroutine, never from inside a Node method call.
type EventHandler interface {
	OnTrackEnd(guildID string, track TrackInfo, reason EndReason)
	OnPlayerUpdate(guildID string, positionMs int64)
}

// Node is the client handle for one audio node. All methods are safe for
// concurrent use across guilds; per-guild call ordering is the caller's job.
type Node interface {
	Name() string
	Available() bool

	Connect(ctx context.Context, guildID, voiceChannelID string) error
	Play(ctx context.Context, guildID string, track TrackInfo) error
	Pause(ctx context.Context, guildID string, paused bool) error
	Seek(ctx context.Context, guildID string, positionMs int64) error
	SetVolume(ctx context.Context, guildID string, volume int) error
	Stop(ctx context.Context, guildID string) error
	Destroy(ctx context.Context, guildID string) error

	Resolve(ctx context.Context, identifier string) (*LoadResult, error)

	Close(ctx context.Context) error
}
