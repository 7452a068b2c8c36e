// Package session ties one guild's queue, playback controller and display
// reconciler together behind a single mutex. Commands, transport controls
// and node events for the same guild are serialized here; different guilds
// never block each other.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jakobgrine/lavabot/internal/audio"
	"github.com/jakobgrine/lavabot/internal/music/player"
)

// Session is the isolated playback context of one guild.
type Session struct {
	guildID string
	log     zerolog.Logger

	mu   sync.Mutex
	ctrl *player.Controller
	vote *player.Vote
}

// GuildID returns the guild this session belongs to.
func (s *Session) GuildID() string {
	return s.guildID
}

// SetTextChannel points the status display at a text channel. Commands call
// this so the display follows wherever playback was last requested.
func (s *Session) SetTextChannel(channelID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.SetTextChannel(channelID)
}

// Connect joins the given voice channel.
func (s *Session) Connect(ctx context.Context, voiceChannelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Connect(ctx, voiceChannelID)
}

// Enqueue appends tracks and starts playback if the player is idle.
func (s *Session) Enqueue(ctx context.Context, tracks []player.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Enqueue(ctx, tracks)
}

// Pause suspends the current track.
func (s *Session) Pause(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Pause(ctx)
}

// Resume continues a paused track.
func (s *Session) Resume(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Resume(ctx)
}

// Seek moves the playback position.
func (s *Session) Seek(ctx context.Context, positionMs int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Seek(ctx, positionMs)
}

// SetVolume applies a pre-validated volume.
func (s *Session) SetVolume(ctx context.Context, volume int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.SetVolume(ctx, volume)
}

// SetRepeat toggles repeat-one.
func (s *Session) SetRepeat(enable bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.SetRepeat(enable)
}

// Stop force-ends the current track; the queue advances when the node
// reports the track end.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Stop(ctx)
}

// Destroy tears the whole session down. Idempotent.
func (s *Session) Destroy(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Destroy(ctx)
}

// OnTrackEnd funnels a node track-end signal into the controller.
func (s *Session) OnTrackEnd(ctx context.Context, info audio.TrackInfo, reason audio.EndReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ctrl.HandleTrackEnd(ctx, info, reason); err != nil {
		s.log.Error().Err(err).Msg("advancing after track end failed")
	}
}

// OnPlayerUpdate records the node's reported playback position.
func (s *Session) OnPlayerUpdate(positionMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.HandlePlayerUpdate(positionMs)
}

// Position returns the playback position of the current track in
// milliseconds, as of the node's last report.
func (s *Session) Position() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Position()
}

// State returns the playback state.
func (s *Session) State() player.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.State()
}

// Current returns the playing track, if any.
func (s *Session) Current() *player.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Current()
}

// QueueTracks returns a copy of the queued tracks.
func (s *Session) QueueTracks() []player.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Queue().Tracks()
}

// QueueLen returns the number of queued tracks.
func (s *Session) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Queue().Len()
}

// ShuffleQueue permutes the queue.
func (s *Session) ShuffleQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.Queue().Shuffle()
}

// RepeatOne reports the repeat flag.
func (s *Session) RepeatOne() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.RepeatOne()
}

// Connected reports whether the session is joined to a voice channel.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Connected()
}

// VoiceChannelID returns the joined voice channel, empty if disconnected.
func (s *Session) VoiceChannelID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.VoiceChannelID()
}

// BeginSkipVote installs a vote as the session's active skip contest.
// It reports false when an undecided vote is already open; the caller then
// joins that one instead of opening a second contest.
func (s *Session) BeginSkipVote(v *player.Vote) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vote != nil && !s.vote.Decided() {
		return false
	}
	s.vote = v
	return true
}

// ActiveSkipVote returns the open skip vote, if any.
func (s *Session) ActiveSkipVote() *player.Vote {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vote == nil || s.vote.Decided() {
		return nil
	}
	return s.vote
}

// ClearSkipVote forgets a settled vote.
func (s *Session) ClearSkipVote() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vote = nil
}
