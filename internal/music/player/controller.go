package player

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jakobgrine/lavabot/internal/audio"
)

// State is the playback state of one guild's controller.
type State int

const (
	StateDisconnected State = iota
	StateIdle
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "disconnected"
	}
}

// Controller is the per-guild playback state machine. It owns the queue and
// the now-playing reconciler and drives the audio node. Methods are not
// safe for concurrent use; the owning session serializes them.
type Controller struct {
	guildID  string
	registry *audio.Registry
	log      zerolog.Logger

	node           audio.Node
	voiceChannelID string
	textChannelID  string

	state     State
	current   *Track
	position  int64 // milliseconds into the current track
	repeatOne bool
	volume    int
	destroyed bool

	queue *Queue
	np    *NowPlaying

	onDestroy func()
}

// NewController creates an idle, disconnected controller. onDestroy fires
// once when the controller tears itself down.
func NewController(guildID string, registry *audio.Registry, np *NowPlaying, log zerolog.Logger, onDestroy func()) *Controller {
	return &Controller{
		guildID:   guildID,
		registry:  registry,
		np:        np,
		log:       log.With().Str("component", "player").Str("guild", guildID).Logger(),
		state:     StateDisconnected,
		volume:    100,
		queue:     NewQueue(),
		onDestroy: onDestroy,
	}
}

func (c *Controller) State() State           { return c.state }
func (c *Controller) Current() *Track        { return c.current }
func (c *Controller) Position() int64        { return c.position }
func (c *Controller) RepeatOne() bool        { return c.repeatOne }
func (c *Controller) Volume() int            { return c.volume }
func (c *Controller) Queue() *Queue          { return c.queue }
func (c *Controller) VoiceChannelID() string { return c.voiceChannelID }
func (c *Controller) Connected() bool        { return c.state != StateDisconnected }

// SetTextChannel remembers where the status display lives.
func (c *Controller) SetTextChannel(channelID string) {
	c.textChannelID = channelID
}

// Connect joins a voice channel through the best available node. No state
// changes happen until the node call succeeds.
func (c *Controller) Connect(ctx context.Context, voiceChannelID string) error {
	if c.destroyed {
		return ErrNotConnected
	}
	if c.state != StateDisconnected && c.voiceChannelID == voiceChannelID {
		return nil
	}

	node := c.node
	if node == nil {
		best, err := c.registry.Best()
		if err != nil {
			return fmt.Errorf("connecting: %w", err)
		}
		node = best
	}

	if err := node.Connect(ctx, c.guildID, voiceChannelID); err != nil {
		return fmt.Errorf("connecting: %w", err)
	}

	c.node = node
	c.voiceChannelID = voiceChannelID
	if c.state == StateDisconnected {
		c.state = StateIdle
	}
	c.log.Info().Str("channel", voiceChannelID).Msg("connected")
	c.reconcile()
	return nil
}

// Enqueue appends tracks; an idle controller starts playing immediately.
func (c *Controller) Enqueue(ctx context.Context, tracks []Track) error {
	c.queue.Append(tracks...)
	c.log.Debug().Int("added", len(tracks)).Int("queue", c.queue.Len()).Msg("tracks enqueued")

	if c.state == StateIdle {
		return c.advance(ctx)
	}
	return nil
}

// advance starts the next queued track. A controller that is already
// playing ignores the call; overlapping track-end signals reach here and
// must not double-pop. An empty queue tears the player down.
func (c *Controller) advance(ctx context.Context) error {
	if c.state == StatePlaying {
		return nil
	}

	track, ok := c.queue.PopFront()
	if !ok {
		return c.Destroy(ctx)
	}

	if err := c.node.Play(ctx, c.guildID, track.TrackInfo); err != nil {
		return fmt.Errorf("playing %q: %w", track.Title, err)
	}

	c.current = &track
	c.position = 0
	c.state = StatePlaying
	c.log.Info().Str("track", track.Title).Int("queue", c.queue.Len()).Msg("now playing")
	c.reconcile()
	return nil
}

// HandleTrackEnd is the single funnel for the node's track-end, stuck and
// exception events. Repeat-one puts the ended track back in front unless it
// was explicitly stopped or skipped.
func (c *Controller) HandleTrackEnd(ctx context.Context, info audio.TrackInfo, reason audio.EndReason) error {
	if c.destroyed || c.current == nil {
		return nil
	}
	// A second signal for a track that already ended must not end its
	// successor.
	if info.Encoded != "" && info.Encoded != c.current.Encoded {
		c.log.Debug().Str("track", info.Title).Msg("stale track-end signal ignored")
		return nil
	}

	ended := *c.current
	c.current = nil
	c.position = 0
	c.state = StateIdle

	if c.repeatOne && reason.MayRepeat() {
		c.queue.PushFront(ended)
	}
	return c.advance(ctx)
}

// HandlePlayerUpdate records the playback position the node last reported.
// Updates without a current track are stale and dropped.
func (c *Controller) HandlePlayerUpdate(positionMs int64) {
	if c.destroyed || c.current == nil {
		return
	}
	c.position = positionMs
}

// Pause suspends the current track.
func (c *Controller) Pause(ctx context.Context) error {
	switch c.state {
	case StatePaused:
		return ErrAlreadyPaused
	case StatePlaying:
	default:
		return ErrNotPlaying
	}

	if err := c.node.Pause(ctx, c.guildID, true); err != nil {
		return fmt.Errorf("pausing: %w", err)
	}
	c.state = StatePaused
	c.reconcile()
	return nil
}

// Resume continues a paused track.
func (c *Controller) Resume(ctx context.Context) error {
	switch c.state {
	case StatePlaying:
		return ErrNotPaused
	case StatePaused:
	default:
		return ErrNotPlaying
	}

	if err := c.node.Pause(ctx, c.guildID, false); err != nil {
		return fmt.Errorf("resuming: %w", err)
	}
	c.state = StatePlaying
	c.reconcile()
	return nil
}

// Seek moves the playback position of the current track.
func (c *Controller) Seek(ctx context.Context, positionMs int64) error {
	if c.state != StatePlaying && c.state != StatePaused {
		return ErrNotPlaying
	}
	if err := c.node.Seek(ctx, c.guildID, positionMs); err != nil {
		return err
	}
	// The node confirms with its next playerUpdate; reflect the jump now so
	// position reads between updates are not minutes off.
	c.position = positionMs
	return nil
}

// SetVolume applies a volume between 0 and 1000; the command layer
// validates the range before it gets here.
func (c *Controller) SetVolume(ctx context.Context, volume int) error {
	if c.node == nil {
		return ErrNotConnected
	}
	if err := c.node.SetVolume(ctx, c.guildID, volume); err != nil {
		return fmt.Errorf("setting volume: %w", err)
	}
	c.volume = volume
	return nil
}

// SetRepeat toggles repeat-one and refreshes the display.
func (c *Controller) SetRepeat(enable bool) {
	c.repeatOne = enable
	c.reconcile()
}

// Stop force-ends the current track. The node answers with a track-end
// event (reason stopped), which funnels back through HandleTrackEnd and
// advances the queue.
func (c *Controller) Stop(ctx context.Context) error {
	if c.state != StatePlaying && c.state != StatePaused {
		return ErrNotPlaying
	}
	return c.node.Stop(ctx, c.guildID)
}

// Destroy tears down the display, releases the node player and disconnects.
// Safe to call more than once.
func (c *Controller) Destroy(ctx context.Context) error {
	if c.destroyed {
		return nil
	}
	c.destroyed = true

	c.np.Destroy()

	if c.node != nil {
		if err := c.node.Destroy(ctx, c.guildID); err != nil {
			c.log.Error().Err(err).Msg("node player destroy failed")
		}
	}

	c.queue.Clear()
	c.current = nil
	c.position = 0
	c.voiceChannelID = ""
	c.state = StateDisconnected
	c.log.Info().Msg("player destroyed")

	if c.onDestroy != nil {
		c.onDestroy()
	}
	return nil
}

// reconcile pushes the current state to the display.
func (c *Controller) reconcile() {
	c.np.Reconcile(Snapshot{
		Track:         c.current,
		TextChannelID: c.textChannelID,
		Paused:        c.state == StatePaused,
		Connected:     c.state != StateDisconnected,
		RepeatOne:     c.repeatOne,
	})
}
