package command

import (
	"errors"
	"fmt"

	"github.com/jakobgrine/lavabot/internal/audio"
	"github.com/jakobgrine/lavabot/internal/music/player"
	"github.com/jakobgrine/lavabot/internal/music/session"
)

// activeSession returns the guild's session, or tells the invoker there is
// nothing to act on.
func (d *Deps) activeSession(ctx *Context) (*session.Session, error) {
	s, ok := d.Sessions.Get(ctx.GuildID)
	if !ok || !s.Connected() {
		if err := ctx.Respond.ReplyEphemeral("I'm not connected to a voice channel."); err != nil {
			return nil, err
		}
		return nil, ErrAbortSilently
	}
	return s, nil
}

// joinActor connects the guild session to the invoker's voice channel,
// creating the session if needed. The invoker must be in a voice channel.
func (d *Deps) joinActor(ctx *Context) (*session.Session, error) {
	channelID, ok := d.Directory.UserVoiceChannel(ctx.GuildID, ctx.Actor.ID)
	if !ok || channelID == "" {
		if err := ctx.Respond.ReplyEphemeral("Join a voice channel first."); err != nil {
			return nil, err
		}
		return nil, ErrAbortSilently
	}

	s := d.Sessions.GetOrCreate(ctx.GuildID)
	s.SetTextChannel(ctx.ChannelID)
	if err := s.Connect(ctx.Ctx, channelID); err != nil {
		return nil, err
	}
	return s, nil
}

// friendly maps playback errors to invoker-facing phrasing. Unknown errors
// pass through so the dispatcher reports them.
func friendly(err error) (string, bool) {
	switch {
	case errors.Is(err, player.ErrNotPlaying):
		return "Nothing is playing.", true
	case errors.Is(err, player.ErrNotConnected):
		return "I'm not connected to a voice channel.", true
	case errors.Is(err, player.ErrAlreadyPaused):
		return "Playback is already paused.", true
	case errors.Is(err, player.ErrNotPaused):
		return "Playback isn't paused.", true
	case errors.Is(err, audio.ErrNoNodes):
		return "No audio backend is available right now.", true
	case errors.Is(err, audio.ErrNoResults):
		return "I couldn't find anything for that.", true
	default:
		return "", false
	}
}

// replyResult sends a friendly message for known playback errors and the
// given success message otherwise.
func replyResult(ctx *Context, err error, success string) error {
	if err != nil {
		if msg, ok := friendly(err); ok {
			return ctx.Respond.ReplyEphemeral(msg)
		}
		return err
	}
	return ctx.Respond.Reply(success)
}

func trackLine(t player.Track) string {
	return fmt.Sprintf("**%s** [%s]", t.Title, player.FormatDuration(t.Duration))
}
