package command

import (
	"errors"
	"time"

	"github.com/jakobgrine/lavabot/internal/music/player"
)

// Middleware wraps a command with a pre-execution check.
type Middleware func(Command) Command

type wrapped struct {
	Command
	run func(ctx *Context) error
}

func (w *wrapped) Run(ctx *Context) error { return w.run(ctx) }

// WithGuildOnly rejects invocations from outside a guild.
func WithGuildOnly(cmd Command) Command {
	return &wrapped{Command: cmd, run: func(ctx *Context) error {
		if ctx.GuildID == "" {
			if err := ctx.Respond.ReplyEphemeral("This command only works inside a server."); err != nil {
				return err
			}
			return ErrAbortSilently
		}
		return cmd.Run(ctx)
	}}
}

// WithPrivilege rejects invokers the gate does not recognize.
func WithPrivilege(gate *player.Gate) Middleware {
	return func(cmd Command) Command {
		return &wrapped{Command: cmd, run: func(ctx *Context) error {
			if !gate.Privileged(ctx.GuildID, ctx.Actor.ID) {
				if err := ctx.Respond.ReplyEphemeral("You need the DJ role for that."); err != nil {
					return err
				}
				return ErrNotAllowed
			}
			return cmd.Run(ctx)
		}}
	}
}

// WithSameVoiceChannel rejects invokers who are not in the session's voice
// channel. Commands on an unconnected session pass through.
func WithSameVoiceChannel(deps *Deps) Middleware {
	return func(cmd Command) Command {
		return &wrapped{Command: cmd, run: func(ctx *Context) error {
			s, ok := deps.Sessions.Get(ctx.GuildID)
			if !ok || !s.Connected() {
				return cmd.Run(ctx)
			}
			channelID, _ := deps.Directory.UserVoiceChannel(ctx.GuildID, ctx.Actor.ID)
			if channelID != s.VoiceChannelID() {
				if err := ctx.Respond.ReplyEphemeral("Join my voice channel first."); err != nil {
					return err
				}
				return ErrAbortSilently
			}
			return cmd.Run(ctx)
		}}
	}
}

// WithLogging records each invocation and how long it took.
func WithLogging(cmd Command) Command {
	return &wrapped{Command: cmd, run: func(ctx *Context) error {
		start := time.Now()
		err := cmd.Run(ctx)

		ev := ctx.Log.Info()
		if err != nil && !errors.Is(err, ErrAbortSilently) && !errors.Is(err, ErrNotAllowed) {
			ev = ctx.Log.Error().Err(err)
		}
		ev.Str("command", cmd.Name()).
			Str("guild_id", ctx.GuildID).
			Str("user_id", ctx.Actor.ID).
			Dur("took", time.Since(start)).
			Msg("command handled")
		return err
	}}
}

// Chain applies middlewares outermost-first.
func Chain(cmd Command, mws ...Middleware) Command {
	for i := len(mws) - 1; i >= 0; i-- {
		cmd = mws[i](cmd)
	}
	return cmd
}
