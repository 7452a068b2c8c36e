// Package command defines the chat command surface: the command contract,
// the registry, and the middleware chain that guards execution.
package command

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/jakobgrine/lavabot/internal/audio"
	"github.com/jakobgrine/lavabot/internal/music/player"
	"github.com/jakobgrine/lavabot/internal/music/session"
)

// Command is one chat command. Definition describes the slash surface;
// Run executes one invocation against a fully populated Context.
type Command interface {
	Name() string
	Description() string
	Definition() *discordgo.ApplicationCommand
	Run(ctx *Context) error
}

// Actor is the member a command runs as. It is always passed explicitly;
// handlers never reach back into gateway state to discover who invoked them.
type Actor struct {
	ID        string
	Name      string
	AvatarURL string
}

// Responder delivers command output back to the invoker.
type Responder interface {
	// Defer acknowledges the interaction so a slow command can finish
	// with Edit.
	Defer() error
	Reply(content string) error
	ReplyEphemeral(content string) error
	Edit(content string) error
}

// Context carries the per-invocation state of one command run.
type Context struct {
	Ctx       context.Context
	GuildID   string
	ChannelID string
	Actor     Actor
	Options   map[string]string
	Respond   Responder
	Log       zerolog.Logger
}

// Option returns a named option value, or empty.
func (c *Context) Option(name string) string {
	return c.Options[name]
}

// VoteSurface publishes a live skip vote to the channel it was called from,
// keeps the tally current, and retires the message when the vote settles.
type VoteSurface interface {
	Open(guildID, channelID string, v *player.Vote) error
	Update(v *player.Vote, up, down, threshold int)
	Close(v *player.Vote, passed bool)
}

// Deps are the long-lived collaborators the music commands act on.
type Deps struct {
	Sessions  *session.Manager
	Nodes     *audio.Registry
	Gate      *player.Gate
	Directory player.Directory
	Votes     VoteSurface

	VoteTimeout     time.Duration
	ResolveAttempts int
}
