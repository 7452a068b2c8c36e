package command

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/jakobgrine/lavabot/internal/music/player"
)

type NowPlayingCommand struct {
	Deps *Deps
}

func (c *NowPlayingCommand) Name() string        { return "nowplaying" }
func (c *NowPlayingCommand) Description() string { return "Show the current track" }

func (c *NowPlayingCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *NowPlayingCommand) Run(ctx *Context) error {
	s, err := c.Deps.activeSession(ctx)
	if err != nil {
		return err
	}
	cur := s.Current()
	if cur == nil {
		return ctx.Respond.ReplyEphemeral("Nothing is playing.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Now playing **%s**", cur.Title)
	if cur.Author != "" {
		fmt.Fprintf(&b, " by %s", cur.Author)
	}
	if cur.Stream {
		b.WriteString(" [live]")
	} else {
		fmt.Fprintf(&b, " [%s / %s]",
			player.FormatDuration(s.Position()), player.FormatDuration(cur.Duration))
	}
	fmt.Fprintf(&b, ", requested by **%s**.", cur.Requester.Name)
	if s.State() == player.StatePaused {
		b.WriteString(" (paused)")
	}
	if s.RepeatOne() {
		b.WriteString(" (on repeat)")
	}
	return ctx.Respond.Reply(b.String())
}
