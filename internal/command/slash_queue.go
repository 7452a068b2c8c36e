package command

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const queuePageSize = 10

type QueueCommand struct {
	Deps *Deps
}

func (c *QueueCommand) Name() string        { return "queue" }
func (c *QueueCommand) Description() string { return "Show the upcoming tracks" }

func (c *QueueCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *QueueCommand) Run(ctx *Context) error {
	s, err := c.Deps.activeSession(ctx)
	if err != nil {
		return err
	}

	tracks := s.QueueTracks()
	if len(tracks) == 0 {
		return ctx.Respond.ReplyEphemeral("The queue is empty.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**%d track(s) queued:**\n", len(tracks))
	for i, t := range tracks {
		if i == queuePageSize {
			fmt.Fprintf(&b, "… and %d more", len(tracks)-queuePageSize)
			break
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, trackLine(t))
	}
	return ctx.Respond.Reply(strings.TrimRight(b.String(), "\n"))
}
