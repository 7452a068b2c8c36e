package command

import "github.com/bwmarrin/discordgo"

type ShuffleCommand struct {
	Deps *Deps
}

func (c *ShuffleCommand) Name() string        { return "shuffle" }
func (c *ShuffleCommand) Description() string { return "Shuffle the queue" }

func (c *ShuffleCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *ShuffleCommand) Run(ctx *Context) error {
	s, err := c.Deps.activeSession(ctx)
	if err != nil {
		return err
	}
	if s.QueueLen() < 2 {
		return ctx.Respond.ReplyEphemeral("Not enough queued tracks to shuffle.")
	}
	s.ShuffleQueue()
	return ctx.Respond.Reply("Queue shuffled.")
}
