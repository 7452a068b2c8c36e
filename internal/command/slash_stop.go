package command

import "github.com/bwmarrin/discordgo"

type StopCommand struct {
	Deps *Deps
}

func (c *StopCommand) Name() string        { return "stop" }
func (c *StopCommand) Description() string { return "Stop playback, clear the queue and leave" }

func (c *StopCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *StopCommand) Run(ctx *Context) error {
	s, err := c.Deps.activeSession(ctx)
	if err != nil {
		return err
	}
	return replyResult(ctx, s.Destroy(ctx.Ctx), "Playback stopped, queue cleared.")
}
