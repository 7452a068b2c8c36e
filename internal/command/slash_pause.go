package command

import "github.com/bwmarrin/discordgo"

type PauseCommand struct {
	Deps *Deps
}

func (c *PauseCommand) Name() string        { return "pause" }
func (c *PauseCommand) Description() string { return "Pause playback" }

func (c *PauseCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *PauseCommand) Run(ctx *Context) error {
	s, err := c.Deps.activeSession(ctx)
	if err != nil {
		return err
	}
	return replyResult(ctx, s.Pause(ctx.Ctx), "Paused.")
}
