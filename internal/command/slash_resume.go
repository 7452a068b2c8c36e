package command

import "github.com/bwmarrin/discordgo"

type ResumeCommand struct {
	Deps *Deps
}

func (c *ResumeCommand) Name() string        { return "resume" }
func (c *ResumeCommand) Description() string { return "Resume paused playback" }

func (c *ResumeCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *ResumeCommand) Run(ctx *Context) error {
	s, err := c.Deps.activeSession(ctx)
	if err != nil {
		return err
	}
	return replyResult(ctx, s.Resume(ctx.Ctx), "Resumed.")
}
