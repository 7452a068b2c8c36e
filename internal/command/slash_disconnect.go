package command

import "github.com/bwmarrin/discordgo"

type DisconnectCommand struct {
	Deps *Deps
}

func (c *DisconnectCommand) Name() string        { return "disconnect" }
func (c *DisconnectCommand) Description() string { return "Leave the voice channel" }

func (c *DisconnectCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *DisconnectCommand) Run(ctx *Context) error {
	s, err := c.Deps.activeSession(ctx)
	if err != nil {
		return err
	}
	return replyResult(ctx, s.Destroy(ctx.Ctx), "Disconnected.")
}
