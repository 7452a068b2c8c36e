package command

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

type RepeatCommand struct {
	Deps *Deps
}

func (c *RepeatCommand) Name() string        { return "repeat" }
func (c *RepeatCommand) Description() string { return "Toggle repeating the current track" }

func (c *RepeatCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "enabled",
				Description: "Set repeat instead of toggling it",
				Required:    false,
			},
		},
	}
}

// Run toggles repeat-one, or sets it when the enabled option is given.
// Setting it to the state it is already in only notifies the invoker.
func (c *RepeatCommand) Run(ctx *Context) error {
	s, err := c.Deps.activeSession(ctx)
	if err != nil {
		return err
	}

	enable := !s.RepeatOne()
	if opt := ctx.Option("enabled"); opt != "" {
		enable = opt == "true"
	}

	text := "disabled"
	if enable {
		text = "enabled"
	}
	if s.RepeatOne() == enable {
		return ctx.Respond.ReplyEphemeral(fmt.Sprintf("Repeat is already %s.", text))
	}

	s.SetRepeat(enable)
	return ctx.Respond.Reply(fmt.Sprintf("Repeat %s.", text))
}
