package command

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
)

const maxVolume = 1000

type VolumeCommand struct {
	Deps *Deps
}

func (c *VolumeCommand) Name() string        { return "volume" }
func (c *VolumeCommand) Description() string { return "Set the playback volume" }

func (c *VolumeCommand) Definition() *discordgo.ApplicationCommand {
	var minVol float64
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "level",
				Description: "0 to 1000, 100 is normal",
				Required:    true,
				MinValue:    &minVol,
				MaxValue:    maxVolume,
			},
		},
	}
}

func (c *VolumeCommand) Run(ctx *Context) error {
	level, err := strconv.Atoi(ctx.Option("level"))
	if err != nil || level < 0 || level > maxVolume {
		return ctx.Respond.ReplyEphemeral(fmt.Sprintf("Volume goes from 0 to %d.", maxVolume))
	}

	s, err := c.Deps.activeSession(ctx)
	if err != nil {
		return err
	}
	return replyResult(ctx, s.SetVolume(ctx.Ctx, level),
		fmt.Sprintf("Volume set to %d%%.", level))
}
