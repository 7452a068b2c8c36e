package command

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

type ConnectCommand struct {
	Deps *Deps
}

func (c *ConnectCommand) Name() string        { return "connect" }
func (c *ConnectCommand) Description() string { return "Join a voice channel" }

func (c *ConnectCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "channel",
				Description:  "Channel to join instead of yours",
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildVoice},
				Required:     false,
			},
		},
	}
}

// Run joins the named channel, or the invoker's channel when none is given.
// A connected session moves instead of erroring.
func (c *ConnectCommand) Run(ctx *Context) error {
	channelID := ctx.Option("channel")
	if channelID == "" {
		s, err := c.Deps.joinActor(ctx)
		if err != nil {
			return replyResult(ctx, err, "")
		}
		return ctx.Respond.Reply(fmt.Sprintf("Joined <#%s>.", s.VoiceChannelID()))
	}

	s := c.Deps.Sessions.GetOrCreate(ctx.GuildID)
	s.SetTextChannel(ctx.ChannelID)
	if err := s.Connect(ctx.Ctx, channelID); err != nil {
		return replyResult(ctx, err, "")
	}
	return ctx.Respond.Reply(fmt.Sprintf("Joined <#%s>.", channelID))
}
