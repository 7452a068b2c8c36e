package discord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jakobgrine/lavabot/internal/command"
)

// commandTimeout bounds one command run, including vote waits.
const commandTimeout = 5 * time.Minute

func (b *Bot) onInteractionCreate(s *discordgo.Session, e *discordgo.InteractionCreate) {
	switch e.Type {
	case discordgo.InteractionApplicationCommand:
		go b.dispatchSlash(s, e)
	case discordgo.InteractionMessageComponent:
		go b.dispatchComponent(s, e)
	}
}

func (b *Bot) dispatchSlash(s *discordgo.Session, e *discordgo.InteractionCreate) {
	data := e.ApplicationCommandData()
	cmd, ok := b.commands.Get(data.Name)
	if !ok {
		b.log.Warn().Str("command", data.Name).Msg("unknown command invoked")
		return
	}

	ctx := b.commandContext(s, e)
	for _, opt := range data.Options {
		ctx.Options[opt.Name] = optionString(opt)
	}

	runCtx, cancel := context.WithTimeout(ctx.Ctx, commandTimeout)
	defer cancel()
	ctx.Ctx = runCtx

	b.runCommand(ctx, cmd)
}

// commandContext builds the per-invocation context with an explicit actor.
func (b *Bot) commandContext(s *discordgo.Session, e *discordgo.InteractionCreate) *command.Context {
	var actor command.Actor
	if e.Member != nil && e.Member.User != nil {
		actor = command.Actor{
			ID:        e.Member.User.ID,
			Name:      e.Member.User.Username,
			AvatarURL: e.Member.User.AvatarURL("64"),
		}
	} else if e.User != nil {
		actor = command.Actor{ID: e.User.ID, Name: e.User.Username}
	}

	return &command.Context{
		Ctx:       context.Background(),
		GuildID:   e.GuildID,
		ChannelID: e.ChannelID,
		Actor:     actor,
		Options:   map[string]string{},
		Respond:   newResponder(s, e.Interaction),
		Log:       b.log,
	}
}

func (b *Bot) runCommand(ctx *command.Context, cmd command.Command) {
	err := cmd.Run(ctx)
	if err == nil || errors.Is(err, command.ErrAbortSilently) || errors.Is(err, command.ErrNotAllowed) {
		return
	}

	b.log.Error().Err(err).Str("command", cmd.Name()).Str("guild_id", ctx.GuildID).Msg("command failed")
	if rerr := ctx.Respond.ReplyEphemeral("Something went wrong, try again."); rerr != nil {
		b.log.Debug().Err(rerr).Msg("failure notice undeliverable")
	}
}

func optionString(opt *discordgo.ApplicationCommandInteractionDataOption) string {
	switch opt.Type {
	case discordgo.ApplicationCommandOptionString:
		return opt.StringValue()
	case discordgo.ApplicationCommandOptionInteger:
		return strconv.FormatInt(opt.IntValue(), 10)
	case discordgo.ApplicationCommandOptionBoolean:
		return strconv.FormatBool(opt.BoolValue())
	default:
		return fmt.Sprint(opt.Value)
	}
}

func (b *Bot) dispatchComponent(s *discordgo.Session, e *discordgo.InteractionCreate) {
	customID := e.MessageComponentData().CustomID
	kind, action, ok := strings.Cut(customID, ":")
	if !ok {
		return
	}

	switch kind {
	case "player":
		b.handlePlayerControl(s, e, action)
	case "vote":
		b.handleVoteBallot(s, e, action)
	}
}
