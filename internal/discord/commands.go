package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// onGuildCreate installs the slash command set in each guild the bot
// joins. Registration is rate limited; Discord throttles command writes.
func (b *Bot) onGuildCreate(s *discordgo.Session, e *discordgo.GuildCreate) {
	go b.registerCommands(s, e.Guild.ID)
}

func (b *Bot) registerCommands(s *discordgo.Session, guildID string) {
	if err := b.registerLimit.Wait(context.Background()); err != nil {
		return
	}

	var defs []*discordgo.ApplicationCommand
	for _, cmd := range b.commands.All() {
		if def := cmd.Definition(); def != nil {
			defs = append(defs, def)
		}
	}

	_, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, guildID, defs)
	if err != nil {
		b.log.Error().Err(err).Str("guild_id", guildID).Msg("registering commands")
		return
	}
	b.log.Debug().Str("guild_id", guildID).Int("count", len(defs)).Msg("commands registered")
}
