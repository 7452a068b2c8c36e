package discord

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/jakobgrine/lavabot/internal/music/player"
)

const embedColor = 0x5865f2

// messageSurface renders the now-playing display as a channel message with
// control buttons. One surface serves one guild.
type messageSurface struct {
	bot     *Bot
	guildID string
}

func (b *Bot) surfaceFor(guildID string) player.Surface {
	return &messageSurface{bot: b, guildID: guildID}
}

func (m *messageSurface) Create(snap player.Snapshot) (player.DisplayRef, error) {
	msg, err := m.bot.dg.ChannelMessageSendComplex(snap.TextChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{displayEmbed(snap)},
		Components: displayComponents(snap),
	})
	if err != nil {
		return "", fmt.Errorf("sending display message: %w", err)
	}
	return player.DisplayRef(snap.TextChannelID + "/" + msg.ID), nil
}

func (m *messageSurface) Update(ref player.DisplayRef, snap player.Snapshot) error {
	channelID, messageID, ok := splitRef(ref)
	if !ok {
		return fmt.Errorf("malformed display ref %q", ref)
	}
	embeds := []*discordgo.MessageEmbed{displayEmbed(snap)}
	components := displayComponents(snap)
	_, err := m.bot.dg.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Embeds:     &embeds,
		Components: &components,
	})
	if err != nil {
		return fmt.Errorf("editing display message: %w", err)
	}
	return nil
}

func (m *messageSurface) Remove(ref player.DisplayRef) error {
	channelID, messageID, ok := splitRef(ref)
	if !ok {
		return fmt.Errorf("malformed display ref %q", ref)
	}
	if err := m.bot.dg.ChannelMessageDelete(channelID, messageID); err != nil {
		return fmt.Errorf("deleting display message: %w", err)
	}
	return nil
}

func splitRef(ref player.DisplayRef) (channelID, messageID string, ok bool) {
	return strings.Cut(string(ref), "/")
}

func displayEmbed(snap player.Snapshot) *discordgo.MessageEmbed {
	t := snap.Track

	title := t.Title
	if t.URI != "" {
		title = fmt.Sprintf("[%s](%s)", t.Title, t.URI)
	}

	var status []string
	if snap.Paused {
		status = append(status, "paused")
	}
	if snap.RepeatOne {
		status = append(status, "on repeat")
	}

	desc := title
	if t.Author != "" {
		desc += "\nby " + t.Author
	}
	if len(status) > 0 {
		desc += "\n*" + strings.Join(status, ", ") + "*"
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Now playing",
		Description: desc,
		Color:       embedColor,
		Footer: &discordgo.MessageEmbedFooter{
			Text:    fmt.Sprintf("%s · requested by %s", player.FormatDuration(t.Duration), t.Requester.Name),
			IconURL: t.Requester.AvatarURL,
		},
	}
	if t.ArtworkURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: t.ArtworkURL}
	}
	return embed
}

func displayComponents(snap player.Snapshot) []discordgo.MessageComponent {
	toggleLabel := "Pause"
	if snap.Paused {
		toggleLabel = "Resume"
	}
	repeatStyle := discordgo.SecondaryButton
	if snap.RepeatOne {
		repeatStyle = discordgo.SuccessButton
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: toggleLabel, Style: discordgo.PrimaryButton, CustomID: "player:toggle"},
			discordgo.Button{Label: "Skip", Style: discordgo.SecondaryButton, CustomID: "player:skip"},
			discordgo.Button{Label: "Repeat", Style: repeatStyle, CustomID: "player:repeat"},
			discordgo.Button{Label: "Stop", Style: discordgo.DangerButton, CustomID: "player:stop"},
		}},
	}
}
