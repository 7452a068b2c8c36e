package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/jakobgrine/lavabot/internal/music/player"
)

// directory answers membership questions from gateway state, falling back
// to the REST API when the cache misses.
type directory struct {
	dg      *discordgo.Session
	ownerID string
}

func (d *directory) ProcessOwnerID() string { return d.ownerID }

func (d *directory) GuildOwnerID(guildID string) (string, error) {
	if g, err := d.dg.State.Guild(guildID); err == nil {
		return g.OwnerID, nil
	}
	g, err := d.dg.Guild(guildID)
	if err != nil {
		return "", fmt.Errorf("fetching guild %s: %w", guildID, err)
	}
	return g.OwnerID, nil
}

func (d *directory) MemberHasRole(guildID, userID, roleID string) (bool, error) {
	m, err := d.member(guildID, userID)
	if err != nil {
		return false, err
	}
	for _, r := range m.Roles {
		if r == roleID {
			return true, nil
		}
	}
	return false, nil
}

func (d *directory) VoiceChannelMembers(guildID, channelID string) ([]player.Member, error) {
	g, err := d.dg.State.Guild(guildID)
	if err != nil {
		return nil, fmt.Errorf("guild %s not in state: %w", guildID, err)
	}

	var members []player.Member
	for _, vs := range g.VoiceStates {
		if vs.ChannelID != channelID {
			continue
		}
		bot := false
		if m, err := d.member(guildID, vs.UserID); err == nil && m.User != nil {
			bot = m.User.Bot
		}
		members = append(members, player.Member{ID: vs.UserID, Bot: bot})
	}
	return members, nil
}

func (d *directory) UserVoiceChannel(guildID, userID string) (string, bool) {
	g, err := d.dg.State.Guild(guildID)
	if err != nil {
		return "", false
	}
	for _, vs := range g.VoiceStates {
		if vs.UserID == userID {
			return vs.ChannelID, true
		}
	}
	return "", false
}

func (d *directory) member(guildID, userID string) (*discordgo.Member, error) {
	if m, err := d.dg.State.Member(guildID, userID); err == nil {
		return m, nil
	}
	m, err := d.dg.GuildMember(guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching member %s: %w", userID, err)
	}
	return m, nil
}
