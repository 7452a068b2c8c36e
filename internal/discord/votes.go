package discord

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/jakobgrine/lavabot/internal/music/player"
)

// voteSurface renders skip votes as a message with ballot buttons and a
// live tally.
type voteSurface struct {
	bot *Bot

	mu   sync.Mutex
	refs map[string]voteRef // vote ID -> message location
}

type voteRef struct {
	channelID string
	messageID string
	guildID   string
}

func newVoteSurface(b *Bot) *voteSurface {
	return &voteSurface{bot: b, refs: map[string]voteRef{}}
}

func (vs *voteSurface) Open(guildID, channelID string, v *player.Vote) error {
	up, down, threshold := v.Counts()
	msg, err := vs.bot.dg.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    tallyLine(up, down, threshold),
		Components: ballotComponents(),
	})
	if err != nil {
		return fmt.Errorf("sending vote message: %w", err)
	}

	vs.mu.Lock()
	vs.refs[v.ID] = voteRef{channelID: channelID, messageID: msg.ID, guildID: guildID}
	vs.mu.Unlock()
	return nil
}

// Update edits the tally. Ballots cast before the message exists are
// silently dropped; the next update catches the count up.
func (vs *voteSurface) Update(v *player.Vote, up, down, threshold int) {
	vs.mu.Lock()
	ref, ok := vs.refs[v.ID]
	vs.mu.Unlock()
	if !ok {
		return
	}

	content := tallyLine(up, down, threshold)
	_, err := vs.bot.dg.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel: ref.channelID,
		ID:      ref.messageID,
		Content: &content,
	})
	if err != nil {
		vs.bot.log.Debug().Err(err).Msg("editing vote tally")
	}
}

func (vs *voteSurface) Close(v *player.Vote, passed bool) {
	vs.mu.Lock()
	ref, ok := vs.refs[v.ID]
	delete(vs.refs, v.ID)
	vs.mu.Unlock()
	if !ok {
		return
	}

	content := "Skip vote failed."
	if passed {
		content = "Skip vote passed."
	}
	empty := []discordgo.MessageComponent{}
	_, err := vs.bot.dg.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    ref.channelID,
		ID:         ref.messageID,
		Content:    &content,
		Components: &empty,
	})
	if err != nil {
		vs.bot.log.Debug().Err(err).Msg("closing vote message")
	}
}

// find returns the open vote owning this message, if any.
func (vs *voteSurface) find(messageID string) (guildID string, ok bool) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	for _, ref := range vs.refs {
		if ref.messageID == messageID {
			return ref.guildID, true
		}
	}
	return "", false
}

func tallyLine(up, down, threshold int) string {
	return fmt.Sprintf("Skip vote: **%d** for, **%d** against. %d needed.", up, down, threshold)
}

func ballotComponents() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Skip it", Style: discordgo.PrimaryButton, CustomID: "vote:up"},
			discordgo.Button{Label: "Keep it", Style: discordgo.SecondaryButton, CustomID: "vote:down"},
		}},
	}
}
