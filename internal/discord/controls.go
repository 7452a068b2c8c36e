package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/jakobgrine/lavabot/internal/music/player"
)

// handlePlayerControl routes a display button press through the installed
// commands, running as the member who pressed it. The middleware chain
// applies exactly as if the action had been typed.
func (b *Bot) handlePlayerControl(s *discordgo.Session, e *discordgo.InteractionCreate, action string) {
	name := ""
	switch action {
	case "toggle":
		name = "pause"
		if sess, ok := b.sessions.Get(e.GuildID); ok && sess.State() == player.StatePaused {
			name = "resume"
		}
	case "skip":
		name = "skip"
	case "repeat":
		name = "repeat"
	case "stop":
		name = "stop"
	default:
		return
	}

	cmd, ok := b.commands.Get(name)
	if !ok {
		return
	}

	ctx := b.commandContext(s, e)
	runCtx, cancel := context.WithTimeout(ctx.Ctx, commandTimeout)
	defer cancel()
	ctx.Ctx = runCtx

	b.runCommand(ctx, cmd)
}

// handleVoteBallot counts a ballot button press into the open skip vote.
func (b *Bot) handleVoteBallot(s *discordgo.Session, e *discordgo.InteractionCreate, action string) {
	respond := newResponder(s, e.Interaction)

	guildID, ok := b.votes.find(e.Message.ID)
	if !ok || guildID != e.GuildID {
		_ = respond.ReplyEphemeral("This vote is over.")
		return
	}
	sess, ok := b.sessions.Get(guildID)
	if !ok {
		_ = respond.ReplyEphemeral("This vote is over.")
		return
	}
	v := sess.ActiveSkipVote()
	if v == nil {
		_ = respond.ReplyEphemeral("This vote is over.")
		return
	}

	var userID string
	if e.Member != nil && e.Member.User != nil {
		userID = e.Member.User.ID
	}
	if !v.Cast(userID, action == "up") {
		_ = respond.ReplyEphemeral("You can't vote here. Join the voice channel first.")
		return
	}
	_ = respond.ReplyEphemeral("Ballot counted.")
}
