package command

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/jakobgrine/lavabot/internal/music/player"
)

type SkipCommand struct {
	Deps *Deps
}

func (c *SkipCommand) Name() string        { return "skip" }
func (c *SkipCommand) Description() string { return "Skip the current track (starts a vote)" }

func (c *SkipCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *SkipCommand) Run(ctx *Context) error {
	d := c.Deps

	s, err := d.activeSession(ctx)
	if err != nil {
		return err
	}
	if cur := s.Current(); cur == nil {
		return ctx.Respond.ReplyEphemeral("Nothing is playing.")
	}

	// Privileged members skip without a vote.
	if d.Gate.Privileged(ctx.GuildID, ctx.Actor.ID) {
		return replyResult(ctx, s.Stop(ctx.Ctx), "Skipped.")
	}

	// A skip requested while a vote is open joins that vote.
	if open := s.ActiveSkipVote(); open != nil {
		if open.Cast(ctx.Actor.ID, true) {
			return ctx.Respond.ReplyEphemeral("Your vote to skip was counted.")
		}
		return ctx.Respond.ReplyEphemeral("You can't join this vote.")
	}

	members, err := d.Directory.VoiceChannelMembers(ctx.GuildID, s.VoiceChannelID())
	if err != nil {
		return fmt.Errorf("listing voice channel members: %w", err)
	}
	threshold := player.SkipThreshold(members)

	ownerID := d.Directory.ProcessOwnerID()
	eligible := func(userID string) bool {
		if userID == ownerID {
			return true
		}
		for _, m := range members {
			if m.ID == userID {
				return true
			}
		}
		return false
	}

	var v *player.Vote
	v = player.NewVote(threshold, d.VoteTimeout, eligible, func(up, down, threshold int) {
		d.Votes.Update(v, up, down, threshold)
	})
	if !s.BeginSkipVote(v) {
		return ctx.Respond.ReplyEphemeral("A skip vote is already running.")
	}

	v.Open(ctx.Actor.ID)
	if v.Decided() {
		// Alone in the channel, or a two-member quorum of one.
		s.ClearSkipVote()
		return replyResult(ctx, s.Stop(ctx.Ctx), "Skipped.")
	}

	if err := ctx.Respond.Reply(fmt.Sprintf("**%s** wants to skip. %d votes needed.", ctx.Actor.Name, threshold)); err != nil {
		s.ClearSkipVote()
		return err
	}
	if err := d.Votes.Open(ctx.GuildID, ctx.ChannelID, v); err != nil {
		ctx.Log.Error().Err(err).Msg("opening vote display")
	}

	passed := v.Wait(ctx.Ctx)
	s.ClearSkipVote()
	d.Votes.Close(v, passed)

	if !passed {
		return nil
	}
	// The interaction may be long gone; skip on a fresh context.
	if err := s.Stop(context.WithoutCancel(ctx.Ctx)); err != nil {
		if _, known := friendly(err); !known {
			return err
		}
	}
	return nil
}
