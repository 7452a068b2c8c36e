package command

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/jakobgrine/lavabot/internal/audio"
	"github.com/jakobgrine/lavabot/internal/music/player"
)

type PlayCommand struct {
	Deps *Deps
}

func (c *PlayCommand) Name() string        { return "play" }
func (c *PlayCommand) Description() string { return "Play a track or add it to the queue" }

func (c *PlayCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "query",
				Description: "Link or search terms",
				Required:    true,
			},
		},
	}
}

func (c *PlayCommand) Run(ctx *Context) error {
	query := ctx.Option("query")
	if query == "" {
		return ctx.Respond.ReplyEphemeral("Tell me what to play.")
	}

	// The invoker must be reachable in voice before we spend time resolving.
	if channelID, ok := c.Deps.Directory.UserVoiceChannel(ctx.GuildID, ctx.Actor.ID); !ok || channelID == "" {
		return ctx.Respond.ReplyEphemeral("Join a voice channel first.")
	}

	if err := ctx.Respond.Defer(); err != nil {
		return err
	}

	result, err := c.Deps.Nodes.Resolve(ctx.Ctx, query, c.Deps.ResolveAttempts)
	if err != nil {
		if msg, ok := friendly(err); ok {
			return ctx.Respond.Edit(msg)
		}
		return err
	}

	requester := player.Requester{
		ID:        ctx.Actor.ID,
		Name:      ctx.Actor.Name,
		AvatarURL: ctx.Actor.AvatarURL,
	}

	var tracks []player.Track
	switch result.Type {
	case audio.LoadTypePlaylist:
		for _, info := range result.Tracks {
			tracks = append(tracks, player.NewTrack(info, requester))
		}
	default:
		// Searches return a result page; only the top hit is wanted.
		tracks = append(tracks, player.NewTrack(result.Tracks[0], requester))
	}

	s, err := c.Deps.joinActor(ctx)
	if err != nil {
		if msg, ok := friendly(err); ok {
			return ctx.Respond.Edit(msg)
		}
		return err
	}
	if err := s.Enqueue(ctx.Ctx, tracks); err != nil {
		if msg, ok := friendly(err); ok {
			return ctx.Respond.Edit(msg)
		}
		return err
	}

	if result.Type == audio.LoadTypePlaylist {
		return ctx.Respond.Edit(fmt.Sprintf("Queued **%s** (%d tracks).", result.PlaylistName, len(tracks)))
	}
	return ctx.Respond.Edit("Queued " + trackLine(tracks[0]) + ".")
}
