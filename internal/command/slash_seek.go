package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/jakobgrine/lavabot/internal/music/player"
)

type SeekCommand struct {
	Deps *Deps
}

func (c *SeekCommand) Name() string        { return "seek" }
func (c *SeekCommand) Description() string { return "Jump to a position in the current track" }

func (c *SeekCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "position",
				Description: "Target position, e.g. 90, 1:30 or 1:02:45",
				Required:    true,
			},
		},
	}
}

func (c *SeekCommand) Run(ctx *Context) error {
	positionMs, err := parsePosition(ctx.Option("position"))
	if err != nil {
		return ctx.Respond.ReplyEphemeral("I can't read that position. Try 90, 1:30 or 1:02:45.")
	}

	s, err := c.Deps.activeSession(ctx)
	if err != nil {
		return err
	}
	return replyResult(ctx, s.Seek(ctx.Ctx, positionMs),
		fmt.Sprintf("Jumped to %s.", player.FormatDuration(positionMs)))
}

// parsePosition reads "ss", "m:ss" or "h:mm:ss" into milliseconds.
func parsePosition(input string) (int64, error) {
	parts := strings.Split(strings.TrimSpace(input), ":")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, fmt.Errorf("malformed position %q", input)
	}

	var total int64
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("malformed position %q", input)
		}
		total = total*60 + n
	}
	return total * 1000, nil
}
