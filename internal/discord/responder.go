package discord

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// interactionResponder adapts one interaction to command.Responder. After
// the interaction was acknowledged once, further replies go out as
// followup messages.
type interactionResponder struct {
	s *discordgo.Session
	i *discordgo.Interaction

	mu    sync.Mutex
	acked bool
}

func newResponder(s *discordgo.Session, i *discordgo.Interaction) *interactionResponder {
	return &interactionResponder{s: s, i: i}
}

func (r *interactionResponder) Defer() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.acked {
		return nil
	}
	err := r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err == nil {
		r.acked = true
	}
	return err
}

func (r *interactionResponder) Reply(content string) error {
	return r.send(content, 0)
}

func (r *interactionResponder) ReplyEphemeral(content string) error {
	return r.send(content, discordgo.MessageFlagsEphemeral)
}

func (r *interactionResponder) Edit(content string) error {
	_, err := r.s.InteractionResponseEdit(r.i, &discordgo.WebhookEdit{Content: &content})
	return err
}

func (r *interactionResponder) send(content string, flags discordgo.MessageFlags) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.acked {
		_, err := r.s.FollowupMessageCreate(r.i, true, &discordgo.WebhookParams{
			Content: content,
			Flags:   flags,
		})
		return err
	}

	err := r.s.InteractionRespond(r.i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
	if err == nil {
		r.acked = true
	}
	return err
}
