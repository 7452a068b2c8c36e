// Package discord connects the playback core to the Discord gateway: slash
// commands, message components, voice credential forwarding and the
// now-playing display.
package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jakobgrine/lavabot/internal/audio"
	"github.com/jakobgrine/lavabot/internal/audio/lavalink"
	"github.com/jakobgrine/lavabot/internal/command"
	"github.com/jakobgrine/lavabot/internal/config"
	"github.com/jakobgrine/lavabot/internal/music/player"
	"github.com/jakobgrine/lavabot/internal/music/session"
)

// Bot is the Discord-facing half of the process.
type Bot struct {
	dg       *discordgo.Session
	cfg      *config.Config
	log      zerolog.Logger
	nodes    *audio.Registry
	sessions *session.Manager
	commands *command.Registry
	votes    *voteSurface

	// Discord allows roughly two command registrations per second.
	registerLimit *rate.Limiter

	mu        sync.Mutex
	lavaNodes []*lavalink.Node
	started   bool
}

// New builds the bot and its collaborators. Start must be called to open
// the gateway.
func New(cfg *config.Config, nodes *audio.Registry, log zerolog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("creating gateway session: %w", err)
	}

	b := &Bot{
		dg:            dg,
		cfg:           cfg,
		log:           log,
		nodes:         nodes,
		registerLimit: rate.NewLimiter(rate.Limit(2), 2),
	}

	b.sessions = session.NewManager(nodes, b.surfaceFor, log)
	b.votes = newVoteSurface(b)

	dir := &directory{dg: dg, ownerID: cfg.OwnerID}
	deps := &command.Deps{
		Sessions:        b.sessions,
		Nodes:           nodes,
		Gate:            player.NewGate(dir, cfg.DJRoles),
		Directory:       dir,
		Votes:           b.votes,
		VoteTimeout:     cfg.VoteTimeout,
		ResolveAttempts: cfg.ResolveAttempts,
	}
	b.commands = command.NewRegistry()
	command.Install(b.commands, deps)

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onInteractionCreate)
	dg.AddHandler(b.onVoiceServerUpdate)
	dg.AddHandler(b.onVoiceStateUpdate)

	return b, nil
}

// Sessions exposes the session manager, mainly for shutdown.
func (b *Bot) Sessions() *session.Manager { return b.sessions }

// Start opens the gateway connection.
func (b *Bot) Start() error {
	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("opening gateway: %w", err)
	}
	return nil
}

// Stop tears down every session and closes the gateway.
func (b *Bot) Stop(ctx context.Context) {
	b.sessions.DestroyAll(ctx)
	if err := b.dg.Close(); err != nil {
		b.log.Error().Err(err).Msg("closing gateway")
	}
}

// onReady attaches the configured audio nodes. Node startup needs the bot
// user ID, which is only known once the gateway handshake completes.
func (b *Bot) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		// Gateway resumes fire Ready again; nodes are already up.
		return
	}
	b.started = true

	for _, nc := range b.cfg.Nodes() {
		node := lavalink.New(lavalink.Config{
			Name:     nc.Name,
			Address:  nc.Address,
			Password: nc.Password,
			Secure:   nc.Secure,
		}, s.State.User.ID, b, b.sessions, b.log)

		if err := node.Open(context.Background()); err != nil {
			b.log.Error().Err(err).Str("node", nc.Name).Msg("audio node unreachable, will keep retrying")
		}
		b.nodes.Add(node)
		b.lavaNodes = append(b.lavaNodes, node)
	}

	b.log.Info().Str("user", s.State.User.Username).Msg("gateway ready")
}

// JoinVoice asks the gateway to move the bot into a voice channel. Voice
// credentials arrive asynchronously and are forwarded to the audio nodes.
func (b *Bot) JoinVoice(guildID, channelID string) error {
	return b.dg.ChannelVoiceJoinManual(guildID, channelID, false, true)
}

// LeaveVoice disconnects the bot from the guild's voice channel.
func (b *Bot) LeaveVoice(guildID string) error {
	return b.dg.ChannelVoiceJoinManual(guildID, "", false, true)
}

func (b *Bot) onVoiceServerUpdate(_ *discordgo.Session, e *discordgo.VoiceServerUpdate) {
	b.mu.Lock()
	nodes := append([]*lavalink.Node(nil), b.lavaNodes...)
	b.mu.Unlock()

	for _, n := range nodes {
		n.HandleVoiceServerUpdate(e.GuildID, e.Token, e.Endpoint)
	}
}

func (b *Bot) onVoiceStateUpdate(s *discordgo.Session, e *discordgo.VoiceStateUpdate) {
	if e.UserID != s.State.User.ID {
		return
	}

	// The bot was kicked from voice or moved out; tear the session down.
	if e.ChannelID == "" {
		if sess, ok := b.sessions.Get(e.GuildID); ok {
			if err := sess.Destroy(context.Background()); err != nil {
				b.log.Error().Err(err).Str("guild_id", e.GuildID).Msg("destroying session after voice disconnect")
			}
		}
		return
	}

	b.mu.Lock()
	nodes := append([]*lavalink.Node(nil), b.lavaNodes...)
	b.mu.Unlock()

	for _, n := range nodes {
		n.HandleVoiceStateUpdate(e.GuildID, e.SessionID)
	}
}
