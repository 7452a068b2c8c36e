package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jakobgrine/lavabot/internal/audio"
	"github.com/jakobgrine/lavabot/internal/music/player"
)

// SurfaceFactory builds the display surface for a new guild session.
type SurfaceFactory func(guildID string) player.Surface

// Manager owns all guild sessions and fans audio-node events into them.
// It is the process-wide entry point the command layer resolves sessions
// through.
type Manager struct {
	registry *audio.Registry
	surfaces SurfaceFactory
	log      zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a session manager over the node registry.
func NewManager(registry *audio.Registry, surfaces SurfaceFactory, log zerolog.Logger) *Manager {
	return &Manager{
		registry: registry,
		surfaces: surfaces,
		log:      log.With().Str("component", "session").Logger(),
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for a guild, if one exists.
func (m *Manager) Get(guildID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[guildID]
	return s, ok
}

// GetOrCreate returns the guild's session, creating it lazily.
func (m *Manager) GetOrCreate(guildID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[guildID]; ok {
		return s
	}

	log := m.log.With().Str("guild", guildID).Logger()
	np := player.NewNowPlaying(m.surfaces(guildID), log)

	s := &Session{guildID: guildID, log: log}
	s.ctrl = player.NewController(guildID, m.registry, np, log, func() {
		m.remove(guildID)
	})

	m.sessions[guildID] = s
	log.Info().Msg("session created")
	return s
}

// remove forgets a destroyed session so the next command starts fresh.
func (m *Manager) remove(guildID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, guildID)
}

// OnTrackEnd implements audio.EventHandler. Events for unknown guilds are
// dropped; nodes call this from their own read goroutine.
func (m *Manager) OnTrackEnd(guildID string, track audio.TrackInfo, reason audio.EndReason) {
	s, ok := m.Get(guildID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	s.OnTrackEnd(ctx, track, reason)
}

// OnPlayerUpdate implements audio.EventHandler. Position reports for
// unknown guilds are dropped.
func (m *Manager) OnPlayerUpdate(guildID string, positionMs int64) {
	s, ok := m.Get(guildID)
	if !ok {
		return
	}
	s.OnPlayerUpdate(positionMs)
}

// DestroyAll tears down every session; used at process shutdown.
func (m *Manager) DestroyAll(ctx context.Context) {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	for _, s := range sessions {
		if err := s.Destroy(ctx); err != nil {
			m.log.Error().Err(err).Str("guild", s.GuildID()).Msg("session destroy failed")
		}
	}
}
