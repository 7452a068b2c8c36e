// Package lavalink implements audio.Node against a Lavalink v4 server.
// Player control and track resolution go over REST; playback events arrive
// on the node websocket. Voice credentials come from the Discord gateway and
// are forwarded here by the bot.
package lavalink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/jakobgrine/lavabot/internal/audio"
	"github.com/jakobgrine/lavabot/internal/version"
)

// Config describes one Lavalink node endpoint.
type Config struct {
	Name     string
	Address  string // host:port
	Password string
	Secure   bool
}

// Joiner joins and leaves voice channels on the chat gateway. The bot
// implements this; the node only triggers it and waits for the credentials
// to be forwarded back.
type Joiner interface {
	JoinVoice(guildID, channelID string) error
	LeaveVoice(guildID string) error
}

var errNotReady = errors.New("lavalink: node session not ready")

type voiceCreds struct {
	token     string
	endpoint  string
	sessionID string
}

func (v voiceCreds) complete() bool {
	return v.token != "" && v.endpoint != "" && v.sessionID != ""
}

// Node is one Lavalink v4 node client.
type Node struct {
	cfg     Config
	userID  string
	joiner  Joiner
	handler audio.EventHandler
	log     zerolog.Logger

	httpc *http.Client

	mu        sync.Mutex
	ws        *websocket.Conn
	sessionID string
	voice     map[string]voiceCreds

	available atomic.Bool
	closed    chan struct{}
	closeOnce sync.Once
}

// New creates a node client. Call Open before use.
func New(cfg Config, userID string, joiner Joiner, handler audio.EventHandler, log zerolog.Logger) *Node {
	return &Node{
		cfg:     cfg,
		userID:  userID,
		joiner:  joiner,
		handler: handler,
		log:     log.With().Str("component", "lavalink").Str("node", cfg.Name).Logger(),
		httpc:   &http.Client{Timeout: 15 * time.Second},
		voice:   make(map[string]voiceCreds),
		closed:  make(chan struct{}),
	}
}

func (n *Node) Name() string    { return n.cfg.Name }
func (n *Node) Available() bool { return n.available.Load() }

// Open dials the node websocket and starts the event loop. The node becomes
// Available once the server sends its ready frame.
func (n *Node) Open(ctx context.Context) error {
	ws, err := n.dial(ctx)
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.ws = ws
	n.mu.Unlock()

	go n.readLoop(ws)
	return nil
}

func (n *Node) dial(ctx context.Context) (*websocket.Conn, error) {
	scheme := "ws"
	if n.cfg.Secure {
		scheme = "wss"
	}
	header := http.Header{}
	header.Set("Authorization", n.cfg.Password)
	header.Set("User-Id", n.userID)
	header.Set("Client-Name", version.AppName+"/"+version.Version)

	u := fmt.Sprintf("%s://%s/v4/websocket", scheme, n.cfg.Address)
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u, header)
	if err != nil {
		return nil, fmt.Errorf("lavalink: dialing %s: %w", u, err)
	}
	return ws, nil
}

func (n *Node) readLoop(ws *websocket.Conn) {
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			n.available.Store(false)
			select {
			case <-n.closed:
				return
			default:
			}
			n.log.Error().Err(err).Msg("websocket closed, reconnecting")
			n.reconnect()
			return
		}
		n.handleMessage(data)
	}
}

// reconnect redials with a flat delay until it succeeds or the node is
// closed for good.
func (n *Node) reconnect() {
	for {
		select {
		case <-n.closed:
			return
		case <-time.After(5 * time.Second):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		ws, err := n.dial(ctx)
		cancel()
		if err != nil {
			n.log.Warn().Err(err).Msg("reconnect attempt failed")
			continue
		}

		n.mu.Lock()
		n.ws = ws
		n.mu.Unlock()

		go n.readLoop(ws)
		return
	}
}

type wsMessage struct {
	Op        string        `json:"op"`
	SessionID string        `json:"sessionId"`
	Resumed   bool          `json:"resumed"`
	Type      string        `json:"type"`
	GuildID   string        `json:"guildId"`
	Track     *trackPayload `json:"track"`
	Reason    string        `json:"reason"`
	State     *playerState  `json:"state"`
}

type playerState struct {
	Time      int64 `json:"time"`
	Position  int64 `json:"position"`
	Connected bool  `json:"connected"`
}

func (n *Node) handleMessage(data []byte) {
	var msg wsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		n.log.Warn().Err(err).Msg("undecodable node message")
		return
	}

	switch msg.Op {
	case "ready":
		n.mu.Lock()
		n.sessionID = msg.SessionID
		n.mu.Unlock()
		n.available.Store(true)
		n.log.Info().Str("session", msg.SessionID).Bool("resumed", msg.Resumed).Msg("node ready")

	case "event":
		n.handleEvent(msg)

	case "playerUpdate":
		if n.handler != nil && msg.State != nil {
			n.handler.OnPlayerUpdate(msg.GuildID, msg.State.Position)
		}

	case "stats":
		// not consumed

	default:
		n.log.Debug().Str("op", msg.Op).Msg("ignoring node op")
	}
}

func (n *Node) handleEvent(msg wsMessage) {
	if n.handler == nil || msg.Track == nil {
		return
	}
	track := msg.Track.toInfo()

	switch msg.Type {
	case "TrackEndEvent":
		var reason audio.EndReason
		switch msg.Reason {
		case "finished":
			reason = audio.EndReasonFinished
		case "stopped":
			reason = audio.EndReasonStopped
		case "loadFailed":
			reason = audio.EndReasonException
		default:
			// "replaced" and "cleanup" are consequences of our own player
			// updates; advancing on them would double-fire.
			return
		}
		n.handler.OnTrackEnd(msg.GuildID, track, reason)

	case "TrackStuckEvent":
		n.handler.OnTrackEnd(msg.GuildID, track, audio.EndReasonStuck)

	case "TrackExceptionEvent":
		n.handler.OnTrackEnd(msg.GuildID, track, audio.EndReasonException)
	}
}

// Close shuts the node down for good.
func (n *Node) Close(_ context.Context) error {
	n.closeOnce.Do(func() { close(n.closed) })
	n.available.Store(false)

	n.mu.Lock()
	ws := n.ws
	n.ws = nil
	n.mu.Unlock()

	if ws != nil {
		return ws.Close()
	}
	return nil
}

// HandleVoiceServerUpdate feeds gateway voice-server credentials into the
// node. Once both halves are present the player is pointed at the channel.
func (n *Node) HandleVoiceServerUpdate(guildID, token, endpoint string) {
	n.mu.Lock()
	creds := n.voice[guildID]
	creds.token = token
	creds.endpoint = endpoint
	n.voice[guildID] = creds
	n.mu.Unlock()

	n.pushVoice(guildID)
}

// HandleVoiceStateUpdate feeds the bot's own voice session id into the node.
func (n *Node) HandleVoiceStateUpdate(guildID, sessionID string) {
	n.mu.Lock()
	creds := n.voice[guildID]
	creds.sessionID = sessionID
	n.voice[guildID] = creds
	n.mu.Unlock()

	n.pushVoice(guildID)
}

func (n *Node) pushVoice(guildID string) {
	n.mu.Lock()
	creds := n.voice[guildID]
	n.mu.Unlock()

	if !creds.complete() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := n.updatePlayer(ctx, guildID, map[string]any{
		"voice": map[string]any{
			"token":     creds.token,
			"endpoint":  creds.endpoint,
			"sessionId": creds.sessionID,
		},
	})
	if err != nil {
		n.log.Error().Err(err).Str("guild", guildID).Msg("voice update failed")
	}
}

func (n *Node) Connect(_ context.Context, guildID, voiceChannelID string) error {
	return n.joiner.JoinVoice(guildID, voiceChannelID)
}

func (n *Node) Play(ctx context.Context, guildID string, track audio.TrackInfo) error {
	return n.updatePlayer(ctx, guildID, map[string]any{
		"track": map[string]any{"encoded": track.Encoded},
	})
}

func (n *Node) Pause(ctx context.Context, guildID string, paused bool) error {
	return n.updatePlayer(ctx, guildID, map[string]any{"paused": paused})
}

func (n *Node) Seek(ctx context.Context, guildID string, positionMs int64) error {
	return n.updatePlayer(ctx, guildID, map[string]any{"position": positionMs})
}

func (n *Node) SetVolume(ctx context.Context, guildID string, volume int) error {
	return n.updatePlayer(ctx, guildID, map[string]any{"volume": volume})
}

// Stop clears the player's track, which makes the server emit a
// TrackEndEvent with reason "stopped".
func (n *Node) Stop(ctx context.Context, guildID string) error {
	return n.updatePlayer(ctx, guildID, map[string]any{
		"track": map[string]any{"encoded": nil},
	})
}

func (n *Node) Destroy(ctx context.Context, guildID string) error {
	sid, err := n.session()
	if err != nil {
		return err
	}

	n.mu.Lock()
	delete(n.voice, guildID)
	n.mu.Unlock()

	if err := n.rest(ctx, http.MethodDelete, fmt.Sprintf("/sessions/%s/players/%s", sid, guildID), nil, nil); err != nil {
		return err
	}
	return n.joiner.LeaveVoice(guildID)
}

func (n *Node) session() (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sessionID == "" {
		return "", errNotReady
	}
	return n.sessionID, nil
}

func (n *Node) updatePlayer(ctx context.Context, guildID string, body map[string]any) error {
	sid, err := n.session()
	if err != nil {
		return err
	}
	path := fmt.Sprintf("/sessions/%s/players/%s?noReplace=false", sid, guildID)
	return n.rest(ctx, http.MethodPatch, path, body, nil)
}

func (n *Node) rest(ctx context.Context, method, path string, body, out any) error {
	scheme := "http"
	if n.cfg.Secure {
		scheme = "https"
	}
	u := fmt.Sprintf("%s://%s/v4%s", scheme, n.cfg.Address, path)

	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", n.cfg.Password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := n.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("lavalink: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("lavalink: %s %s: status %d: %s", method, path, resp.StatusCode, msg)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
