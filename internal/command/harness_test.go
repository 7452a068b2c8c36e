package command

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jakobgrine/lavabot/internal/audio"
	"github.com/jakobgrine/lavabot/internal/music/player"
	"github.com/jakobgrine/lavabot/internal/music/session"
)

type fakeResponder struct {
	mu         sync.Mutex
	deferred   bool
	replies    []string
	ephemerals []string
	edits      []string
}

func (f *fakeResponder) Defer() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deferred = true
	return nil
}

func (f *fakeResponder) Reply(content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, content)
	return nil
}

func (f *fakeResponder) ReplyEphemeral(content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ephemerals = append(f.ephemerals, content)
	return nil
}

func (f *fakeResponder) Edit(content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, content)
	return nil
}

func (f *fakeResponder) lastReply() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.replies) == 0 {
		return ""
	}
	return f.replies[len(f.replies)-1]
}

func (f *fakeResponder) lastEphemeral() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.ephemerals) == 0 {
		return ""
	}
	return f.ephemerals[len(f.ephemerals)-1]
}

func (f *fakeResponder) lastEdit() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.edits) == 0 {
		return ""
	}
	return f.edits[len(f.edits)-1]
}

type fakeDirectory struct {
	ownerID     string
	guildOwners map[string]string
	roles       map[string]map[string]bool // userID -> roleID -> held
	voice       map[string]string          // userID -> channelID
	channels    map[string][]player.Member // channelID -> occupants
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		guildOwners: map[string]string{},
		roles:       map[string]map[string]bool{},
		voice:       map[string]string{},
		channels:    map[string][]player.Member{},
	}
}

func (f *fakeDirectory) ProcessOwnerID() string { return f.ownerID }

func (f *fakeDirectory) GuildOwnerID(guildID string) (string, error) {
	return f.guildOwners[guildID], nil
}

func (f *fakeDirectory) MemberHasRole(_, userID, roleID string) (bool, error) {
	return f.roles[userID][roleID], nil
}

func (f *fakeDirectory) VoiceChannelMembers(_, channelID string) ([]player.Member, error) {
	return f.channels[channelID], nil
}

func (f *fakeDirectory) UserVoiceChannel(_, userID string) (string, bool) {
	ch, ok := f.voice[userID]
	return ch, ok
}

type fakeVoteSurface struct {
	mu      sync.Mutex
	opened  int
	updates int
	closed  int
	passed  bool
}

func (f *fakeVoteSurface) Open(_, _ string, _ *player.Vote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened++
	return nil
}

func (f *fakeVoteSurface) Update(_ *player.Vote, _, _, _ int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
}

func (f *fakeVoteSurface) Close(_ *player.Vote, passed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	f.passed = passed
}

type stubNode struct {
	mu      sync.Mutex
	results map[string]*audio.LoadResult
	played  []audio.TrackInfo
	stops   int
}

func (s *stubNode) Name() string                                  { return "stub" }
func (s *stubNode) Available() bool                               { return true }
func (s *stubNode) Connect(context.Context, string, string) error { return nil }
func (s *stubNode) Pause(context.Context, string, bool) error     { return nil }
func (s *stubNode) Seek(context.Context, string, int64) error     { return nil }
func (s *stubNode) SetVolume(context.Context, string, int) error  { return nil }
func (s *stubNode) Destroy(context.Context, string) error         { return nil }
func (s *stubNode) Close(context.Context) error                   { return nil }

func (s *stubNode) Play(_ context.Context, _ string, track audio.TrackInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.played = append(s.played, track)
	return nil
}

func (s *stubNode) Stop(context.Context, string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stops++
	return nil
}

func (s *stubNode) Resolve(_ context.Context, query string) (*audio.LoadResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.results[query]; ok {
		return r, nil
	}
	return nil, errors.New("no stubbed result")
}

func (s *stubNode) stopCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stops
}

type nullSurface struct{}

func (nullSurface) Create(player.Snapshot) (player.DisplayRef, error) { return "m", nil }
func (nullSurface) Update(player.DisplayRef, player.Snapshot) error   { return nil }
func (nullSurface) Remove(player.DisplayRef) error                    { return nil }

type harness struct {
	deps    *Deps
	node    *stubNode
	dir     *fakeDirectory
	votes   *fakeVoteSurface
	respond *fakeResponder
}

func newHarness() *harness {
	node := &stubNode{results: map[string]*audio.LoadResult{}}
	reg := audio.NewRegistry(zerolog.Nop())
	reg.Add(node)

	dir := newFakeDirectory()
	votes := &fakeVoteSurface{}
	sessions := session.NewManager(reg, func(string) player.Surface { return nullSurface{} }, zerolog.Nop())

	return &harness{
		deps: &Deps{
			Sessions:        sessions,
			Nodes:           reg,
			Gate:            player.NewGate(dir, map[string]string{"g1": "dj"}),
			Directory:       dir,
			Votes:           votes,
			VoteTimeout:     time.Minute,
			ResolveAttempts: 3,
		},
		node:    node,
		dir:     dir,
		votes:   votes,
		respond: &fakeResponder{},
	}
}

func (h *harness) ctx(actorID string) *Context {
	return &Context{
		Ctx:       context.Background(),
		GuildID:   "g1",
		ChannelID: "text-1",
		Actor:     Actor{ID: actorID, Name: "user-" + actorID},
		Options:   map[string]string{},
		Respond:   h.respond,
		Log:       zerolog.Nop(),
	}
}

// playing puts the guild session into a playing state with one extra
// queued track.
func (h *harness) playing(actorID string) *session.Session {
	h.dir.voice[actorID] = "voice-1"
	s := h.deps.Sessions.GetOrCreate("g1")
	s.SetTextChannel("text-1")
	if err := s.Connect(context.Background(), "voice-1"); err != nil {
		panic(err)
	}
	tracks := []player.Track{
		player.NewTrack(audio.TrackInfo{Encoded: "e1", Title: "first", Duration: 60_000}, player.Requester{ID: actorID}),
		player.NewTrack(audio.TrackInfo{Encoded: "e2", Title: "second", Duration: 60_000}, player.Requester{ID: actorID}),
	}
	if err := s.Enqueue(context.Background(), tracks); err != nil {
		panic(err)
	}
	return s
}
