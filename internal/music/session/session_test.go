package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jakobgrine/lavabot/internal/audio"
	"github.com/jakobgrine/lavabot/internal/music/player"
)

type fakeNode struct {
	mu        sync.Mutex
	connected map[string]string
	played    []audio.TrackInfo
	stops     int
	paused    []bool
	destroyed bool
	volume    int
}

func newFakeNode() *fakeNode {
	return &fakeNode{connected: map[string]string{}}
}

func (f *fakeNode) Name() string    { return "fake" }
func (f *fakeNode) Available() bool { return true }

func (f *fakeNode) Connect(_ context.Context, guildID, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected[guildID] = channelID
	return nil
}

func (f *fakeNode) Play(_ context.Context, _ string, track audio.TrackInfo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = append(f.played, track)
	return nil
}

func (f *fakeNode) Pause(_ context.Context, _ string, paused bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = append(f.paused, paused)
	return nil
}

func (f *fakeNode) Seek(context.Context, string, int64) error { return nil }

func (f *fakeNode) SetVolume(_ context.Context, _ string, v int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = v
	return nil
}

func (f *fakeNode) Stop(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

func (f *fakeNode) Destroy(context.Context, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = true
	return nil
}

func (f *fakeNode) Resolve(context.Context, string) (*audio.LoadResult, error) {
	return nil, errors.New("not used")
}

func (f *fakeNode) Close(context.Context) error { return nil }

func (f *fakeNode) playedTitles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.played))
	for i, t := range f.played {
		out[i] = t.Title
	}
	return out
}

type fakeSurface struct {
	mu      sync.Mutex
	creates int
	removes int
	live    int
}

func (f *fakeSurface) Create(player.Snapshot) (player.DisplayRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	f.live++
	return "msg", nil
}

func (f *fakeSurface) Update(player.DisplayRef, player.Snapshot) error { return nil }

func (f *fakeSurface) Remove(player.DisplayRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removes++
	f.live--
	return nil
}

func (f *fakeSurface) counts() (creates, removes, live int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates, f.removes, f.live
}

func testTrack(title string) player.Track {
	return player.NewTrack(
		audio.TrackInfo{Encoded: "enc-" + title, Title: title, Duration: 180_000},
		player.Requester{ID: "u1", Name: "user"},
	)
}

func setup(t *testing.T) (*Manager, *Session, *fakeNode, *fakeSurface) {
	t.Helper()

	node := newFakeNode()
	reg := audio.NewRegistry(zerolog.Nop())
	reg.Add(node)

	surface := &fakeSurface{}
	m := NewManager(reg, func(string) player.Surface { return surface }, zerolog.Nop())

	s := m.GetOrCreate("g1")
	s.SetTextChannel("text-1")
	return m, s, node, surface
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition never held: %s", what)
}

func TestEnqueueOnIdleStartsPlayback(t *testing.T) {
	ctx := context.Background()
	m, s, node, surface := setup(t)

	if err := s.Connect(ctx, "voice-C"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if node.connected["g1"] != "voice-C" {
		t.Fatalf("node connected to %q, want voice-C", node.connected["g1"])
	}

	tracks := []player.Track{testTrack("one"), testTrack("two"), testTrack("three")}
	if err := s.Enqueue(ctx, tracks); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	if got := s.State(); got != player.StatePlaying {
		t.Errorf("state = %v, want playing", got)
	}
	if got := node.playedTitles(); len(got) != 1 || got[0] != "one" {
		t.Errorf("played = %v, want [one]", got)
	}
	if got := s.QueueLen(); got != 2 {
		t.Errorf("queue length = %d, want 2", got)
	}

	eventually(t, "display created", func() bool {
		creates, _, _ := surface.counts()
		return creates == 1
	})

	// Full run-down: stop advances, natural ends drain the queue, the
	// session destroys itself and the display disappears.
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	m.OnTrackEnd("g1", tracks[0].TrackInfo, audio.EndReasonStopped)

	if got := node.playedTitles(); len(got) != 2 || got[1] != "two" {
		t.Fatalf("played after stop = %v, want [one two]", got)
	}

	m.OnTrackEnd("g1", tracks[1].TrackInfo, audio.EndReasonFinished)
	m.OnTrackEnd("g1", tracks[2].TrackInfo, audio.EndReasonFinished)

	if _, ok := m.Get("g1"); ok {
		t.Error("session still registered after queue drained")
	}
	if !node.destroyed {
		t.Error("node player not destroyed")
	}
	eventually(t, "display removed", func() bool {
		_, _, live := surface.counts()
		return live == 0
	})
}

func TestRepeatOneReplaysSameTrack(t *testing.T) {
	ctx := context.Background()
	m, s, node, _ := setup(t)

	if err := s.Connect(ctx, "voice-C"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	one, two := testTrack("one"), testTrack("two")
	if err := s.Enqueue(ctx, []player.Track{one, two}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	s.SetRepeat(true)

	for i := 0; i < 3; i++ {
		m.OnTrackEnd("g1", one.TrackInfo, audio.EndReasonFinished)
	}

	got := node.playedTitles()
	if len(got) != 4 {
		t.Fatalf("played = %v, want one repeated 4 times", got)
	}
	for _, title := range got {
		if title != "one" {
			t.Fatalf("repeat-one played %v", got)
		}
	}

	// Stopping breaks the loop and moves on.
	s.SetRepeat(true)
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	m.OnTrackEnd("g1", one.TrackInfo, audio.EndReasonStopped)

	got = node.playedTitles()
	if got[len(got)-1] != "two" {
		t.Errorf("after explicit stop played %v, want two last", got)
	}
}

func TestRepeatOneAppliesToStuckAndException(t *testing.T) {
	ctx := context.Background()
	m, s, node, _ := setup(t)

	if err := s.Connect(ctx, "voice-C"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	one, two := testTrack("one"), testTrack("two")
	if err := s.Enqueue(ctx, []player.Track{one, two}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	s.SetRepeat(true)

	m.OnTrackEnd("g1", one.TrackInfo, audio.EndReasonStuck)
	m.OnTrackEnd("g1", one.TrackInfo, audio.EndReasonException)

	got := node.playedTitles()
	if len(got) != 3 || got[1] != "one" || got[2] != "one" {
		t.Errorf("played = %v, want one replayed on stuck and exception", got)
	}
}

func TestDuplicateTrackEndSignalsAdvanceOnce(t *testing.T) {
	ctx := context.Background()
	m, s, node, _ := setup(t)

	if err := s.Connect(ctx, "voice-C"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	tracks := []player.Track{testTrack("one"), testTrack("two"), testTrack("three")}
	if err := s.Enqueue(ctx, tracks); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	// The same end signal delivered twice must not skip over track two.
	m.OnTrackEnd("g1", tracks[0].TrackInfo, audio.EndReasonFinished)
	m.OnTrackEnd("g1", tracks[0].TrackInfo, audio.EndReasonFinished)

	got := node.playedTitles()
	if len(got) != 2 || got[1] != "two" {
		t.Errorf("played = %v, want [one two]", got)
	}
	if cur := s.Current(); cur == nil || cur.Title != "two" {
		t.Errorf("current = %v, want two", cur)
	}
}

func TestPauseResumeStateMachine(t *testing.T) {
	ctx := context.Background()
	_, s, node, _ := setup(t)

	if err := s.Pause(ctx); !errors.Is(err, player.ErrNotPlaying) {
		t.Errorf("Pause while disconnected: %v, want ErrNotPlaying", err)
	}

	if err := s.Connect(ctx, "voice-C"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := s.Enqueue(ctx, []player.Track{testTrack("one")}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	if err := s.Resume(ctx); !errors.Is(err, player.ErrNotPaused) {
		t.Errorf("Resume while playing: %v, want ErrNotPaused", err)
	}
	if err := s.Pause(ctx); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if got := s.State(); got != player.StatePaused {
		t.Errorf("state = %v, want paused", got)
	}
	if err := s.Pause(ctx); !errors.Is(err, player.ErrAlreadyPaused) {
		t.Errorf("Pause while paused: %v, want ErrAlreadyPaused", err)
	}
	if err := s.Resume(ctx); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if got := s.State(); got != player.StatePlaying {
		t.Errorf("state = %v, want playing", got)
	}

	node.mu.Lock()
	pauseCalls := node.paused
	node.mu.Unlock()
	if len(pauseCalls) != 2 || !pauseCalls[0] || pauseCalls[1] {
		t.Errorf("node pause calls = %v, want [true false]", pauseCalls)
	}
}

func TestConnectWithoutNodesFails(t *testing.T) {
	reg := audio.NewRegistry(zerolog.Nop())
	m := NewManager(reg, func(string) player.Surface { return &fakeSurface{} }, zerolog.Nop())
	s := m.GetOrCreate("g1")

	err := s.Connect(context.Background(), "voice-C")
	if !errors.Is(err, audio.ErrNoNodes) {
		t.Fatalf("Connect: %v, want ErrNoNodes", err)
	}
	if s.Connected() {
		t.Error("session reports connected after failed connect")
	}
	if got := s.State(); got != player.StateDisconnected {
		t.Errorf("state = %v, want disconnected (no partial transition)", got)
	}
}

func TestSkipVoteLifecycle(t *testing.T) {
	_, s, _, _ := setup(t)

	v := player.NewVote(3, time.Minute, nil, nil)
	if !s.BeginSkipVote(v) {
		t.Fatal("BeginSkipVote rejected on fresh session")
	}
	v.Open("requester")

	if s.ActiveSkipVote() != v {
		t.Error("ActiveSkipVote did not return the open vote")
	}
	if s.BeginSkipVote(player.NewVote(3, time.Minute, nil, nil)) {
		t.Error("second concurrent vote accepted")
	}

	v.Cast("u2", true)
	v.Cast("u3", true)
	if s.ActiveSkipVote() != nil {
		t.Error("decided vote still reported active")
	}
	if !s.BeginSkipVote(player.NewVote(3, time.Minute, nil, nil)) {
		t.Error("new vote rejected after previous one decided")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	node := newFakeNode()
	reg := audio.NewRegistry(zerolog.Nop())
	reg.Add(node)
	m := NewManager(reg, func(string) player.Surface { return &fakeSurface{} }, zerolog.Nop())

	s1 := m.GetOrCreate("g1")
	s2 := m.GetOrCreate("g2")

	if err := s1.Connect(ctx, "voice-1"); err != nil {
		t.Fatalf("Connect g1: %v", err)
	}
	if err := s1.Enqueue(ctx, []player.Track{testTrack("one")}); err != nil {
		t.Fatalf("Enqueue g1: %v", err)
	}

	if s2.Connected() || s2.State() != player.StateDisconnected {
		t.Error("g2 affected by g1 activity")
	}

	// Destroying g1 leaves g2 registered.
	if err := s1.Destroy(ctx); err != nil {
		t.Fatalf("Destroy g1: %v", err)
	}
	if _, ok := m.Get("g1"); ok {
		t.Error("g1 still registered after destroy")
	}
	if _, ok := m.Get("g2"); !ok {
		t.Error("g2 lost when g1 was destroyed")
	}
}

func TestDestroyIdempotent(t *testing.T) {
	ctx := context.Background()
	_, s, _, surface := setup(t)

	if err := s.Connect(ctx, "voice-C"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := s.Destroy(ctx); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := s.Destroy(ctx); err != nil {
		t.Fatalf("second Destroy: %v", err)
	}

	_, removes, _ := surface.counts()
	if removes != 0 {
		// no display was ever created, so nothing should be removed
		t.Errorf("removes = %d, want 0", removes)
	}
	if got := s.State(); got != player.StateDisconnected {
		t.Errorf("state = %v, want disconnected", got)
	}
}

func TestPlayerUpdateRecordsPosition(t *testing.T) {
	ctx := context.Background()
	m, s, _, _ := setup(t)

	if err := s.Connect(ctx, "voice-C"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := s.Enqueue(ctx, []player.Track{testTrack("one")}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	m.OnPlayerUpdate("g1", 42_000)
	if got := s.Position(); got != 42_000 {
		t.Errorf("position = %d, want 42000", got)
	}

	// Reports for guilds without a session are dropped.
	m.OnPlayerUpdate("other-guild", 99_000)

	// The position belongs to the track; it resets when the track ends.
	m.OnTrackEnd("g1", testTrack("one").TrackInfo, audio.EndReasonFinished)
	if got := s.Position(); got != 0 {
		t.Errorf("position after track end = %d, want 0", got)
	}
}
