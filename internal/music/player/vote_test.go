package player

import (
	"context"
	"testing"
	"time"
)

func members(humans, bots int) []Member {
	var out []Member
	for i := 0; i < humans; i++ {
		out = append(out, Member{ID: string(rune('a' + i))})
	}
	for i := 0; i < bots; i++ {
		out = append(out, Member{ID: "bot", Bot: true})
	}
	return out
}

func TestSkipThreshold(t *testing.T) {
	cases := []struct {
		humans int
		want   int
	}{
		{0, 0},
		{1, 1},
		{2, 2},
		{3, 2},
		{4, 2},
		{7, 4},
		{10, 5},
	}
	for _, c := range cases {
		if got := SkipThreshold(members(c.humans, 1)); got != c.want {
			t.Errorf("SkipThreshold(%d humans) = %d, want %d", c.humans, got, c.want)
		}
	}
}

func TestSkipThresholdIgnoresBots(t *testing.T) {
	if got := SkipThreshold(members(0, 3)); got != 0 {
		t.Errorf("bot-only channel threshold = %d, want 0", got)
	}
}

func TestVoteImmediateDecision(t *testing.T) {
	v := NewVote(1, time.Minute, nil, nil)
	v.Open("requester")

	if !v.Decided() {
		t.Fatal("vote with threshold 1 not decided after requester upvote")
	}
	if !v.Wait(context.Background()) {
		t.Error("vote decided false, want true")
	}
}

func TestVoteZeroThresholdPasses(t *testing.T) {
	v := NewVote(0, time.Minute, nil, nil)
	v.Open("requester")

	if !v.Wait(context.Background()) {
		t.Error("zero-threshold vote decided false, want true")
	}
}

func TestVoteReachesQuorum(t *testing.T) {
	v := NewVote(3, time.Minute, nil, nil)
	v.Open("requester")

	if v.Decided() {
		t.Fatal("vote decided before quorum")
	}

	v.Cast("u2", true)
	if v.Decided() {
		t.Fatal("vote decided at 2 of 3")
	}

	v.Cast("u3", true)
	if !v.Decided() {
		t.Fatal("vote not decided at 3 of 3")
	}
	if !v.Wait(context.Background()) {
		t.Error("quorum vote decided false, want true")
	}
}

func TestVoteDownvotesCount(t *testing.T) {
	v := NewVote(2, time.Minute, nil, nil)
	v.Open("requester")

	v.Cast("hater", false)
	v.Cast("u2", true)
	// count is 2 up - 1 down = 1, below threshold
	if v.Decided() {
		t.Fatal("vote decided with net count below threshold")
	}

	v.Cast("u3", true)
	if !v.Decided() {
		t.Fatal("vote not decided with net count at threshold")
	}
}

func TestVoteRecastSwitchesPolarity(t *testing.T) {
	v := NewVote(5, time.Minute, nil, nil)
	v.Open("requester")

	v.Cast("u2", true)
	up, down, _ := v.Counts()
	if up != 2 || down != 0 {
		t.Fatalf("counts = (%d,%d), want (2,0)", up, down)
	}

	v.Cast("u2", false)
	up, down, _ = v.Counts()
	if up != 1 || down != 1 {
		t.Fatalf("after switch counts = (%d,%d), want (1,1)", up, down)
	}

	v.Cast("u2", true)
	up, down, _ = v.Counts()
	if up != 2 || down != 0 {
		t.Fatalf("after switch back counts = (%d,%d), want (2,0)", up, down)
	}
}

func TestVoteExpiryDecidesFalse(t *testing.T) {
	v := NewVote(3, 20*time.Millisecond, nil, nil)
	v.Open("requester")

	if v.Wait(context.Background()) {
		t.Error("expired vote decided true, want false")
	}
	if !v.Decided() {
		t.Error("expired vote not marked decided")
	}
}

func TestVoteIneligibleRejected(t *testing.T) {
	eligible := func(id string) bool { return id != "outsider" }
	v := NewVote(2, time.Minute, eligible, nil)
	v.Open("requester")

	if v.Cast("outsider", true) {
		t.Error("ineligible ballot accepted")
	}
	if v.Decided() {
		t.Error("vote decided by ineligible ballot")
	}

	if !v.Cast("insider", true) {
		t.Error("eligible ballot rejected")
	}
	if !v.Decided() {
		t.Error("vote not decided at quorum")
	}
}

func TestVoteCastAfterDecisionRejected(t *testing.T) {
	v := NewVote(1, time.Minute, nil, nil)
	v.Open("requester")

	if v.Cast("late", true) {
		t.Error("ballot accepted after decision")
	}
}

func TestVoteChangeCallback(t *testing.T) {
	var calls int
	v := NewVote(10, time.Minute, nil, func(up, down, threshold int) {
		calls++
		if threshold != 10 {
			t.Errorf("callback threshold = %d, want 10", threshold)
		}
	})
	v.Open("requester")
	v.Cast("u2", true)
	v.Cast("u3", false)

	if calls != 3 {
		t.Errorf("onChange fired %d times, want 3", calls)
	}
}

func TestVoteWaitCancellation(t *testing.T) {
	v := NewVote(5, time.Minute, nil, nil)
	v.Open("requester")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if v.Wait(ctx) {
		t.Error("cancelled vote decided true, want false")
	}
}
