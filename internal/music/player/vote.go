package player

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultVoteTimeout is how long a skip vote stays open.
const DefaultVoteTimeout = 30 * time.Second

// Member is one occupant of a voice channel, as reported by the chat-room
// directory.
type Member struct {
	ID  string
	Bot bool
}

// SkipThreshold computes the quorum needed to skip: everyone for up to two
// human listeners, a majority beyond that.
func SkipThreshold(members []Member) int {
	n := 0
	for _, m := range members {
		if !m.Bot {
			n++
		}
	}
	if n <= 2 {
		return n
	}
	return (n + 1) / 2
}

// Vote is one ephemeral skip contest. Each identity holds at most one vote;
// casting the opposite polarity replaces the previous one. The vote decides
// true as soon as upvotes minus downvotes reach the threshold, and false
// when the timer expires first. Exactly one decision is ever produced.
type Vote struct {
	ID        string
	Threshold int

	ttl      time.Duration
	eligible func(userID string) bool
	onChange func(up, down, threshold int)

	mu      sync.Mutex
	up      map[string]struct{}
	down    map[string]struct{}
	timer   *time.Timer
	decided bool
	result  bool
	done    chan struct{}
}

// NewVote creates a vote. eligible filters who may cast (nil allows
// everyone); onChange fires after every accepted tally change while the
// vote is still open.
func NewVote(threshold int, ttl time.Duration, eligible func(string) bool, onChange func(up, down, threshold int)) *Vote {
	if ttl <= 0 {
		ttl = DefaultVoteTimeout
	}
	return &Vote{
		ID:        uuid.NewString(),
		Threshold: threshold,
		ttl:       ttl,
		eligible:  eligible,
		onChange:  onChange,
		up:        make(map[string]struct{}),
		down:      make(map[string]struct{}),
		done:      make(chan struct{}),
	}
}

// Open counts the requester's upvote and either decides immediately (a
// zero-member channel has threshold zero and passes at once) or arms the
// expiry timer.
func (v *Vote) Open(requesterID string) {
	v.mu.Lock()
	v.up[requesterID] = struct{}{}
	if v.countLocked() >= v.Threshold {
		v.decideLocked(true)
		v.mu.Unlock()
		return
	}
	v.timer = time.AfterFunc(v.ttl, v.expire)
	v.mu.Unlock()

	v.notify()
}

// Cast records a vote. It reports whether the ballot was accepted; decided
// votes and ineligible identities are rejected.
func (v *Vote) Cast(userID string, up bool) bool {
	v.mu.Lock()
	if v.decided {
		v.mu.Unlock()
		return false
	}
	if v.eligible != nil && !v.eligible(userID) {
		v.mu.Unlock()
		return false
	}

	if up {
		delete(v.down, userID)
		v.up[userID] = struct{}{}
	} else {
		delete(v.up, userID)
		v.down[userID] = struct{}{}
	}

	if v.countLocked() >= v.Threshold {
		v.decideLocked(true)
		v.mu.Unlock()
		return true
	}
	v.mu.Unlock()

	v.notify()
	return true
}

// Wait blocks until the vote is decided. Context cancellation closes the
// vote as failed.
func (v *Vote) Wait(ctx context.Context) bool {
	select {
	case <-v.done:
	case <-ctx.Done():
		v.mu.Lock()
		v.decideLocked(false)
		v.mu.Unlock()
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	return v.result
}

// Counts returns the current tallies and the threshold.
func (v *Vote) Counts() (up, down, threshold int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.up), len(v.down), v.Threshold
}

// Decided reports whether the contest is over.
func (v *Vote) Decided() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.decided
}

func (v *Vote) countLocked() int {
	return len(v.up) - len(v.down)
}

// decideLocked settles the vote once; the pending timer is cancelled.
func (v *Vote) decideLocked(result bool) {
	if v.decided {
		return
	}
	v.decided = true
	v.result = result
	if v.timer != nil {
		v.timer.Stop()
	}
	close(v.done)
}

func (v *Vote) expire() {
	v.mu.Lock()
	v.decideLocked(false)
	v.mu.Unlock()
}

func (v *Vote) notify() {
	if v.onChange == nil {
		return
	}
	up, down, threshold := v.Counts()
	v.onChange(up, down, threshold)
}
