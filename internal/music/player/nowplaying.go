package player

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Snapshot is the display-relevant state of a session at one moment.
type Snapshot struct {
	Track         *Track
	TextChannelID string
	Paused        bool
	Connected     bool
	RepeatOne     bool
}

// DisplayRef identifies a live status message on the chat surface.
type DisplayRef string

// Surface is the outward display the reconciler drives. Create must also
// attach the transport controls, Remove must detach them.
type Surface interface {
	Create(snap Snapshot) (DisplayRef, error)
	Update(ref DisplayRef, snap Snapshot) error
	Remove(ref DisplayRef) error
}

// NowPlaying keeps exactly one live status display in sync with the player.
// Updates are serialized through a single-slot pending queue: at most one
// surface call is in flight and at most one snapshot is pending. A trigger
// arriving while busy overwrites the pending snapshot, so intermediate
// states may never render but the final state always does.
type NowPlaying struct {
	surface Surface
	limiter *rate.Limiter
	log     zerolog.Logger

	mu        sync.Mutex
	ref       DisplayRef
	live      bool
	inflight  bool
	pending   bool
	latest    Snapshot
	destroyed bool
}

// NewNowPlaying creates a reconciler over the given surface. Edits are rate
// limited to stay under the platform's message-edit budget.
func NewNowPlaying(surface Surface, log zerolog.Logger) *NowPlaying {
	return &NowPlaying{
		surface: surface,
		limiter: rate.NewLimiter(rate.Every(time.Second), 2),
		log:     log.With().Str("component", "nowplaying").Logger(),
	}
}

// Reconcile records the latest state and makes sure a flush is running.
// With no current track this is a no-op, not an error.
func (n *NowPlaying) Reconcile(snap Snapshot) {
	if snap.Track == nil {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.destroyed {
		return
	}
	n.latest = snap
	if n.inflight {
		n.pending = true
		return
	}
	n.inflight = true
	go n.flush()
}

// flush pushes snapshots to the surface until the pending slot stays clean.
// It always reads the latest snapshot under the lock, so a newer state can
// never be overwritten by an older one.
func (n *NowPlaying) flush() {
	for {
		n.mu.Lock()
		snap := n.latest
		live, ref := n.live, n.ref
		n.pending = false
		n.mu.Unlock()

		if err := n.limiter.Wait(context.Background()); err != nil {
			return
		}

		if !live {
			newRef, err := n.surface.Create(snap)
			if err != nil {
				n.log.Error().Err(err).Msg("display create failed")
			} else {
				n.mu.Lock()
				if n.destroyed {
					n.inflight = false
					n.mu.Unlock()
					// Lost the race with Destroy; don't leave an orphan.
					if err := n.surface.Remove(newRef); err != nil {
						n.log.Error().Err(err).Msg("orphan display remove failed")
					}
					return
				}
				n.ref, n.live = newRef, true
				n.mu.Unlock()
			}
		} else {
			if err := n.surface.Update(ref, snap); err != nil {
				n.log.Error().Err(err).Msg("display update failed")
			}
		}

		n.mu.Lock()
		if n.destroyed || !n.pending {
			n.inflight = false
			n.mu.Unlock()
			return
		}
		n.mu.Unlock()
	}
}

// Destroy removes the display and detaches its controls. Idempotent.
func (n *NowPlaying) Destroy() {
	n.mu.Lock()
	if n.destroyed {
		n.mu.Unlock()
		return
	}
	n.destroyed = true
	ref, live := n.ref, n.live
	n.ref, n.live, n.pending = "", false, false
	n.mu.Unlock()

	if live {
		if err := n.surface.Remove(ref); err != nil {
			n.log.Error().Err(err).Msg("display remove failed")
		}
	}
}

// Live reports whether a display message currently exists.
func (n *NowPlaying) Live() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.live
}
