package audio

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultResolveAttempts bounds the immediate-retry loop for track
// resolution. The loop has no inter-attempt delay; exhaustion is reported
// as ErrNoResults, not as an internal error.
const DefaultResolveAttempts = 10

// SearchPrefix is prepended to non-URL queries before resolution.
const SearchPrefix = "ytsearch:"

// Registry holds the process-wide set of audio nodes. It is shared across
// all sessions; sessions hold it by reference and must not assume exclusive
// access to any node.
type Registry struct {
	mu    sync.RWMutex
	nodes []Node
	log   zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{log: log.With().Str("component", "audio").Logger()}
}

// Add registers a node. Node names must be unique; a duplicate replaces the
// previous entry.
func (r *Registry) Add(n Node) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, old := range r.nodes {
		if old.Name() == n.Name() {
			r.nodes[i] = n
			r.log.Warn().Str("node", n.Name()).Msg("node replaced")
			return
		}
	}
	r.nodes = append(r.nodes, n)
	r.log.Info().Str("node", n.Name()).Msg("node registered")
}

// Best returns the first available node, or ErrNoNodes.
func (r *Registry) Best() (Node, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, n := range r.nodes {
		if n.Available() {
			return n, nil
		}
	}
	return nil, ErrNoNodes
}

// Nodes returns a snapshot of all registered nodes.
func (r *Registry) Nodes() []Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Node, len(r.nodes))
	copy(out, r.nodes)
	return out
}

// Shutdown closes every node. Used once at process teardown.
func (r *Registry) Shutdown(ctx context.Context) {
	r.mu.Lock()
	nodes := r.nodes
	r.nodes = nil
	r.mu.Unlock()

	for _, n := range nodes {
		if err := n.Close(ctx); err != nil {
			r.log.Error().Err(err).Str("node", n.Name()).Msg("node close failed")
		}
	}
}

// Resolve turns a user query into tracks via the best node. Non-URL input
// becomes a search query. The node is asked up to attempts times with no
// delay in between; an empty or error result after exhaustion maps to
// ErrNoResults. Playlists return all entries, everything else is returned
// as-is for the caller to trim.
func (r *Registry) Resolve(ctx context.Context, query string, attempts int) (*LoadResult, error) {
	node, err := r.Best()
	if err != nil {
		return nil, err
	}

	if attempts <= 0 {
		attempts = DefaultResolveAttempts
	}

	identifier := query
	if !isURL(query) {
		identifier = SearchPrefix + query
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := node.Resolve(ctx, identifier)
		if err != nil {
			lastErr = err
			r.log.Warn().Err(err).Int("attempt", i+1).Str("query", query).Msg("resolve failed")
			continue
		}
		if res.Type == LoadTypeError {
			lastErr = errors.New("node reported a load failure")
			continue
		}
		if res.Type == LoadTypeEmpty || len(res.Tracks) == 0 {
			continue
		}
		return res, nil
	}

	// Empty results and erroring attempts both end up here; keep the last
	// failure in the message so the two cases can be told apart in logs.
	if lastErr != nil {
		return nil, fmt.Errorf("resolving %q: %w: %v", query, ErrNoResults, lastErr)
	}
	return nil, fmt.Errorf("resolving %q: %w", query, ErrNoResults)
}

func isURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
