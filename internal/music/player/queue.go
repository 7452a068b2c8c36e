package player

import "math/rand"

// Queue is the ordered list of upcoming tracks, FIFO except for explicit
// shuffle and the repeat-one front re-insertion. It has no locking of its
// own; the owning session is the single writer.
type Queue struct {
	items []Track
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Append adds tracks to the back.
func (q *Queue) Append(tracks ...Track) {
	q.items = append(q.items, tracks...)
}

// PopFront removes and returns the earliest-enqueued track.
func (q *Queue) PopFront() (Track, bool) {
	if len(q.items) == 0 {
		return Track{}, false
	}
	t := q.items[0]
	q.items = q.items[1:]
	return t, true
}

// PushFront puts a track at the head of the queue, used by repeat-one.
func (q *Queue) PushFront(t Track) {
	q.items = append([]Track{t}, q.items...)
}

// Shuffle permutes the queue uniformly at random.
func (q *Queue) Shuffle() {
	rand.Shuffle(len(q.items), func(i, j int) {
		q.items[i], q.items[j] = q.items[j], q.items[i]
	})
}

// Clear drops all entries.
func (q *Queue) Clear() {
	q.items = nil
}

// Len returns the number of queued tracks.
func (q *Queue) Len() int {
	return len(q.items)
}

// Tracks returns a copy of the queue contents in order.
func (q *Queue) Tracks() []Track {
	out := make([]Track, len(q.items))
	copy(out, q.items)
	return out
}
