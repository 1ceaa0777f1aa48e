package slideshow

// MaxHistory caps the number of transitions remembered for stepping back.
const MaxHistory = 20

// HistoryEntry records one committed transition.
type HistoryEntry struct {
	ViewIdx      int // slot that became visible
	LastViewIdx  int // slot queued for replacement at that time
	PoolPosition int // pool cursor at that time
	PhotoID      int // photo shown
}

// BackStep tells the Runner how to rewind. It restores the pool cursor and
// replacement slot from Entry, puts Entry's photo back into its slot if the
// slot moved on, then runs a transition with Replay as the explicit index so
// that Entry's slot is the one shown.
type BackStep struct {
	Entry     HistoryEntry
	Replay    int
	FromStart bool // rewound to the oldest entry
}

// History is a bounded FIFO of transitions with a movable read position.
// Entries are only appended by automatic transitions made at the newest
// position; steps taken while navigating just move the position.
type History struct {
	entries []HistoryEntry
	idx     int
	max     int
	total   int
}

// NewHistory creates a History holding at most capacity entries.
func NewHistory(capacity int) *History {
	return &History{idx: -1, max: max(capacity, 1)}
}

// Add records a transition. explicit marks a user or replay step, which does
// not append. The read position always advances and never passes the
// newest entry.
func (h *History) Add(explicit bool, e HistoryEntry) {
	if !explicit && h.idx == len(h.entries)-1 {
		if len(h.entries) >= h.max {
			h.entries = append(h.entries[:0], h.entries[1:]...)
			h.idx = max(h.idx-1, -1)
		}
		h.entries = append(h.entries, e)
		h.total++
	}
	h.idx++
	// stays on the newest entry rather than wrapping to 0
	if h.idx > len(h.entries)-1 {
		h.idx = len(h.entries) - 1
	}
}

// Back moves the read position two entries back. The replay transition that
// follows is recorded as explicit and advances it by one, landing on the
// entry before the one on screen. ok is false when nothing earlier can be
// reached.
func (h *History) Back() (BackStep, bool) {
	if h.idx <= 0 {
		return BackStep{}, false
	}
	idx := h.idx - 2
	if idx < 0 {
		if h.wrapped() {
			// the entry before the oldest was evicted
			return BackStep{}, false
		}
		h.idx = -1
		return BackStep{Entry: h.entries[0], Replay: h.entries[0].ViewIdx - 1, FromStart: true}, true
	}
	h.idx = idx
	e := h.entries[idx+1]
	return BackStep{Entry: e, Replay: e.ViewIdx - 1}, true
}

// wrapped reports whether any entry was ever evicted.
func (h *History) wrapped() bool {
	return h.total > h.max
}

// Clear forgets every entry.
func (h *History) Clear() {
	h.entries = nil
	h.idx = -1
	h.total = 0
}

// Len returns the number of entries held.
func (h *History) Len() int { return len(h.entries) }

// Index returns the read position, -1 when empty or rewound to the start.
func (h *History) Index() int { return h.idx }

// Cap returns the maximum number of entries.
func (h *History) Cap() int { return h.max }

// Entries returns a copy of the entries, oldest first.
func (h *History) Entries() []HistoryEntry {
	return append([]HistoryEntry(nil), h.entries...)
}
