package session

import (
	"sync"
	"time"

	"github.com/cwbudde/algo-eeg/eeg/attention"
	"github.com/cwbudde/algo-eeg/eeg/band"
	"github.com/cwbudde/algo-eeg/eeg/stream"
)

// DefaultHistorySize is the number of entries kept by a [History].
const DefaultHistorySize = 50

// Entry is the compact record of one tick kept in a [History].
type Entry struct {
	Index    int                `json:"index"`
	Time     float64            `json:"time"`
	At       time.Time          `json:"at"`
	Powers   band.Powers        `json:"band_powers"`
	Dominant band.Band          `json:"dominant_band"`
	Label    attention.Label    `json:"attention_label"`
	Ratios   map[string]float64 `json:"ratios,omitempty"`
}

// EntryOf summarizes a tick.
func EntryOf(t stream.Tick, at time.Time) Entry {
	return Entry{
		Index:    t.Index,
		Time:     t.Time,
		At:       at,
		Powers:   t.Powers,
		Dominant: t.Dominant,
		Label:    t.Label,
		Ratios:   t.Ratios,
	}
}

// History is a bounded, thread-safe ring of the most recent entries.
type History struct {
	mu   sync.RWMutex
	buf  []Entry
	next int
	full bool
}

// NewHistory returns a ring holding up to size entries. Sizes below 1 use
// [DefaultHistorySize].
func NewHistory(size int) *History {
	if size < 1 {
		size = DefaultHistorySize
	}
	return &History{buf: make([]Entry, size)}
}

// Add appends e, dropping the oldest entry when full.
func (h *History) Add(e Entry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf[h.next] = e
	h.next = (h.next + 1) % len(h.buf)
	if h.next == 0 {
		h.full = true
	}
}

// Len returns the number of stored entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.full {
		return len(h.buf)
	}
	return h.next
}

// Cap returns the ring size.
func (h *History) Cap() int {
	return len(h.buf)
}

// Snapshot returns the stored entries, oldest first.
func (h *History) Snapshot() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.full {
		return append([]Entry(nil), h.buf[:h.next]...)
	}
	out := make([]Entry, 0, len(h.buf))
	out = append(out, h.buf[h.next:]...)
	return append(out, h.buf[:h.next]...)
}

// Clear removes all entries.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.buf)
	h.next = 0
	h.full = false
}
