package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func indices(entries []Entry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.Index
	}
	return out
}

func TestHistoryRing(t *testing.T) {
	h := NewHistory(3)
	assert.Equal(t, 3, h.Cap())
	assert.Empty(t, h.Snapshot())

	h.Add(Entry{Index: 0})
	h.Add(Entry{Index: 1})
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, []int{0, 1}, indices(h.Snapshot()))

	h.Add(Entry{Index: 2})
	h.Add(Entry{Index: 3})
	h.Add(Entry{Index: 4})
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []int{2, 3, 4}, indices(h.Snapshot()))

	h.Clear()
	assert.Equal(t, 0, h.Len())
	assert.Empty(t, h.Snapshot())
}

func TestHistoryDefaultSize(t *testing.T) {
	h := NewHistory(0)
	assert.Equal(t, DefaultHistorySize, h.Cap())

	for i := 0; i < 120; i++ {
		h.Add(Entry{Index: i})
	}
	snap := h.Snapshot()
	assert.Len(t, snap, DefaultHistorySize)
	assert.Equal(t, 70, snap[0].Index)
	assert.Equal(t, 119, snap[len(snap)-1].Index)
}

func TestHistoryConcurrent(t *testing.T) {
	h := NewHistory(8)
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				h.Add(Entry{Index: i})
				_ = h.Snapshot()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, h.Len())
}
