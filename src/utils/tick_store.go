package utils

import (
	"sort"
	"sync"

	"stock-dashboard/src/models"
)

// -----------------------------------------------------------------------------
// TickStore keeps one ring buffer of live ticks per symbol.
// -----------------------------------------------------------------------------

type TickStore struct {
	Streams  map[string]*RingBuffer[models.MTick]
	Capacity int
	mu       sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewTickStore(capacity int) *TickStore {
	return &TickStore{
		Streams:  make(map[string]*RingBuffer[models.MTick]),
		Capacity: capacity,
	}
}

// -----------------------------------------------------------------------------

// AddTick appends a tick, skipping it when it repeats the previous timestamp.
func (ts *TickStore) AddTick(tick models.MTick) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	buf, ok := ts.Streams[tick.Symbol]
	if !ok {
		buf = NewRingBuffer[models.MTick](ts.Capacity)
		ts.Streams[tick.Symbol] = buf
	}
	if last, ok := buf.Last(); ok && last.Timestamp >= tick.Timestamp {
		return false
	}
	buf.Push(tick)
	return true
}

// -----------------------------------------------------------------------------

// History returns up to limit of the newest ticks for a symbol, oldest
// first. A limit <= 0 returns everything buffered.
func (ts *TickStore) History(symbol string, limit int) []models.MTick {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	buf, ok := ts.Streams[symbol]
	if !ok {
		return []models.MTick{}
	}
	if limit <= 0 {
		return buf.All()
	}
	return buf.Latest(limit)
}

// -----------------------------------------------------------------------------

// Latest returns the newest tick for every symbol with data.
func (ts *TickStore) Latest() map[string]models.MTick {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	result := make(map[string]models.MTick, len(ts.Streams))
	for sym, buf := range ts.Streams {
		if t, ok := buf.Last(); ok {
			result[sym] = t
		}
	}
	return result
}

// -----------------------------------------------------------------------------

// Retain drops the buffers of symbols not in keep.
func (ts *TickStore) Retain(keep []string) {
	want := make(map[string]struct{}, len(keep))
	for _, s := range keep {
		want[s] = struct{}{}
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()
	for sym := range ts.Streams {
		if _, ok := want[sym]; !ok {
			delete(ts.Streams, sym)
		}
	}
}

// -----------------------------------------------------------------------------

func (ts *TickStore) Symbols() []string {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	out := make([]string, 0, len(ts.Streams))
	for sym := range ts.Streams {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// -----------------------------------------------------------------------------

// SymbolCount returns number of symbols with data
func (ts *TickStore) SymbolCount() int {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	return len(ts.Streams)
}
