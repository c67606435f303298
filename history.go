package hsm

import (
	"sort"
	"sync"
	"time"
)

// HistoryRecord remembers the exact leaf that was active when a composite
// state was last exited.
type HistoryRecord struct {
	Timestamp time.Time
	State     string
	Composite string
}

// cursor tracks the live position of a machine and its history records.
// Only the history map is guarded; the current position follows the
// machine's single-caller contract.
type cursor struct {
	initial string
	current string

	mu      sync.RWMutex
	history map[string]HistoryRecord
	now     func() time.Time
}

func newCursor(initial string) *cursor {
	return &cursor{
		initial: initial,
		current: initial,
		history: make(map[string]HistoryRecord),
		now:     time.Now,
	}
}

// recordExit overwrites the history record of composite with leaf
func (c *cursor) recordExit(composite, leaf string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history[composite] = HistoryRecord{
		Timestamp: c.now(),
		State:     leaf,
		Composite: composite,
	}
}

// historyState returns the last recorded leaf for composite
func (c *cursor) historyState(composite string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	record, ok := c.history[composite]
	if !ok {
		return "", false
	}
	return record.State, true
}

// resetHistory clears every record and reverts to the initial state
func (c *cursor) resetHistory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.history)
	c.current = c.initial
}

// snapshot returns a copy of the records ordered by composite name
func (c *cursor) snapshot() []HistoryRecord {
	c.mu.RLock()
	records := make([]HistoryRecord, 0, len(c.history))
	for _, record := range c.history {
		records = append(records, record)
	}
	c.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].Composite < records[j].Composite
	})
	return records
}
