package checkpoint

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps the journal in process memory.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	runs   map[string]map[int]memoryEntry // runID -> sequence -> entry
	closed bool
}

type memoryEntry struct {
	nodeID    string
	data      []byte
	timestamp time.Time
}

// NewMemoryStore creates an empty in-memory journal.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs: make(map[string]map[int]memoryEntry),
	}
}

// Append implements Store.
func (m *MemoryStore) Append(_ context.Context, rec Record) error {
	if err := validate(rec); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	run := m.runs[rec.RunID]
	if run == nil {
		run = make(map[int]memoryEntry)
		m.runs[rec.RunID] = run
	}
	if _, exists := run[rec.Sequence]; exists {
		return ErrDuplicateSequence
	}

	// Copy to avoid retaining the caller's slice.
	data := make([]byte, len(rec.Data))
	copy(data, rec.Data)

	run[rec.Sequence] = memoryEntry{
		nodeID:    rec.NodeID,
		data:      data,
		timestamp: time.Now().UTC(),
	}
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context, runID string, sequence int) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	entry, ok := m.runs[runID][sequence]
	if !ok {
		return nil, ErrNotFound
	}

	result := make([]byte, len(entry.data))
	copy(result, entry.data)
	return result, nil
}

// List implements Store.
func (m *MemoryStore) List(_ context.Context, runID string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	run := m.runs[runID]
	infos := make([]Info, 0, len(run))
	for seq, entry := range run {
		infos = append(infos, Info{
			RunID:     runID,
			NodeID:    entry.nodeID,
			Sequence:  seq,
			Timestamp: entry.timestamp,
			Size:      int64(len(entry.data)),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Sequence < infos[j].Sequence
	})
	return infos, nil
}

// DeleteRun implements Store.
func (m *MemoryStore) DeleteRun(_ context.Context, runID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.runs, runID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.runs = nil
	return nil
}

// Len returns the number of entries across all runs.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, run := range m.runs {
		count += len(run)
	}
	return count
}
