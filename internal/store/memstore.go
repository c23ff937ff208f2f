package store

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemStore is an in-memory Store for tests and the MCP server's
// ephemeral mode.
type MemStore struct {
	mu     sync.Mutex
	nextID int64
	runs   map[int64]*Run
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{nextID: 1, runs: map[int64]*Run{}}
}

func (m *MemStore) SaveRun(r *Run) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *r
	cp.ID = m.nextID
	m.nextID++
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	cp.Scores = copyScores(r.Scores)
	m.runs[cp.ID] = &cp
	r.ID = cp.ID
	return cp.ID, nil
}

func (m *MemStore) GetRun(runID int64) (*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.runs[runID]
	if !ok {
		return nil, fmt.Errorf("get run %d: %w", runID, ErrRunNotFound)
	}
	cp := *r
	cp.Scores = copyScores(r.Scores)
	return &cp, nil
}

func (m *MemStore) ListRuns() ([]*Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	runs := make([]*Run, 0, len(m.runs))
	for _, r := range m.runs {
		cp := *r
		cp.Scores = copyScores(r.Scores)
		runs = append(runs, &cp)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID > runs[j].ID })
	return runs, nil
}

func (m *MemStore) Close() error { return nil }

func copyScores(s map[string]float64) map[string]float64 {
	if s == nil {
		return nil
	}
	out := make(map[string]float64, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
