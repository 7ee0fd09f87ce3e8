package journal

import (
	"context"
	"sort"
	"sync"
)

// Memory is the in-process Journal used for tests and single-node
// deployments without a database.
type Memory struct {
	mu   sync.RWMutex
	runs map[string]Run
}

// NewMemory constructs an empty in-memory journal.
func NewMemory() *Memory {
	return &Memory{runs: make(map[string]Run)}
}

func (m *Memory) Record(ctx context.Context, run Run) error {
	m.mu.Lock()
	m.runs[run.ID] = cloneRun(run)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (Run, bool, error) {
	m.mu.RLock()
	run, ok := m.runs[id]
	m.mu.RUnlock()
	if !ok {
		return Run{}, false, nil
	}
	return cloneRun(run), true, nil
}

func (m *Memory) List(ctx context.Context) ([]Run, error) {
	m.mu.RLock()
	out := make([]Run, 0, len(m.runs))
	for _, run := range m.runs {
		out = append(out, cloneRun(run))
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func cloneRun(run Run) Run {
	dup := run
	if run.Report != nil {
		dup.Report = append([]byte(nil), run.Report...)
	}
	if run.Artifacts != nil {
		dup.Artifacts = append([]string(nil), run.Artifacts...)
	}
	if run.CompletedAt != nil {
		t := *run.CompletedAt
		dup.CompletedAt = &t
	}
	return dup
}
