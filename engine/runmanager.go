package engine

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gofrs/uuid"

	"github.com/tradelens/backtest/strategy"
)

// RunManager registers every run so callers can look results up by id after
// the fact. Safe for concurrent use
type RunManager struct {
	m    sync.Mutex
	runs map[uuid.UUID]*Run
}

// NewRunManager creates an empty run registry
func NewRunManager() *RunManager {
	return &RunManager{runs: make(map[uuid.UUID]*Run)}
}

// NewRun creates and registers a pending run for the strategy
func (m *RunManager) NewRun(nickname string, s *strategy.Strategy) (*Run, error) {
	if s == nil {
		return nil, errNilStrategyRun
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	r := &Run{
		ID:       id,
		Nickname: nickname,
		Strategy: s,
		Status:   Pending,
	}
	m.m.Lock()
	defer m.m.Unlock()
	if _, ok := m.runs[id]; ok {
		return nil, fmt.Errorf("%w %v", ErrRunAlreadyExists, id)
	}
	m.runs[id] = r
	return r, nil
}

// GetRunByID returns the registered run for the id
func (m *RunManager) GetRunByID(id uuid.UUID) (*Run, error) {
	m.m.Lock()
	defer m.m.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w %v", ErrRunNotFound, id)
	}
	return r, nil
}

// List returns every registered run ordered by id for stable output
func (m *RunManager) List() []*Run {
	m.m.Lock()
	defer m.m.Unlock()
	list := make([]*Run, 0, len(m.runs))
	for _, r := range m.runs {
		list = append(list, r)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ID.String() < list[j].ID.String()
	})
	return list
}
