package store

import (
	"context"
	"sync"

	"github.com/mnemo/mnemod/internal/domain"
)

// Memory is an in-memory RecordStore. It never fails, so it doubles as the
// reference implementation in tests.
type Memory struct {
	mu     sync.RWMutex
	states map[string]map[string]domain.ReviewState // userID -> cardID -> state
	logs   []domain.ReviewLog
}

var _ RecordStore = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{states: make(map[string]map[string]domain.ReviewState)}
}

// Get implements RecordStore.
func (m *Memory) Get(_ context.Context, userID, cardID string) (*domain.ReviewState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.states[userID][cardID]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

// Put implements RecordStore.
func (m *Memory) Put(_ context.Context, state domain.ReviewState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byCard, ok := m.states[state.UserID]
	if !ok {
		byCard = make(map[string]domain.ReviewState)
		m.states[state.UserID] = byCard
	}
	byCard[state.CardID] = state
	return nil
}

// ListForUser implements RecordStore.
func (m *Memory) ListForUser(_ context.Context, userID string) ([]domain.ReviewState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	states := make([]domain.ReviewState, 0, len(m.states[userID]))
	for _, state := range m.states[userID] {
		states = append(states, state)
	}
	return states, nil
}

// LogReview implements RecordStore.
func (m *Memory) LogReview(_ context.Context, entry domain.ReviewLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logs = append(m.logs, entry)
	return nil
}

// Reset implements RecordStore.
func (m *Memory) Reset(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.states, userID)
	return nil
}

// Logs returns a copy of the review history, oldest first.
func (m *Memory) Logs() []domain.ReviewLog {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.ReviewLog, len(m.logs))
	copy(out, m.logs)
	return out
}
