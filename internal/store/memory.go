package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"routeopt/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu        sync.Mutex
	solutions map[string]model.SolutionResult // id -> solution
	order     []string                        // insertion order, for paging
}

func NewMemory() *Memory {
	return &Memory{solutions: map[string]model.SolutionResult{}}
}

func (m *Memory) SaveSolution(ctx context.Context, sol *model.SolutionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sol.ID == "" {
		sol.ID = uuid.New().String()
	}
	if sol.CreatedAt.IsZero() {
		sol.CreatedAt = time.Now().UTC()
	}
	if _, exists := m.solutions[sol.ID]; !exists {
		m.order = append(m.order, sol.ID)
	}
	m.solutions[sol.ID] = *sol
	return nil
}

func (m *Memory) GetSolution(ctx context.Context, id string) (model.SolutionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sol, ok := m.solutions[id]
	if !ok {
		return model.SolutionResult{}, ErrNotFound
	}
	return sol, nil
}

func (m *Memory) UpdateSolution(ctx context.Context, sol model.SolutionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.solutions[sol.ID]; !ok {
		return ErrNotFound
	}
	m.solutions[sol.ID] = sol
	return nil
}

func (m *Memory) ListSolutions(ctx context.Context, cursor string, limit int) ([]model.SolutionResult, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	start := 0
	if cursor != "" {
		for i, id := range m.order {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	out := []model.SolutionResult{}
	var last string
	for i := start; i < len(m.order) && len(out) < limit; i++ {
		out = append(out, m.solutions[m.order[i]])
		last = m.order[i]
	}
	var next string
	if len(out) == limit && start+len(out) < len(m.order) {
		next = last
	}
	return out, next, nil
}
