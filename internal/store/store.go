package store

import (
	"context"
	"errors"

	"routeopt/internal/model"
)

// Store is the solution persistence interface used by the API server.
type Store interface {
	// SaveSolution persists a new solution. An empty ID is assigned.
	SaveSolution(ctx context.Context, sol *model.SolutionResult) error
	GetSolution(ctx context.Context, id string) (model.SolutionResult, error)
	// UpdateSolution overwrites an existing solution in place, keeping its ID.
	UpdateSolution(ctx context.Context, sol model.SolutionResult) error
	// ListSolutions pages through stored solutions in insertion order. The
	// cursor is the last ID of the previous page; empty means from the start.
	ListSolutions(ctx context.Context, cursor string, limit int) ([]model.SolutionResult, string, error)
}

var ErrNotFound = errors.New("not found")
