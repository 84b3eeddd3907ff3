package traffic

import (
	"context"
	"errors"

	"routeopt/internal/model"
)

// Mock is a canned Provider for tests and local development.
type Mock struct {
	Minutes float64
	Cond    Conditions
	Err     error
	Calls   int
}

func (m *Mock) TravelTime(_ context.Context, _, _ model.Coordinates) (float64, error) {
	m.Calls++
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Minutes, nil
}

func (m *Mock) Conditions(_ context.Context, _, _ model.Coordinates) (Conditions, error) {
	m.Calls++
	if m.Err != nil {
		return Conditions{}, m.Err
	}
	return m.Cond, nil
}

// ErrUnavailable is a convenience error for simulating provider outages.
var ErrUnavailable = errors.New("traffic provider unavailable")
