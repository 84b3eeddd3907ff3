// Package solver implements the CVRPTW route optimization engine: a set of
// interchangeable construction/search heuristics behind one Algorithm
// interface, a hybrid selector, and a timing reoptimizer.
package solver

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"routeopt/internal/geo"
	"routeopt/internal/model"
)

// Algorithm names accepted by New.
const (
	AlgNearestNeighbor = "nearest-neighbor"
	AlgSavings         = "savings"
	AlgGenetic         = "genetic"
	AlgSequential      = "sequential"
	AlgHybrid          = "hybrid"
)

var (
	// ErrInvalidConfiguration is returned for unknown algorithm selectors
	// and malformed tunables. It must reach the caller, never be defaulted.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrAllAlgorithmsFailed is returned by the hybrid selector when every
	// candidate algorithm failed.
	ErrAllAlgorithmsFailed = errors.New("all algorithms failed")
	// ErrInvalidInput is returned when boundary validation rejects the
	// problem before any algorithm runs.
	ErrInvalidInput = errors.New("invalid input")
)

// Problem is one solve request. The engine holds no state between calls;
// all fields are treated as immutable once a solve begins.
type Problem struct {
	Locations   []model.DeliveryLocation
	Vehicles    []model.Vehicle
	Objective   model.OptimizationObjective
	Constraints model.OptimizationConstraints

	// Travel resolves leg travel time in minutes. Nil means the local
	// distance-based estimate (30 km/h effective).
	Travel func(from, to model.Coordinates) float64

	// Rand drives every stochastic decision. Nil means time-seeded; tests
	// pass a fixed-seed source for reproducible runs.
	Rand *rand.Rand

	Tuning Tuning
}

// Tuning holds algorithm constants. These are configuration, not data.
type Tuning struct {
	Genetic GeneticTuning `yaml:"genetic"`
	// Epsilon is the sequential selector's exploration probability.
	Epsilon float64 `yaml:"epsilon"`
	// HybridAlgorithms is the candidate set the hybrid selector runs.
	HybridAlgorithms []string `yaml:"hybridAlgorithms"`
}

type GeneticTuning struct {
	PopulationSize int     `yaml:"populationSize"`
	Generations    int     `yaml:"generations"`
	MutationRate   float64 `yaml:"mutationRate"`
	CrossoverRate  float64 `yaml:"crossoverRate"`
	ElitismRate    float64 `yaml:"elitismRate"`
}

// DefaultTuning returns the stock tunables.
func DefaultTuning() Tuning {
	return Tuning{
		Genetic: GeneticTuning{
			PopulationSize: 100,
			Generations:    500,
			MutationRate:   0.02,
			CrossoverRate:  0.8,
			ElitismRate:    0.1,
		},
		Epsilon:          0.1,
		HybridAlgorithms: []string{AlgNearestNeighbor, AlgSavings, AlgGenetic},
	}
}

func (t Tuning) withDefaults() Tuning {
	d := DefaultTuning()
	if t.Genetic.PopulationSize <= 0 {
		t.Genetic.PopulationSize = d.Genetic.PopulationSize
	}
	if t.Genetic.Generations <= 0 {
		t.Genetic.Generations = d.Genetic.Generations
	}
	if t.Genetic.MutationRate <= 0 {
		t.Genetic.MutationRate = d.Genetic.MutationRate
	}
	if t.Genetic.CrossoverRate <= 0 {
		t.Genetic.CrossoverRate = d.Genetic.CrossoverRate
	}
	if t.Genetic.ElitismRate <= 0 {
		t.Genetic.ElitismRate = d.Genetic.ElitismRate
	}
	if t.Epsilon <= 0 {
		t.Epsilon = d.Epsilon
	}
	if len(t.HybridAlgorithms) == 0 {
		t.HybridAlgorithms = d.HybridAlgorithms
	}
	return t
}

func (p *Problem) travel(from, to model.Coordinates) float64 {
	if p.Travel != nil {
		return p.Travel(from, to)
	}
	return geo.EstimateTravelMinutes(from, to, 1.0)
}

func (p *Problem) rng() *rand.Rand {
	if p.Rand != nil {
		return p.Rand
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Algorithm is one route construction/search strategy. Implementations are
// safe for concurrent use across distinct Problems.
type Algorithm interface {
	Name() string
	Solve(ctx context.Context, p *Problem) (model.SolutionResult, error)
}

// New returns the algorithm for the given selector. Unknown selectors are a
// hard failure, not a silent default.
func New(name string) (Algorithm, error) {
	switch name {
	case AlgNearestNeighbor:
		return nearestNeighbor{}, nil
	case AlgSavings:
		return savings{}, nil
	case AlgGenetic:
		return genetic{}, nil
	case AlgSequential:
		return sequential{}, nil
	case AlgHybrid:
		return hybrid{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %q", ErrInvalidConfiguration, name)
	}
}

// Solve validates the problem and dispatches to the named algorithm.
func Solve(ctx context.Context, name string, p *Problem) (model.SolutionResult, error) {
	alg, err := New(name)
	if err != nil {
		return model.SolutionResult{}, err
	}
	if err := Validate(p); err != nil {
		return model.SolutionResult{}, err
	}
	p.Tuning = p.Tuning.withDefaults()
	return alg.Solve(ctx, p)
}

// Validate rejects malformed input before any algorithm runs.
func Validate(p *Problem) error {
	for _, loc := range p.Locations {
		if loc.ID == "" {
			return fmt.Errorf("%w: location with empty id", ErrInvalidInput)
		}
		if loc.Coordinates.Lat < -90 || loc.Coordinates.Lat > 90 ||
			loc.Coordinates.Lng < -180 || loc.Coordinates.Lng > 180 {
			return fmt.Errorf("%w: location %s has out-of-range coordinates", ErrInvalidInput, loc.ID)
		}
		if loc.ServiceMinutes < 0 {
			return fmt.Errorf("%w: location %s has negative service duration", ErrInvalidInput, loc.ID)
		}
		if loc.TimeWindow != nil && loc.TimeWindow.End < loc.TimeWindow.Start {
			return fmt.Errorf("%w: location %s time window ends before it starts", ErrInvalidInput, loc.ID)
		}
		if loc.Demand.WeightKg < 0 || loc.Demand.VolumeM3 < 0 {
			return fmt.Errorf("%w: location %s has negative demand", ErrInvalidInput, loc.ID)
		}
	}
	for _, v := range p.Vehicles {
		if v.ID == "" {
			return fmt.Errorf("%w: vehicle with empty id", ErrInvalidInput)
		}
		if v.CapacityWeightKg < 0 || v.CapacityVolumeM3 < 0 {
			return fmt.Errorf("%w: vehicle %s has negative capacity", ErrInvalidInput, v.ID)
		}
		if p.Constraints.EnforceCapacity && v.CapacityWeightKg == 0 && v.CapacityVolumeM3 == 0 {
			return fmt.Errorf("%w: vehicle %s has zero capacity dimensions", ErrInvalidInput, v.ID)
		}
		if v.WorkingHours.End != 0 && v.WorkingHours.End < v.WorkingHours.Start {
			return fmt.Errorf("%w: vehicle %s working hours end before they start", ErrInvalidInput, v.ID)
		}
	}
	if p.Objective.DistanceWeight < 0 || p.Objective.TimeWeight < 0 ||
		p.Objective.CostWeight < 0 || p.Objective.EfficiencyWeight < 0 {
		return fmt.Errorf("%w: objective weights must be non-negative", ErrInvalidInput)
	}
	if p.Constraints.MaxRouteMinutes < 0 || p.Constraints.MaxRouteKm < 0 {
		return fmt.Errorf("%w: route maxima must be non-negative", ErrInvalidInput)
	}
	return nil
}

// Score rates a full solution on the shared weighted objective: inverted
// distance/time/cost plus raw efficiency. Higher is better.
func Score(res model.SolutionResult, obj model.OptimizationObjective) float64 {
	served := 0
	for _, rt := range res.Routes {
		served += len(rt.Waypoints)
	}
	eff := 0.0
	if res.TotalMinutes > 0 {
		eff = float64(served) / (res.TotalMinutes / 60.0)
	}
	return obj.DistanceWeight/(1+res.TotalDistanceKm) +
		obj.TimeWeight/(1+res.TotalMinutes) +
		obj.CostWeight/(1+res.TotalCost) +
		obj.EfficiencyWeight*eff
}
