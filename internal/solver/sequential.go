package solver

import (
	"context"
	"math"
	"math/rand"

	"routeopt/internal/geo"
	"routeopt/internal/model"
)

// sequential is a single-pass constructive heuristic with bounded
// exploration: at each step every remaining location is scored on
// proximity, time-window urgency, priority and capacity headroom, the
// scores are normalized to a distribution, and the next stop is chosen
// epsilon-greedily. This is a hand-tuned scoring heuristic with
// exploration noise, not a trained policy. It is intended for callers that
// cannot afford a full batch solve per decision.
type sequential struct{}

func (sequential) Name() string { return AlgSequential }

// urgencyWindowMinutes normalizes how far ahead of a window opening a
// location starts gaining urgency.
const urgencyWindowMinutes = 120.0

func (a sequential) Solve(ctx context.Context, p *Problem) (model.SolutionResult, error) {
	remaining := newRemainingSet(len(p.Locations))
	rng := p.rng()
	epsilon := p.Tuning.Epsilon

	maxPriority := 1
	for _, loc := range p.Locations {
		if loc.Priority > maxPriority {
			maxPriority = loc.Priority
		}
	}

	routes := make([]model.OptimizedRoute, 0, len(p.Vehicles))
	for _, v := range p.Vehicles {
		if err := ctx.Err(); err != nil {
			break
		}
		rs := newRouteState(p, v)
		for remaining.count() > 0 {
			idx := a.pick(p, rs, remaining, maxPriority, epsilon, rng)
			if idx < 0 {
				break
			}
			rs.add(p.Locations[idx])
			remaining.remove(idx)
		}
		routes = append(routes, rs.finish())
	}
	return summarize(a.Name(), routes, remaining.unassigned(p.Locations)), nil
}

// pick scores the remaining candidates and selects one epsilon-greedily:
// with probability epsilon a uniform random candidate, otherwise the
// highest-scoring one (first at equal score).
//
// Candidates whose deadline has already passed are excluded outright when
// time windows are hard constraints; with soft windows they are only
// down-scored, matching the rest of the scoring model.
func (a sequential) pick(p *Problem, rs *routeState, remaining *remainingSet, maxPriority int, epsilon float64, rng *rand.Rand) int {
	type scored struct {
		idx   int
		score float64
	}
	cands := []scored{}
	for i := range p.Locations {
		if !remaining.has(i) {
			continue
		}
		loc := p.Locations[i]
		if !rs.canAdd(loc) {
			continue
		}
		travelMin, _, _, _ := rs.leg(loc)
		dist := geo.DistanceKm(rs.pos, loc.Coordinates)

		urgency := 1.0
		if loc.TimeWindow != nil {
			arrive := rs.clockMin + travelMin
			switch {
			case arrive > loc.TimeWindow.End:
				urgency = 0.1
			case arrive >= loc.TimeWindow.Start:
				urgency = 1.0
			default:
				wait := loc.TimeWindow.Start - arrive
				urgency = math.Max(0.1, 1.0-wait/urgencyWindowMinutes)
			}
		}
		priority := float64(loc.Priority) / float64(maxPriority)

		capacityUse := 0.0
		if limit := rs.vehicle.CapacityWeightKg; limit > 0 {
			capacityUse = (rs.weightKg + loc.Demand.WeightKg) / limit
		}
		score := 1.0/(1.0+dist) + urgency + priority - 0.5*capacityUse
		cands = append(cands, scored{idx: i, score: score})
	}
	if len(cands) == 0 {
		return -1
	}

	// normalize to a distribution; selection is epsilon-greedy over it
	minScore := cands[0].score
	for _, c := range cands[1:] {
		if c.score < minScore {
			minScore = c.score
		}
	}
	total := 0.0
	for i := range cands {
		cands[i].score -= minScore - 1e-6
		total += cands[i].score
	}
	for i := range cands {
		cands[i].score /= total
	}

	if rng.Float64() < epsilon {
		return cands[rng.Intn(len(cands))].idx
	}
	best := 0
	for i := 1; i < len(cands); i++ {
		if cands[i].score > cands[best].score {
			best = i
		}
	}
	return cands[best].idx
}
