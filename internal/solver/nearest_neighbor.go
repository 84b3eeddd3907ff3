package solver

import (
	"context"
	"math"

	"routeopt/internal/geo"
	"routeopt/internal/model"
)

// nearestNeighbor builds routes greedily: each vehicle, in input order,
// repeatedly takes the closest feasible unassigned location until none
// remain within its budget.
type nearestNeighbor struct{}

func (nearestNeighbor) Name() string { return AlgNearestNeighbor }

func (a nearestNeighbor) Solve(ctx context.Context, p *Problem) (model.SolutionResult, error) {
	remaining := newRemainingSet(len(p.Locations))
	routes := make([]model.OptimizedRoute, 0, len(p.Vehicles))

	for _, v := range p.Vehicles {
		if err := ctx.Err(); err != nil {
			// return the partial result built so far
			break
		}
		rs := newRouteState(p, v)
		for remaining.count() > 0 {
			best := -1
			bestDist := math.MaxFloat64
			for i := range p.Locations {
				if !remaining.has(i) {
					continue
				}
				if !rs.canAdd(p.Locations[i]) {
					continue
				}
				// strict less keeps the first candidate at equal distance,
				// so ordering is deterministic for a fixed input order
				if d := geo.DistanceKm(rs.pos, p.Locations[i].Coordinates); d < bestDist {
					bestDist = d
					best = i
				}
			}
			if best < 0 {
				break // vehicle exhausted, close the route
			}
			rs.add(p.Locations[best])
			remaining.remove(best)
		}
		routes = append(routes, rs.finish())
	}

	return summarize(a.Name(), routes, remaining.unassigned(p.Locations)), nil
}
