package solver

import (
	"context"
	"sort"

	"routeopt/internal/geo"
	"routeopt/internal/model"
)

// savings implements Clarke-Wright pairwise-savings route merging followed
// by 2-opt local search. Savings are computed against the first vehicle's
// depot; merged routes are assigned to vehicles in input order and any
// leftover routes are reported unassigned.
type savings struct{}

func (savings) Name() string { return AlgSavings }

type pairSaving struct {
	i, j int
	val  float64
}

func (a savings) Solve(ctx context.Context, p *Problem) (model.SolutionResult, error) {
	if len(p.Vehicles) == 0 || len(p.Locations) == 0 {
		rem := newRemainingSet(len(p.Locations))
		return summarize(a.Name(), nil, rem.unassigned(p.Locations)), nil
	}
	ref := p.Vehicles[0]
	depot := ref.Start
	n := len(p.Locations)

	// one single-stop route per location to start
	routes := make([][]int, n)
	routeOf := make([]int, n)
	for i := 0; i < n; i++ {
		routes[i] = []int{i}
		routeOf[i] = i
	}

	toDepot := make([]float64, n)
	for i := 0; i < n; i++ {
		toDepot[i] = geo.DistanceKm(depot, p.Locations[i].Coordinates)
	}
	pairs := make([]pairSaving, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := geo.DistanceKm(p.Locations[i].Coordinates, p.Locations[j].Coordinates)
			pairs = append(pairs, pairSaving{i: i, j: j, val: toDepot[i] + toDepot[j] - d})
		}
	}
	sort.Slice(pairs, func(x, y int) bool {
		if pairs[x].val != pairs[y].val {
			return pairs[x].val > pairs[y].val
		}
		if pairs[x].i != pairs[y].i {
			return pairs[x].i < pairs[y].i
		}
		return pairs[x].j < pairs[y].j
	})

	for _, sv := range pairs {
		if err := ctx.Err(); err != nil {
			break // keep what was merged so far
		}
		ri, rj := routeOf[sv.i], routeOf[sv.j]
		if ri == rj {
			continue
		}
		ra, rb := routes[ri], routes[rj]
		// classic endpoint merge: the saving applies only when the pair
		// becomes a new interior edge joining the two routes
		var merged []int
		switch {
		case ra[len(ra)-1] == sv.i && rb[0] == sv.j:
			merged = append(append([]int{}, ra...), rb...)
		case rb[len(rb)-1] == sv.j && ra[0] == sv.i:
			merged = append(append([]int{}, rb...), ra...)
		default:
			continue
		}
		if !a.mergeFeasible(p, ref, merged) {
			continue
		}
		routes[ri] = merged
		routes[rj] = nil
		for _, idx := range merged {
			routeOf[idx] = ri
		}
	}

	// compact and locally improve each surviving route
	final := make([][]int, 0, len(routes))
	for _, rt := range routes {
		if len(rt) == 0 {
			continue
		}
		final = append(final, twoOptImprove(depot, p.Locations, rt))
	}

	remaining := newRemainingSet(n)
	built := make([]model.OptimizedRoute, 0, len(p.Vehicles))
	for vi, rt := range final {
		if vi >= len(p.Vehicles) {
			break // more routes than vehicles: the rest stay unassigned
		}
		built = append(built, buildRoute(p, p.Vehicles[vi], rt))
		for _, idx := range rt {
			remaining.remove(idx)
		}
	}
	return summarize(a.Name(), built, remaining.unassigned(p.Locations)), nil
}

// mergeFeasible schedules the merged stop sequence against the reference
// vehicle and rejects merges that blow the route time or distance budget.
// Demand accumulation is also enforced when capacity checks are on.
func (savings) mergeFeasible(p *Problem, ref model.Vehicle, order []int) bool {
	var weight, volume float64
	for _, idx := range order {
		weight += p.Locations[idx].Demand.WeightKg
		volume += p.Locations[idx].Demand.VolumeM3
	}
	if p.Constraints.EnforceCapacity {
		if limit := ref.CapacityWeightKg; limit > 0 && weight > limit {
			return false
		}
		if limit := ref.CapacityVolumeM3; limit > 0 && volume > limit {
			return false
		}
	}
	rt := buildRoute(p, ref, order)
	if limit := p.Constraints.MaxRouteMinutes; limit > 0 && rt.TotalMinutes > limit {
		return false
	}
	if limit := p.Constraints.MaxRouteKm; limit > 0 && rt.TotalDistanceKm > limit {
		return false
	}
	return true
}

// twoOptImprove runs classic 2-opt on a stop order anchored at the depot:
// reverse a sub-segment [i, j) whenever doing so strictly shortens the
// route, and repeat until a full pass yields no change. Total distance
// never increases.
func twoOptImprove(depot model.Coordinates, locs []model.DeliveryLocation, order []int) []int {
	n := len(order)
	if n < 3 {
		return order
	}
	best := append([]int(nil), order...)
	point := func(k int) model.Coordinates {
		if k < 0 {
			return depot
		}
		return locs[best[k]].Coordinates
	}
	improved := true
	for improved {
		improved = false
		for i := 1; i <= n-2; i++ {
			for j := i + 2; j <= n-1; j++ {
				// reversing best[i:j] swaps edges (i-1,i) and (j-1,j)
				before := geo.DistanceKm(point(i-1), point(i)) + geo.DistanceKm(point(j-1), point(j))
				after := geo.DistanceKm(point(i-1), point(j-1)) + geo.DistanceKm(point(i), point(j))
				if after < before-1e-9 {
					for a, b := i, j-1; a < b; a, b = a+1, b-1 {
						best[a], best[b] = best[b], best[a]
					}
					improved = true
				}
			}
		}
	}
	return best
}
