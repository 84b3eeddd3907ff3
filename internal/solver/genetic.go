package solver

import (
	"context"
	"math/rand"
	"sort"

	"routeopt/internal/model"
)

// genetic runs a generational GA over location-to-vehicle assignment and
// per-vehicle stop order. It is the most expensive algorithm here; callers
// needing low latency should prefer nearest-neighbor or savings, or lower
// the generation count.
type genetic struct{}

func (genetic) Name() string { return AlgGenetic }

const (
	tournamentSize    = 5
	convergenceEvery  = 50
	convergenceMargin = 0.01
	violationPenalty  = 0.5
)

// individual encodes one candidate solution: an ordered stop list per
// vehicle slot.
type individual struct {
	routes  [][]int
	fitness float64
}

func (a genetic) Solve(ctx context.Context, p *Problem) (model.SolutionResult, error) {
	n := len(p.Locations)
	if n == 0 || len(p.Vehicles) == 0 {
		rem := newRemainingSet(n)
		return summarize(a.Name(), nil, rem.unassigned(p.Locations)), nil
	}
	rng := p.rng()
	cfg := p.Tuning.Genetic

	pop := make([]individual, cfg.PopulationSize)
	for i := range pop {
		pop[i] = a.randomIndividual(p, rng)
		pop[i].fitness = a.fitness(p, pop[i])
	}

	for gen := 0; gen < cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			break // cancelled: fall through with the best found so far
		}
		sort.SliceStable(pop, func(x, y int) bool { return pop[x].fitness > pop[y].fitness })

		if gen%convergenceEvery == 0 && gen > 0 {
			mean := 0.0
			for _, ind := range pop {
				mean += ind.fitness
			}
			mean /= float64(len(pop))
			if pop[0].fitness-mean < convergenceMargin {
				break
			}
		}

		next := make([]individual, 0, cfg.PopulationSize)
		elite := int(cfg.ElitismRate * float64(cfg.PopulationSize))
		for i := 0; i < elite && i < len(pop); i++ {
			next = append(next, pop[i].clone())
		}
		for len(next) < cfg.PopulationSize {
			next = append(next, a.tournament(pop, rng).clone())
		}

		// uniform crossover over vehicle-route slots, pairing consecutive
		// selected individuals; elites are carried over untouched
		for i := elite; i+1 < len(next); i += 2 {
			if rng.Float64() < cfg.CrossoverRate {
				c1, c2 := a.crossover(next[i], next[i+1], rng)
				a.repair(n, &c1)
				a.repair(n, &c2)
				next[i], next[i+1] = c1, c2
			}
		}
		for i := elite; i < len(next); i++ {
			if rng.Float64() < cfg.MutationRate {
				a.mutate(&next[i], rng)
			}
		}
		for i := elite; i < len(next); i++ {
			next[i].fitness = a.fitness(p, next[i])
		}
		pop = next
	}

	best := pop[0]
	for _, ind := range pop[1:] {
		if ind.fitness > best.fitness {
			best = ind
		}
	}

	routes := make([]model.OptimizedRoute, 0, len(p.Vehicles))
	remaining := newRemainingSet(n)
	for vi, order := range best.routes {
		routes = append(routes, buildRoute(p, p.Vehicles[vi], order))
		for _, idx := range order {
			remaining.remove(idx)
		}
	}
	return summarize(a.Name(), routes, remaining.unassigned(p.Locations)), nil
}

// randomIndividual shuffles all locations and deals them out as contiguous
// near-equal chunks, one per vehicle.
func (genetic) randomIndividual(p *Problem, rng *rand.Rand) individual {
	n := len(p.Locations)
	perm := rng.Perm(n)
	v := len(p.Vehicles)
	routes := make([][]int, v)
	base, extra := n/v, n%v
	start := 0
	for i := 0; i < v; i++ {
		size := base
		if i < extra {
			size++
		}
		routes[i] = append([]int{}, perm[start:start+size]...)
		start += size
	}
	return individual{routes: routes}
}

// fitness is the inverted-and-weighted objective averaged over its three
// terms, minus a flat penalty per route that exceeds its time or distance
// budget. Higher is better.
func (genetic) fitness(p *Problem, ind individual) float64 {
	var dist, mins, cost float64
	violations := 0
	for vi, order := range ind.routes {
		rt := buildRoute(p, p.Vehicles[vi], order)
		dist += rt.TotalDistanceKm
		mins += rt.TotalMinutes
		cost += rt.TotalCost
		if limit := p.Constraints.MaxRouteMinutes; limit > 0 && rt.TotalMinutes > limit {
			violations++
		}
		if limit := p.Constraints.MaxRouteKm; limit > 0 && rt.TotalDistanceKm > limit {
			violations++
		}
	}
	obj := p.Objective
	score := (1.0/(1.0+dist*obj.DistanceWeight) +
		1.0/(1.0+mins*obj.TimeWeight) +
		1.0/(1.0+cost*obj.CostWeight)) / 3.0
	return score - violationPenalty*float64(violations)
}

func (genetic) tournament(pop []individual, rng *rand.Rand) individual {
	best := pop[rng.Intn(len(pop))]
	for k := 1; k < tournamentSize; k++ {
		cand := pop[rng.Intn(len(pop))]
		if cand.fitness > best.fitness {
			best = cand
		}
	}
	return best
}

// crossover picks, per vehicle slot, one parent's route at 50/50 odds for
// each child. This coarse slot-level mix can duplicate or drop locations
// across slots; repair restores the exactly-once invariant afterwards.
func (genetic) crossover(p1, p2 individual, rng *rand.Rand) (individual, individual) {
	v := len(p1.routes)
	c1 := individual{routes: make([][]int, v)}
	c2 := individual{routes: make([][]int, v)}
	for i := 0; i < v; i++ {
		if rng.Float64() < 0.5 {
			c1.routes[i] = append([]int{}, p1.routes[i]...)
		} else {
			c1.routes[i] = append([]int{}, p2.routes[i]...)
		}
		if rng.Float64() < 0.5 {
			c2.routes[i] = append([]int{}, p1.routes[i]...)
		} else {
			c2.routes[i] = append([]int{}, p2.routes[i]...)
		}
	}
	return c1, c2
}

// repair drops duplicate location indices (first occurrence wins) and
// appends any missing ones to the currently shortest route, so every
// location appears exactly once across the individual.
func (genetic) repair(n int, ind *individual) {
	seen := make([]bool, n)
	for vi, order := range ind.routes {
		kept := order[:0]
		for _, idx := range order {
			if !seen[idx] {
				seen[idx] = true
				kept = append(kept, idx)
			}
		}
		ind.routes[vi] = kept
	}
	for idx := 0; idx < n; idx++ {
		if seen[idx] {
			continue
		}
		shortest := 0
		for vi := 1; vi < len(ind.routes); vi++ {
			if len(ind.routes[vi]) < len(ind.routes[shortest]) {
				shortest = vi
			}
		}
		ind.routes[shortest] = append(ind.routes[shortest], idx)
	}
}

// mutate swaps two random positions within one random route.
func (genetic) mutate(ind *individual, rng *rand.Rand) {
	candidates := []int{}
	for vi, order := range ind.routes {
		if len(order) >= 2 {
			candidates = append(candidates, vi)
		}
	}
	if len(candidates) == 0 {
		return
	}
	vi := candidates[rng.Intn(len(candidates))]
	order := ind.routes[vi]
	i, j := rng.Intn(len(order)), rng.Intn(len(order))
	order[i], order[j] = order[j], order[i]
}

func (ind individual) clone() individual {
	out := individual{routes: make([][]int, len(ind.routes)), fitness: ind.fitness}
	for i, r := range ind.routes {
		out.routes[i] = append([]int{}, r...)
	}
	return out
}
