package solver

import (
	"routeopt/internal/geo"
	"routeopt/internal/model"
)

// remainingSet tracks which location indices are still unassigned without
// mutating the input slice, so algorithms can run concurrently over the
// same Problem.
type remainingSet struct {
	active []bool
	n      int
}

func newRemainingSet(n int) *remainingSet {
	active := make([]bool, n)
	for i := range active {
		active[i] = true
	}
	return &remainingSet{active: active, n: n}
}

func (s *remainingSet) has(i int) bool { return s.active[i] }

func (s *remainingSet) remove(i int) {
	if s.active[i] {
		s.active[i] = false
		s.n--
	}
}

func (s *remainingSet) count() int { return s.n }

// unassigned returns the still-active locations in input order.
func (s *remainingSet) unassigned(locs []model.DeliveryLocation) []model.DeliveryLocation {
	out := []model.DeliveryLocation{}
	for i, a := range s.active {
		if a {
			out = append(out, locs[i])
		}
	}
	return out
}

// routeState advances one vehicle through a sequence of stops, tracking
// position, clock time, cumulative distance and capacity usage.
type routeState struct {
	p       *Problem
	vehicle model.Vehicle

	pos      model.Coordinates
	startMin float64 // route start, minutes of day
	clockMin float64 // current time, minutes of day
	distKm   float64
	weightKg float64
	volumeM3 float64

	waypoints []model.Waypoint
}

func newRouteState(p *Problem, v model.Vehicle) *routeState {
	return &routeState{
		p:        p,
		vehicle:  v,
		pos:      v.Start,
		startMin: v.WorkingHours.Start,
		clockMin: v.WorkingHours.Start,
	}
}

// leg computes the travel time, distance, arrival and departure for a
// candidate next stop without mutating the state.
func (rs *routeState) leg(loc model.DeliveryLocation) (travelMin, distKm, arrival, departure float64) {
	travelMin = rs.p.travel(rs.pos, loc.Coordinates)
	distKm = geo.DistanceKm(rs.pos, loc.Coordinates)
	arrival = rs.clockMin + travelMin
	if loc.TimeWindow != nil && arrival < loc.TimeWindow.Start {
		arrival = loc.TimeWindow.Start // wait for the window to open
	}
	departure = arrival + loc.ServiceMinutes
	return
}

// canAdd checks hard feasibility for appending loc: capability match, time
// window (when respected), route time/distance budgets, capacity, and the
// vehicle's working-hours end when one is set.
func (rs *routeState) canAdd(loc model.DeliveryLocation) bool {
	if !rs.vehicle.Capabilities.Covers(loc.Requirements) {
		return false
	}
	travelMin, distKm, _, departure := rs.leg(loc)
	if rs.p.Constraints.RespectTimeWindows && loc.TimeWindow != nil {
		if rs.clockMin+travelMin > loc.TimeWindow.End {
			return false
		}
	}
	if limit := rs.p.Constraints.MaxRouteKm; limit > 0 && rs.distKm+distKm > limit {
		return false
	}
	if limit := rs.p.Constraints.MaxRouteMinutes; limit > 0 && departure-rs.startMin > limit {
		return false
	}
	if wh := rs.vehicle.WorkingHours; wh.End > wh.Start && departure > wh.End {
		return false
	}
	if rs.p.Constraints.EnforceCapacity {
		if limit := rs.vehicle.CapacityWeightKg; limit > 0 && rs.weightKg+loc.Demand.WeightKg > limit {
			return false
		}
		if limit := rs.vehicle.CapacityVolumeM3; limit > 0 && rs.volumeM3+loc.Demand.VolumeM3 > limit {
			return false
		}
	}
	return true
}

// add appends loc as the next waypoint and advances the state.
func (rs *routeState) add(loc model.DeliveryLocation) {
	travelMin, distKm, arrival, departure := rs.leg(loc)
	rs.waypoints = append(rs.waypoints, model.Waypoint{
		Location:        loc,
		ArrivalMinute:   arrival,
		DepartureMinute: departure,
		TravelMinutes:   travelMin,
		DistanceKm:      distKm,
	})
	rs.clockMin = departure
	rs.pos = loc.Coordinates
	rs.distKm += distKm
	rs.weightKg += loc.Demand.WeightKg
	rs.volumeM3 += loc.Demand.VolumeM3
}

// finish closes the route, optionally adding a return leg to the vehicle's
// end depot (the leg contributes to totals but is not a waypoint).
func (rs *routeState) finish() model.OptimizedRoute {
	totalMin := rs.clockMin - rs.startMin
	totalKm := rs.distKm
	if rs.vehicle.End != nil && len(rs.waypoints) > 0 {
		totalMin += rs.p.travel(rs.pos, *rs.vehicle.End)
		totalKm += geo.DistanceKm(rs.pos, *rs.vehicle.End)
	}
	cost := totalKm*rs.vehicle.CostPerKm + totalMin*rs.vehicle.CostPerMinute
	eff := 0.0
	if totalMin > 0 {
		eff = float64(len(rs.waypoints)) / (totalMin / 60.0)
	}
	return model.OptimizedRoute{
		VehicleID:       rs.vehicle.ID,
		Waypoints:       rs.waypoints,
		TotalDistanceKm: totalKm,
		TotalMinutes:    totalMin,
		TotalCost:       cost,
		Efficiency:      eff,
	}
}

// buildRoute schedules an already-decided stop order for a vehicle.
func buildRoute(p *Problem, v model.Vehicle, order []int) model.OptimizedRoute {
	rs := newRouteState(p, v)
	for _, idx := range order {
		rs.add(p.Locations[idx])
	}
	return rs.finish()
}

// summarize assembles the SolutionResult, keeping only routes that
// received at least one stop.
func summarize(algorithm string, routes []model.OptimizedRoute, unassigned []model.DeliveryLocation) model.SolutionResult {
	res := model.SolutionResult{
		Algorithm:           algorithm,
		Routes:              []model.OptimizedRoute{},
		UnassignedLocations: unassigned,
	}
	if res.UnassignedLocations == nil {
		res.UnassignedLocations = []model.DeliveryLocation{}
	}
	for _, rt := range routes {
		if len(rt.Waypoints) == 0 {
			continue
		}
		res.Routes = append(res.Routes, rt)
		res.TotalDistanceKm += rt.TotalDistanceKm
		res.TotalMinutes += rt.TotalMinutes
		res.TotalCost += rt.TotalCost
	}
	return res
}
