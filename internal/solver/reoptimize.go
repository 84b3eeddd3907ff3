package solver

import (
	"math"

	"routeopt/internal/model"
)

// DefaultCoordTolerance is the match tolerance, in degrees, used when
// pairing traffic updates with route legs.
const DefaultCoordTolerance = 0.001

// Reoptimize patches an existing solution's timings with updated travel
// times for specific legs. Stop order and vehicle assignment never change:
// when a leg between two consecutive waypoints matches an update, the
// leg's travel time is replaced and the time delta is carried forward
// through every later waypoint on that route. Totals are recomputed from
// the patched routes.
func Reoptimize(sol model.SolutionResult, updates []model.TrafficUpdate, tolerance float64) model.SolutionResult {
	if tolerance <= 0 {
		tolerance = DefaultCoordTolerance
	}
	out := sol
	out.Routes = make([]model.OptimizedRoute, len(sol.Routes))
	out.TotalMinutes = 0
	for ri, rt := range sol.Routes {
		patched := rt
		patched.Waypoints = append([]model.Waypoint(nil), rt.Waypoints...)
		shift := 0.0 // cumulative delta applied to downstream waypoints
		for wi := range patched.Waypoints {
			if shift != 0 {
				patched.Waypoints[wi].ArrivalMinute += shift
				patched.Waypoints[wi].DepartureMinute += shift
			}
			if wi == 0 {
				continue
			}
			from := patched.Waypoints[wi-1].Location.Coordinates
			to := patched.Waypoints[wi].Location.Coordinates
			for _, upd := range updates {
				if !coordsMatch(upd.From, from, tolerance) || !coordsMatch(upd.To, to, tolerance) {
					continue
				}
				delta := upd.TravelMinutes - patched.Waypoints[wi].TravelMinutes
				patched.Waypoints[wi].TravelMinutes = upd.TravelMinutes
				patched.Waypoints[wi].ArrivalMinute += delta
				patched.Waypoints[wi].DepartureMinute += delta
				shift += delta
				break
			}
		}
		patched.TotalMinutes = rt.TotalMinutes + shift
		if patched.TotalMinutes > 0 {
			patched.Efficiency = float64(len(patched.Waypoints)) / (patched.TotalMinutes / 60.0)
		}
		out.Routes[ri] = patched
		out.TotalMinutes += patched.TotalMinutes
	}
	return out
}

func coordsMatch(a, b model.Coordinates, tolerance float64) bool {
	return math.Abs(a.Lat-b.Lat) <= tolerance && math.Abs(a.Lng-b.Lng) <= tolerance
}
