package solver

import (
	"testing"

	"routeopt/internal/model"
)

func timedSolution() model.SolutionResult {
	wp := func(id string, lng, travel, arrive float64) model.Waypoint {
		return model.Waypoint{
			Location:        model.DeliveryLocation{ID: id, Coordinates: model.Coordinates{Lng: lng}},
			TravelMinutes:   travel,
			ArrivalMinute:   arrive,
			DepartureMinute: arrive,
		}
	}
	rt := model.OptimizedRoute{
		VehicleID: "v1",
		Waypoints: []model.Waypoint{
			wp("s1", 0.01, 5, 5),
			wp("s2", 0.02, 10, 15),
			wp("s3", 0.03, 15, 30),
		},
		TotalMinutes:    30,
		TotalDistanceKm: 3.3,
	}
	return model.SolutionResult{
		ID:           "sol-1",
		Algorithm:    AlgNearestNeighbor,
		Routes:       []model.OptimizedRoute{rt},
		TotalMinutes: 30,
	}
}

func TestReoptimizeShiftsDownstreamStops(t *testing.T) {
	sol := timedSolution()
	updates := []model.TrafficUpdate{{
		From:          model.Coordinates{Lng: 0.01},
		To:            model.Coordinates{Lng: 0.02},
		TravelMinutes: 20, // was 10
	}}
	out := Reoptimize(sol, updates, 0)

	wps := out.Routes[0].Waypoints
	if wps[0].ArrivalMinute != 5 || wps[0].DepartureMinute != 5 {
		t.Fatalf("first stop moved: %+v", wps[0])
	}
	if wps[1].TravelMinutes != 20 {
		t.Fatalf("patched leg travel: %f", wps[1].TravelMinutes)
	}
	if wps[1].ArrivalMinute != 25 || wps[2].ArrivalMinute != 40 {
		t.Fatalf("downstream arrivals: %f, %f (want 25, 40)", wps[1].ArrivalMinute, wps[2].ArrivalMinute)
	}
	if out.Routes[0].TotalMinutes != 40 || out.TotalMinutes != 40 {
		t.Fatalf("totals: route %f solution %f", out.Routes[0].TotalMinutes, out.TotalMinutes)
	}
}

func TestReoptimizeToleranceMismatch(t *testing.T) {
	sol := timedSolution()
	updates := []model.TrafficUpdate{{
		// latitude is 0.01 degrees off, outside the 0.001 default tolerance
		From:          model.Coordinates{Lat: 0.01, Lng: 0.02},
		To:            model.Coordinates{Lng: 0.03},
		TravelMinutes: 99,
	}}
	out := Reoptimize(sol, updates, 0)
	for i, wp := range out.Routes[0].Waypoints {
		orig := sol.Routes[0].Waypoints[i]
		if wp.ArrivalMinute != orig.ArrivalMinute || wp.TravelMinutes != orig.TravelMinutes {
			t.Fatalf("waypoint %d changed despite mismatch: %+v", i, wp)
		}
	}
}

func TestReoptimizeWithinToleranceMatches(t *testing.T) {
	sol := timedSolution()
	updates := []model.TrafficUpdate{{
		From:          model.Coordinates{Lng: 0.0205}, // 0.0005 off, inside tolerance
		To:            model.Coordinates{Lng: 0.0295},
		TravelMinutes: 25, // was 15
	}}
	out := Reoptimize(sol, updates, 0)
	wps := out.Routes[0].Waypoints
	if wps[2].TravelMinutes != 25 || wps[2].ArrivalMinute != 40 {
		t.Fatalf("last leg not patched: %+v", wps[2])
	}
	// upstream stops are untouched: the shift only flows forward
	if wps[0].ArrivalMinute != 5 || wps[1].ArrivalMinute != 15 {
		t.Fatalf("upstream stops moved: %+v", wps[:2])
	}
}

func TestReoptimizeLeavesInputUntouched(t *testing.T) {
	sol := timedSolution()
	updates := []model.TrafficUpdate{{
		From:          model.Coordinates{Lng: 0.01},
		To:            model.Coordinates{Lng: 0.02},
		TravelMinutes: 20,
	}}
	_ = Reoptimize(sol, updates, 0)
	if sol.Routes[0].Waypoints[1].TravelMinutes != 10 || sol.TotalMinutes != 30 {
		t.Fatalf("input solution mutated: %+v", sol.Routes[0].Waypoints[1])
	}
}
