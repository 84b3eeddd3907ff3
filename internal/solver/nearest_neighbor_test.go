package solver

import (
	"context"
	"testing"

	"routeopt/internal/model"
)

func loc(id string, lat, lng float64) model.DeliveryLocation {
	return model.DeliveryLocation{ID: id, Coordinates: model.Coordinates{Lat: lat, Lng: lng}}
}

func vehicle(id string, lat, lng float64) model.Vehicle {
	return model.Vehicle{ID: id, CapacityWeightKg: 1000, Start: model.Coordinates{Lat: lat, Lng: lng}}
}

// checkConservation asserts every input location lands in exactly one of
// {assigned waypoints, unassigned}, with no duplicates.
func checkConservation(t *testing.T, res model.SolutionResult, inputs []model.DeliveryLocation) {
	t.Helper()
	seen := map[string]int{}
	total := 0
	for _, rt := range res.Routes {
		for _, wp := range rt.Waypoints {
			seen[wp.Location.ID]++
			total++
		}
	}
	for _, u := range res.UnassignedLocations {
		seen[u.ID]++
		total++
	}
	if total != len(inputs) {
		t.Fatalf("conservation: %d placed, %d input", total, len(inputs))
	}
	for _, in := range inputs {
		if seen[in.ID] != 1 {
			t.Fatalf("location %s placed %d times", in.ID, seen[in.ID])
		}
	}
}

func TestNearestNeighborOrdersByDistance(t *testing.T) {
	p := &Problem{
		Locations: []model.DeliveryLocation{
			loc("far", 0, 0.30),
			loc("near", 0, 0.10),
			loc("mid", 0, 0.20),
		},
		Vehicles: []model.Vehicle{vehicle("v1", 0, 0)},
	}
	res, err := Solve(context.Background(), AlgNearestNeighbor, p)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if len(res.Routes) != 1 {
		t.Fatalf("routes: %d", len(res.Routes))
	}
	got := []string{}
	for _, wp := range res.Routes[0].Waypoints {
		got = append(got, wp.Location.ID)
	}
	want := []string{"near", "mid", "far"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order: got %v want %v", got, want)
		}
	}
	checkConservation(t, res, p.Locations)
}

func TestNearestNeighborCapacityOverflow(t *testing.T) {
	heavy := func(id string, lng float64) model.DeliveryLocation {
		l := loc(id, 0, lng)
		l.Demand.WeightKg = 60
		return l
	}
	p := &Problem{
		Locations: []model.DeliveryLocation{heavy("a", 0.01), heavy("b", 0.02), heavy("c", 0.03)},
		Vehicles: []model.Vehicle{{
			ID: "v1", CapacityWeightKg: 100, Start: model.Coordinates{},
		}},
		Constraints: model.OptimizationConstraints{EnforceCapacity: true},
	}
	res, err := Solve(context.Background(), AlgNearestNeighbor, p)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	served := 0
	for _, rt := range res.Routes {
		served += len(rt.Waypoints)
	}
	if served != 1 || len(res.UnassignedLocations) != 2 {
		t.Fatalf("served %d unassigned %d, want 1/2", served, len(res.UnassignedLocations))
	}
	checkConservation(t, res, p.Locations)
}

func TestNearestNeighborTimeWindowRespect(t *testing.T) {
	early := loc("early", 0, 0.05)
	early.TimeWindow = &model.TimeWindow{Start: 0, End: 480}
	late := loc("late", 0, 0.10)
	late.TimeWindow = &model.TimeWindow{Start: 540, End: 600}
	expired := loc("expired", 0, 0.15)
	expired.TimeWindow = &model.TimeWindow{Start: 0, End: 1} // closes almost immediately

	p := &Problem{
		Locations:   []model.DeliveryLocation{late, expired, early},
		Vehicles:    []model.Vehicle{vehicle("v1", 0, 0)},
		Constraints: model.OptimizationConstraints{RespectTimeWindows: true},
	}
	res, err := Solve(context.Background(), AlgNearestNeighbor, p)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	for _, rt := range res.Routes {
		for _, wp := range rt.Waypoints {
			if tw := wp.Location.TimeWindow; tw != nil && wp.ArrivalMinute > tw.End {
				t.Fatalf("waypoint %s arrives %f after window end %f", wp.Location.ID, wp.ArrivalMinute, tw.End)
			}
		}
	}
	for _, u := range res.UnassignedLocations {
		if u.ID != "expired" {
			t.Fatalf("unexpected unassigned %s", u.ID)
		}
	}
	checkConservation(t, res, p.Locations)
}

func TestNearestNeighborCapabilityMismatch(t *testing.T) {
	cold := loc("cold", 0, 0.01)
	cold.Requirements.TemperatureControlled = true
	p := &Problem{
		Locations: []model.DeliveryLocation{cold, loc("plain", 0, 0.02)},
		Vehicles:  []model.Vehicle{vehicle("v1", 0, 0)}, // no reefer
	}
	res, err := Solve(context.Background(), AlgNearestNeighbor, p)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if len(res.UnassignedLocations) != 1 || res.UnassignedLocations[0].ID != "cold" {
		t.Fatalf("unassigned: %+v", res.UnassignedLocations)
	}
	checkConservation(t, res, p.Locations)
}

func TestNearestNeighborEmptyInput(t *testing.T) {
	p := &Problem{Vehicles: []model.Vehicle{vehicle("v1", 0, 0)}}
	res, err := Solve(context.Background(), AlgNearestNeighbor, p)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if len(res.Routes) != 0 || len(res.UnassignedLocations) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
	if res.TotalDistanceKm != 0 || res.TotalMinutes != 0 || res.TotalCost != 0 {
		t.Fatalf("expected zero totals, got %+v", res)
	}
}

func TestNearestNeighborMaxDistanceBudget(t *testing.T) {
	p := &Problem{
		Locations: []model.DeliveryLocation{
			loc("a", 0, 0.01), loc("b", 0, 0.02), loc("c", 0, 2.0),
		},
		Vehicles:    []model.Vehicle{vehicle("v1", 0, 0)},
		Constraints: model.OptimizationConstraints{MaxRouteKm: 10},
	}
	res, err := Solve(context.Background(), AlgNearestNeighbor, p)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if len(res.UnassignedLocations) != 1 || res.UnassignedLocations[0].ID != "c" {
		t.Fatalf("unassigned: %+v", res.UnassignedLocations)
	}
	if res.Routes[0].TotalDistanceKm > 10 {
		t.Fatalf("route exceeds distance budget: %f", res.Routes[0].TotalDistanceKm)
	}
}
