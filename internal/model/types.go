package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Core domain types for the route optimization engine.
// Times of day are expressed in minutes since midnight.

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// TimeWindow bounds when a location may be serviced, in minutes of day.
type TimeWindow struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Requirements are handling constraints a serving vehicle must cover.
type Requirements struct {
	TemperatureControlled bool `json:"temperatureControlled,omitempty"`
	Fragile               bool `json:"fragile,omitempty"`
	SignatureRequired     bool `json:"signatureRequired,omitempty"`
}

// Demand is the capacity a delivery consumes on a vehicle.
type Demand struct {
	WeightKg float64 `json:"weightKg,omitempty"`
	VolumeM3 float64 `json:"volumeM3,omitempty"`
}

type DeliveryLocation struct {
	ID             string       `json:"id"`
	Coordinates    Coordinates  `json:"coordinates"`
	TimeWindow     *TimeWindow  `json:"timeWindow,omitempty"`
	ServiceMinutes float64      `json:"serviceMinutes,omitempty"`
	Priority       int          `json:"priority,omitempty"`
	DeliveryType   string       `json:"deliveryType,omitempty"`
	Demand         Demand       `json:"demand,omitempty"`
	Requirements   Requirements `json:"requirements,omitempty"`
}

// Capabilities flags what a vehicle can handle; a vehicle may serve a
// location only if its capabilities cover the location's requirements.
type Capabilities struct {
	TemperatureControlled bool `json:"temperatureControlled,omitempty"`
	Fragile               bool `json:"fragile,omitempty"`
	SignatureRequired     bool `json:"signatureRequired,omitempty"`
}

// Covers reports whether the capabilities satisfy the given requirements.
func (c Capabilities) Covers(r Requirements) bool {
	if r.TemperatureControlled && !c.TemperatureControlled {
		return false
	}
	if r.Fragile && !c.Fragile {
		return false
	}
	if r.SignatureRequired && !c.SignatureRequired {
		return false
	}
	return true
}

type Vehicle struct {
	ID               string       `json:"id"`
	CapacityWeightKg float64      `json:"capacityWeightKg"`
	CapacityVolumeM3 float64      `json:"capacityVolumeM3"`
	Capabilities     Capabilities `json:"capabilities,omitempty"`
	Start            Coordinates  `json:"start"`
	End              *Coordinates `json:"end,omitempty"`
	WorkingHours     TimeWindow   `json:"workingHours"`
	CostPerKm        float64      `json:"costPerKm,omitempty"`
	CostPerMinute    float64      `json:"costPerMinute,omitempty"`
}

// OptimizationObjective holds the linear-combination weights used to score
// solutions. Callers should normalize them to sum to 1; this is not enforced.
type OptimizationObjective struct {
	DistanceWeight   float64 `json:"distanceWeight"`
	TimeWeight       float64 `json:"timeWeight"`
	CostWeight       float64 `json:"costWeight"`
	EfficiencyWeight float64 `json:"efficiencyWeight"`
}

type OptimizationConstraints struct {
	MaxRouteMinutes    float64 `json:"maxRouteMinutes,omitempty"`
	MaxRouteKm         float64 `json:"maxRouteKm,omitempty"`
	RespectTimeWindows bool    `json:"respectTimeWindows,omitempty"`
	EnforceCapacity    bool    `json:"enforceCapacity,omitempty"`
}

// Waypoint is one resolved stop: the location plus derived timing for the
// leg that reaches it. ArrivalMinute/DepartureMinute are minutes of day.
type Waypoint struct {
	Location        DeliveryLocation `json:"location"`
	ArrivalMinute   float64          `json:"arrivalMinute"`
	DepartureMinute float64          `json:"departureMinute"`
	TravelMinutes   float64          `json:"travelMinutes"`
	DistanceKm      float64          `json:"distanceKm"`
}

type OptimizedRoute struct {
	VehicleID       string     `json:"vehicleId"`
	Waypoints       []Waypoint `json:"waypoints"`
	TotalDistanceKm float64    `json:"totalDistanceKm"`
	TotalMinutes    float64    `json:"totalMinutes"`
	TotalCost       float64    `json:"totalCost"`
	Efficiency      float64    `json:"efficiency"` // served locations per hour
}

// SolutionResult is the output of one solve: one route per vehicle that
// received at least one stop, plus the locations no vehicle could serve.
// UnassignedLocations being non-empty is a reportable partial result, not
// an error.
type SolutionResult struct {
	ID                  string             `json:"id,omitempty"`
	Algorithm           string             `json:"algorithm"`
	SelectedAlgorithm   string             `json:"selectedAlgorithm,omitempty"` // set by the hybrid selector
	Routes              []OptimizedRoute   `json:"routes"`
	TotalDistanceKm     float64            `json:"totalDistanceKm"`
	TotalMinutes        float64            `json:"totalMinutes"`
	TotalCost           float64            `json:"totalCost"`
	UnassignedLocations []DeliveryLocation `json:"unassignedLocations"`
	CreatedAt           time.Time          `json:"createdAt,omitempty"`
}

// SolveRequest is the input boundary from order/fleet management.
type SolveRequest struct {
	Algorithm             string                  `json:"algorithm,omitempty"`
	Locations             []DeliveryLocation      `json:"locations"`
	Vehicles              []Vehicle               `json:"vehicles"`
	Objective             OptimizationObjective   `json:"objective"`
	Constraints           OptimizationConstraints `json:"constraints"`
	RealTimeTraffic       bool                    `json:"realTimeTraffic,omitempty"`
	WeatherConsiderations bool                    `json:"weatherConsiderations,omitempty"` // accepted, currently a no-op
	Seed                  int64                   `json:"seed,omitempty"`
}

// TrafficUpdate carries a new travel time for one directed location pair.
type TrafficUpdate struct {
	From          Coordinates `json:"from"`
	To            Coordinates `json:"to"`
	TravelMinutes float64     `json:"travelMinutes"`
}

type ReoptimizeRequest struct {
	Updates []TrafficUpdate `json:"updates"`
}

// ParseClock converts an "HH:MM" string to minutes of day.
func ParseClock(s string) (float64, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return float64(h*60 + m), nil
}
