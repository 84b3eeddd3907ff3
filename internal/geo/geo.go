// Package geo provides great-circle distance and travel-time estimation
// for the route optimization engine.
package geo

import (
	"context"
	"log"
	"math"

	"routeopt/internal/model"
)

const earthRadiusKm = 6371.0

// minutesPerKm encodes the fixed fallback assumption of a 30 km/h
// effective average speed.
const minutesPerKm = 2.0

// DistanceKm returns the haversine great-circle distance in kilometers.
func DistanceKm(a, b model.Coordinates) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// EstimateTravelMinutes returns a distance-based travel time estimate.
// trafficMultiplier scales the base estimate; pass 1.0 for free flow.
func EstimateTravelMinutes(a, b model.Coordinates, trafficMultiplier float64) float64 {
	if trafficMultiplier <= 0 {
		trafficMultiplier = 1.0
	}
	return DistanceKm(a, b) * minutesPerKm * trafficMultiplier
}

// TravelTimeSource supplies observed travel times from an external
// traffic/maps collaborator.
type TravelTimeSource interface {
	TravelTime(ctx context.Context, from, to model.Coordinates) (float64, error)
}

// Estimator resolves travel times, consulting an optional external source
// and degrading to the local distance-based estimate on any failure.
type Estimator struct {
	Source TravelTimeSource
}

// TravelMinutes returns the travel time between a and b in minutes.
// When useSource is set and a source is configured, the external provider
// is consulted; its errors are logged and swallowed so a travel time is
// always returned.
func (e *Estimator) TravelMinutes(ctx context.Context, a, b model.Coordinates, useSource bool) float64 {
	if useSource && e != nil && e.Source != nil {
		if mins, err := e.Source.TravelTime(ctx, a, b); err == nil && mins >= 0 {
			return mins
		} else if err != nil {
			log.Printf("warn: traffic provider unavailable, using estimate: %v", err)
		}
	}
	return EstimateTravelMinutes(a, b, 1.0)
}
