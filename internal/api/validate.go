package api

import (
	"fmt"

	"routeopt/internal/model"
	"routeopt/internal/solver"
)

// maxLocationsPerSolve bounds request size before the engine runs.
const maxLocationsPerSolve = 2000

func validateSolveRequest(req *model.SolveRequest) error {
	if req.Algorithm != "" {
		switch req.Algorithm {
		case solver.AlgNearestNeighbor, solver.AlgSavings, solver.AlgGenetic,
			solver.AlgSequential, solver.AlgHybrid:
		default:
			return fmt.Errorf("invalid algorithm: %s", req.Algorithm)
		}
	}
	if len(req.Locations) == 0 {
		return fmt.Errorf("locations must not be empty")
	}
	if len(req.Locations) > maxLocationsPerSolve {
		return fmt.Errorf("too many locations: %d (max %d)", len(req.Locations), maxLocationsPerSolve)
	}
	if len(req.Vehicles) == 0 {
		return fmt.Errorf("vehicles must not be empty")
	}
	if req.Seed < 0 {
		return fmt.Errorf("seed must be >= 0")
	}
	return nil
}

func validateReoptimizeRequest(req *model.ReoptimizeRequest) error {
	if len(req.Updates) == 0 {
		return fmt.Errorf("updates must not be empty")
	}
	for i, u := range req.Updates {
		if u.TravelMinutes < 0 {
			return fmt.Errorf("updates[%d].travelMinutes must be >= 0", i)
		}
	}
	return nil
}
