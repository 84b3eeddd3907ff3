package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"routeopt/internal/metrics"
	"routeopt/internal/model"
	"routeopt/internal/solver"
	"routeopt/internal/store"
)

// defaultObjective is used when a request leaves every weight at zero.
func defaultObjective() model.OptimizationObjective {
	return model.OptimizationObjective{
		DistanceWeight:   0.4,
		TimeWeight:       0.3,
		CostWeight:       0.2,
		EfficiencyWeight: 0.1,
	}
}

// SolveHandler handles POST /v1/solve
func (s *Server) SolveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateSolveRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid solve request", err.Error(), r.URL.Path)
		return
	}

	algorithm := req.Algorithm
	if algorithm == "" {
		algorithm = solver.AlgHybrid
	}
	objective := req.Objective
	if objective == (model.OptimizationObjective{}) {
		objective = defaultObjective()
	}

	p := &solver.Problem{
		Locations:   req.Locations,
		Vehicles:    req.Vehicles,
		Objective:   objective,
		Constraints: req.Constraints,
		Tuning:      s.Tuning,
	}
	if req.Seed != 0 {
		p.Rand = rand.New(rand.NewSource(req.Seed))
	}
	if req.RealTimeTraffic {
		ctx := r.Context()
		p.Travel = func(from, to model.Coordinates) float64 {
			return s.Estimator.TravelMinutes(ctx, from, to, true)
		}
	}

	start := time.Now()
	res, err := solver.Solve(r.Context(), algorithm, p)
	if err != nil {
		metrics.Solves.WithLabelValues(algorithm, "error").Inc()
		switch {
		case errors.Is(err, solver.ErrInvalidInput), errors.Is(err, solver.ErrInvalidConfiguration):
			writeProblem(w, http.StatusBadRequest, "Solve rejected", err.Error(), r.URL.Path)
		case errors.Is(err, solver.ErrAllAlgorithmsFailed):
			writeProblem(w, http.StatusInternalServerError, "All algorithms failed", err.Error(), r.URL.Path)
		default:
			writeProblem(w, http.StatusInternalServerError, "Solve failed", err.Error(), r.URL.Path)
		}
		return
	}
	metrics.Solves.WithLabelValues(algorithm, "ok").Inc()
	metrics.SolveDuration.WithLabelValues(algorithm).Observe(time.Since(start).Seconds())
	metrics.UnassignedLocations.WithLabelValues(algorithm).Observe(float64(len(res.UnassignedLocations)))

	if err := s.Store.SaveSolution(r.Context(), &res); err != nil {
		writeProblem(w, http.StatusInternalServerError, "Save solution failed", err.Error(), r.URL.Path)
		return
	}
	s.Broker.Publish(res.ID, Event{Type: "solution.created", Data: map[string]any{
		"solutionId": res.ID,
		"algorithm":  res.Algorithm,
		"routes":     len(res.Routes),
		"unassigned": len(res.UnassignedLocations),
	}})
	writeJSON(w, http.StatusOK, res)
}

// SolutionsHandler handles GET /v1/solutions
func (s *Server) SolutionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	cursor := r.URL.Query().Get("cursor")
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	items, next, err := s.Store.ListSolutions(r.Context(), cursor, limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List solutions failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// SolutionByIDHandler handles /v1/solutions/{id}, /v1/solutions/{id}/reoptimize
// and /v1/solutions/{id}/events/ws
func (s *Server) SolutionByIDHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/solutions/")
	if rest == "" || rest == r.URL.Path {
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
		return
	}
	id, action, _ := strings.Cut(rest, "/")

	switch action {
	case "":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		sol, err := s.Store.GetSolution(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeProblem(w, http.StatusNotFound, "Solution not found", "", r.URL.Path)
				return
			}
			writeProblem(w, http.StatusInternalServerError, "Get solution failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, sol)
	case "reoptimize":
		s.reoptimize(w, r, id)
	case "events/ws":
		s.EventsWSHandler(w, r, id)
	default:
		writeProblem(w, http.StatusNotFound, "Not Found", "", r.URL.Path)
	}
}

// reoptimize handles POST /v1/solutions/{id}/reoptimize: patch stored route
// timings from traffic updates without re-running the solver.
func (s *Server) reoptimize(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.ReoptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateReoptimizeRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid reoptimize request", err.Error(), r.URL.Path)
		return
	}
	sol, err := s.Store.GetSolution(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Solution not found", "", r.URL.Path)
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Get solution failed", err.Error(), r.URL.Path)
		return
	}
	patched := solver.Reoptimize(sol, req.Updates, 0)
	if err := s.Store.UpdateSolution(r.Context(), patched); err != nil {
		writeProblem(w, http.StatusInternalServerError, "Update solution failed", err.Error(), r.URL.Path)
		return
	}
	metrics.Reoptimizations.Inc()
	s.Broker.Publish(id, Event{Type: "solution.reoptimized", Data: map[string]any{
		"solutionId":   id,
		"updates":      len(req.Updates),
		"totalMinutes": patched.TotalMinutes,
	}})
	writeJSON(w, http.StatusOK, patched)
}

// Health
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	// Check DB connectivity when using the Postgres store
	type pinger interface {
		Ping(ctx context.Context) error
	}
	if pg, ok := s.Store.(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := pg.Ping(ctx); err != nil {
			writeProblem(w, http.StatusServiceUnavailable, "Not Ready", err.Error(), r.URL.Path)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
