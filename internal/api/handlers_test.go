package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"routeopt/internal/config"
	"routeopt/internal/model"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(config.Config{})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func solveBody() []byte {
	req := model.SolveRequest{
		Algorithm: "nearest-neighbor",
		Locations: []model.DeliveryLocation{
			{ID: "a", Coordinates: model.Coordinates{Lat: 0, Lng: 0.01}},
			{ID: "b", Coordinates: model.Coordinates{Lat: 0, Lng: 0.02}},
		},
		Vehicles: []model.Vehicle{
			{ID: "v1", CapacityWeightKg: 100, Start: model.Coordinates{}},
		},
		Seed: 42,
	}
	b, _ := json.Marshal(req)
	return b
}

func TestHealthReady(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.HealthHandler(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != 200 {
		t.Fatalf("health: got %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	s.ReadyHandler(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != 200 {
		t.Fatalf("ready: got %d", rr.Code)
	}
}

func TestSolveAndFetch(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/solve", bytes.NewReader(solveBody()))
	req.Header.Set("Content-Type", "application/json")
	s.SolveHandler(rr, req)
	if rr.Code != 200 {
		t.Fatalf("solve: %d %s", rr.Code, rr.Body.String())
	}
	var sol model.SolutionResult
	if err := json.Unmarshal(rr.Body.Bytes(), &sol); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if sol.ID == "" || sol.Algorithm != "nearest-neighbor" || len(sol.Routes) != 1 {
		t.Fatalf("solution: %+v", sol)
	}

	// GET /v1/solutions/{id}
	rr = httptest.NewRecorder()
	s.SolutionByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/solutions/"+sol.ID, nil))
	if rr.Code != 200 {
		t.Fatalf("get solution: %d", rr.Code)
	}

	// GET /v1/solutions
	rr = httptest.NewRecorder()
	s.SolutionsHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/solutions?limit=5", nil))
	if rr.Code != 200 {
		t.Fatalf("list solutions: %d", rr.Code)
	}
	var page struct {
		Items []model.SolutionResult `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("items: %d", len(page.Items))
	}
}

func TestSolveRejectsBadRequests(t *testing.T) {
	s := newTestServer(t)

	rr := httptest.NewRecorder()
	s.SolveHandler(rr, httptest.NewRequest(http.MethodPost, "/v1/solve", bytes.NewReader([]byte("{not json"))))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("bad json: %d", rr.Code)
	}

	body, _ := json.Marshal(model.SolveRequest{
		Algorithm: "simulated-annealing",
		Locations: []model.DeliveryLocation{{ID: "a"}},
		Vehicles:  []model.Vehicle{{ID: "v1"}},
	})
	rr = httptest.NewRecorder()
	s.SolveHandler(rr, httptest.NewRequest(http.MethodPost, "/v1/solve", bytes.NewReader(body)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown algorithm: %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	s.SolveHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/solve", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("method: %d", rr.Code)
	}
}

func TestReoptimizeEndpoint(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/solve", bytes.NewReader(solveBody()))
	s.SolveHandler(rr, req)
	if rr.Code != 200 {
		t.Fatalf("solve: %d", rr.Code)
	}
	var sol model.SolutionResult
	_ = json.Unmarshal(rr.Body.Bytes(), &sol)
	if len(sol.Routes) == 0 || len(sol.Routes[0].Waypoints) < 2 {
		t.Fatalf("need a 2-stop route, got %+v", sol.Routes)
	}
	wps := sol.Routes[0].Waypoints

	upd := model.ReoptimizeRequest{Updates: []model.TrafficUpdate{{
		From:          wps[0].Location.Coordinates,
		To:            wps[1].Location.Coordinates,
		TravelMinutes: wps[1].TravelMinutes + 10,
	}}}
	b, _ := json.Marshal(upd)
	rr = httptest.NewRecorder()
	s.SolutionByIDHandler(rr, httptest.NewRequest(http.MethodPost, "/v1/solutions/"+sol.ID+"/reoptimize", bytes.NewReader(b)))
	if rr.Code != 200 {
		t.Fatalf("reoptimize: %d %s", rr.Code, rr.Body.String())
	}
	var patched model.SolutionResult
	_ = json.Unmarshal(rr.Body.Bytes(), &patched)
	want := sol.TotalMinutes + 10
	if diff := patched.TotalMinutes - want; diff > 1e-6 || diff < -1e-6 {
		t.Fatalf("total minutes: %f want %f", patched.TotalMinutes, want)
	}

	// patched version must be what the store now returns
	rr = httptest.NewRecorder()
	s.SolutionByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/solutions/"+sol.ID, nil))
	var stored model.SolutionResult
	_ = json.Unmarshal(rr.Body.Bytes(), &stored)
	if stored.TotalMinutes != patched.TotalMinutes {
		t.Fatalf("store not updated: %f vs %f", stored.TotalMinutes, patched.TotalMinutes)
	}
}

func TestSolutionNotFound(t *testing.T) {
	s := newTestServer(t)
	rr := httptest.NewRecorder()
	s.SolutionByIDHandler(rr, httptest.NewRequest(http.MethodGet, "/v1/solutions/does-not-exist", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get missing: %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	body := []byte(`{"updates":[{"from":{"lat":0,"lng":0},"to":{"lat":0,"lng":1},"travelMinutes":5}]}`)
	s.SolutionByIDHandler(rr, httptest.NewRequest(http.MethodPost, "/v1/solutions/does-not-exist/reoptimize", bytes.NewReader(body)))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("reoptimize missing: %d", rr.Code)
	}
}
