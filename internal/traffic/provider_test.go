package traffic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"routeopt/internal/model"
)

func TestClientTravelTime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/travel-time" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("fromLat") == "" {
			t.Errorf("missing fromLat query param")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"minutes": 12.5}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, time.Second, 100, 10)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	mins, err := c.TravelTime(context.Background(), model.Coordinates{Lat: 1, Lng: 2}, model.Coordinates{Lat: 3, Lng: 4})
	if err != nil {
		t.Fatalf("TravelTime: %v", err)
	}
	if mins != 12.5 {
		t.Fatalf("got %f want 12.5", mins)
	}
}

func TestClientConditions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"currentSpeedKph": 22, "normalSpeedKph": 40, "alternativeRoutes": ["a"]}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, time.Second, 100, 10)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	cond, err := c.Conditions(context.Background(), model.Coordinates{}, model.Coordinates{})
	if err != nil {
		t.Fatalf("Conditions: %v", err)
	}
	if cond.CurrentSpeedKph != 22 || cond.NormalSpeedKph != 40 || len(cond.AlternativeRoutes) != 1 {
		t.Fatalf("bad conditions: %+v", cond)
	}
}

func TestClientErrorStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL, time.Second, 100, 10)
	if _, err := c.TravelTime(context.Background(), model.Coordinates{}, model.Coordinates{}); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", time.Second, 1, 1); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}
