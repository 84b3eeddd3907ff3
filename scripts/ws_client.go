// Package main runs a demo WebSocket client for solution events: it solves
// a small problem, subscribes to the solution's event stream, then triggers
// a reoptimization so an event arrives.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Solve a small two-stop problem
	body := []byte(`{
		"algorithm": "nearest-neighbor",
		"locations": [
			{"id": "a", "coordinates": {"lat": 40.71, "lng": -74.00}},
			{"id": "b", "coordinates": {"lat": 40.72, "lng": -74.01}}
		],
		"vehicles": [
			{"id": "v1", "capacityWeightKg": 100, "start": {"lat": 40.70, "lng": -74.00}}
		],
		"seed": 1
	}`)
	req, _ := http.NewRequest(http.MethodPost, base+"/v1/solve", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	var sol struct {
		ID     string `json:"id"`
		Routes []struct {
			Waypoints []struct {
				Location struct {
					Coordinates struct {
						Lat float64 `json:"lat"`
						Lng float64 `json:"lng"`
					} `json:"coordinates"`
				} `json:"location"`
				TravelMinutes float64 `json:"travelMinutes"`
			} `json:"waypoints"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sol); err != nil {
		log.Fatal(err)
	}
	if sol.ID == "" || len(sol.Routes) == 0 || len(sol.Routes[0].Waypoints) < 2 {
		log.Fatal("unexpected solve response")
	}
	log.Printf("Solution ID: %s", sol.ID)

	// Connect WS
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/solutions/" + sol.ID + "/events/ws"}
	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var evt map[string]any
			if err := c.ReadJSON(&evt); err != nil {
				log.Printf("read: %v", err)
				return
			}
			log.Printf("WS <- %v", evt)
		}
	}()

	// Trigger an event via reoptimize on the first leg
	time.Sleep(500 * time.Millisecond)
	wps := sol.Routes[0].Waypoints
	upd := map[string]any{"updates": []map[string]any{{
		"from":          map[string]float64{"lat": wps[0].Location.Coordinates.Lat, "lng": wps[0].Location.Coordinates.Lng},
		"to":            map[string]float64{"lat": wps[1].Location.Coordinates.Lat, "lng": wps[1].Location.Coordinates.Lng},
		"travelMinutes": wps[1].TravelMinutes + 5,
	}}}
	b, _ := json.Marshal(upd)
	reReq, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/v1/solutions/%s/reoptimize", base, sol.ID), bytes.NewReader(b))
	reReq.Header.Set("Content-Type", "application/json")
	_, _ = http.DefaultClient.Do(reReq)

	// Wait briefly to receive a few messages
	select {
	case <-time.After(2 * time.Second):
	case <-done:
	}
}
