// Package traffic adapts the external traffic/maps collaborator. Any
// failure is treated as "unavailable"; callers fall back to the local
// distance-based estimate.
package traffic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"routeopt/internal/model"
)

// Conditions describes observed traffic between two points.
type Conditions struct {
	CurrentSpeedKph   float64  `json:"currentSpeedKph"`
	NormalSpeedKph    float64  `json:"normalSpeedKph"`
	AlternativeRoutes []string `json:"alternativeRoutes,omitempty"`
}

// Provider is the traffic/maps collaborator interface.
type Provider interface {
	TravelTime(ctx context.Context, from, to model.Coordinates) (float64, error)
	Conditions(ctx context.Context, from, to model.Coordinates) (Conditions, error)
}

// Client talks to an HTTP traffic service. Calls are bounded by the HTTP
// client timeout and throttled so a burst of solves cannot exhaust the
// provider quota.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
}

func NewClient(baseURL string, timeout time.Duration, rps float64, burst int) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("traffic base URL is empty")
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if rps <= 0 {
		rps = 10
	}
	if burst <= 0 {
		burst = 5
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}, nil
}

type travelTimeResponse struct {
	Minutes float64 `json:"minutes"`
}

// TravelTime returns the provider's travel time between from and to in minutes.
func (c *Client) TravelTime(ctx context.Context, from, to model.Coordinates) (float64, error) {
	body, err := c.get(ctx, "/v1/travel-time", from, to)
	if err != nil {
		return 0, err
	}
	var out travelTimeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, fmt.Errorf("decode travel time: %w", err)
	}
	if out.Minutes < 0 {
		return 0, fmt.Errorf("provider returned negative travel time %f", out.Minutes)
	}
	return out.Minutes, nil
}

// Conditions returns current/normal speeds and alternative routes.
func (c *Client) Conditions(ctx context.Context, from, to model.Coordinates) (Conditions, error) {
	body, err := c.get(ctx, "/v1/conditions", from, to)
	if err != nil {
		return Conditions{}, err
	}
	var out Conditions
	if err := json.Unmarshal(body, &out); err != nil {
		return Conditions{}, fmt.Errorf("decode conditions: %w", err)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path string, from, to model.Coordinates) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("fromLat", fmt.Sprintf("%f", from.Lat))
	q.Set("fromLng", fmt.Sprintf("%f", from.Lng))
	q.Set("toLat", fmt.Sprintf("%f", to.Lat))
	q.Set("toLng", fmt.Sprintf("%f", to.Lng))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("traffic provider status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}
