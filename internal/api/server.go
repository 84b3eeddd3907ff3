package api

import (
	"context"
	"log"
	"strings"

	"routeopt/internal/config"
	"routeopt/internal/geo"
	"routeopt/internal/metrics"
	"routeopt/internal/model"
	"routeopt/internal/solver"
	"routeopt/internal/store"
	"routeopt/internal/traffic"
)

type Server struct {
	Store     store.Store
	Broker    EventBroker
	Estimator *geo.Estimator
	Tuning    solver.Tuning
}

// NewServer wires the server from configuration. No DATABASE_URL means the
// in-memory store; no REDIS_URL means the in-process broker; no traffic URL
// means every solve uses the local distance-based travel estimate.
func NewServer(cfg config.Config) (*Server, error) {
	var s store.Store
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		s = store.NewMemory()
	} else {
		pg, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s = pg
	}

	var broker EventBroker
	if cfg.RedisURL != "" {
		if rb, err := NewRedisBroker(cfg.RedisURL); err == nil {
			broker = rb
		} else {
			log.Printf("warn: redis broker unavailable, using in-process: %v", err)
			broker = NewBroker()
		}
	} else {
		broker = NewBroker()
	}

	est := &geo.Estimator{}
	if cfg.Traffic.URL != "" {
		client, err := traffic.NewClient(cfg.Traffic.URL, cfg.Traffic.Timeout, cfg.Traffic.RPS, cfg.Traffic.Burst)
		if err != nil {
			log.Printf("warn: traffic client disabled: %v", err)
		} else {
			est.Source = countedSource{client}
		}
	}

	return &Server{Store: s, Broker: broker, Estimator: est, Tuning: cfg.Tuning}, nil
}

// countedSource records lookup outcomes without changing behavior.
type countedSource struct {
	src geo.TravelTimeSource
}

func (c countedSource) TravelTime(ctx context.Context, from, to model.Coordinates) (float64, error) {
	mins, err := c.src.TravelTime(ctx, from, to)
	if err != nil {
		metrics.TrafficLookups.WithLabelValues("error").Inc()
		return 0, err
	}
	metrics.TrafficLookups.WithLabelValues("ok").Inc()
	return mins, nil
}
