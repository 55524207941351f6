package main

import (
	"context"

	"github.com/scamshield/riskengine/internal/infrastructure/database/redis"
)

// redisHealthAdapter exposes the redis client as a readiness checker.
type redisHealthAdapter struct {
	client *redis.Client
}

func (a *redisHealthAdapter) Name() string {
	return "redis"
}

func (a *redisHealthAdapter) Check(ctx context.Context) error {
	return a.client.Ping(ctx)
}
