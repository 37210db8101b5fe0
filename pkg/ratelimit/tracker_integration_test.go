//go:build integration

package ratelimit

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer starts a Redis container and returns a client
func setupRedisContainer(t *testing.T) (*redis.Client, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: endpoint,
	})

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestTracker_Integration_DefaultState(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	tracker := NewTracker(redisClient, zerolog.Nop())

	state, err := tracker.GetState(context.Background())
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}

	if !state.IsHealthy {
		t.Error("empty Redis should yield a default healthy state")
	}
	if state.RequestsRemaining != 100 {
		t.Errorf("RequestsRemaining = %d, want 100", state.RequestsRemaining)
	}
}

func TestTracker_Integration_HeaderRoundTrip(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	tracker := NewTracker(redisClient, zerolog.Nop())
	ctx := context.Background()

	headers := http.Header{}
	headers.Set("X-Rate-Limit-Remaining", "42")
	headers.Set("X-Rate-Limit-Reset", "60")

	if err := tracker.UpdateFromHeaders(ctx, headers); err != nil {
		t.Fatalf("UpdateFromHeaders failed: %v", err)
	}

	state, err := tracker.GetState(ctx)
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}

	if state.RequestsRemaining != 42 {
		t.Errorf("RequestsRemaining = %d, want 42", state.RequestsRemaining)
	}
	if until := state.TimeUntilReset(); until <= 0 || until > 60*time.Second {
		t.Errorf("TimeUntilReset = %v, want within (0, 60s]", until)
	}
	if state.IsHealthy {
		t.Error("42 remaining is below the healthy threshold")
	}
	if state.NeedsCriticalBlock() || state.NeedsThrottling() {
		t.Error("42 remaining should neither block nor throttle")
	}
}

func TestTracker_Integration_SharedState(t *testing.T) {
	redisClient, cleanup := setupRedisContainer(t)
	defer cleanup()

	ctx := context.Background()

	// Two trackers sharing one Redis see the same quota state.
	writer := NewTracker(redisClient, zerolog.Nop())
	reader := NewTracker(redisClient, zerolog.Nop())

	headers := http.Header{}
	headers.Set("X-Rate-Limit-Remaining", "3")
	headers.Set("X-Rate-Limit-Reset", "30")
	if err := writer.UpdateFromHeaders(ctx, headers); err != nil {
		t.Fatalf("UpdateFromHeaders failed: %v", err)
	}

	allowed, err := reader.ShouldAllowRequest(ctx)
	if err != nil {
		t.Fatalf("ShouldAllowRequest failed: %v", err)
	}
	if allowed {
		t.Error("critical quota written by one tracker should block the other")
	}
}
