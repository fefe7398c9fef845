//go:build integration || e2e

// Package testutil provides test helpers for integration and e2e tests.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/newtron-network/xrvrf/pkg/device"
)

// TestDB is the Redis database integration tests write to.
const TestDB = 15

// RedisAddr returns the address of the test Redis instance from
// XRVRF_TEST_REDIS_ADDR, or an empty string when it is not set.
func RedisAddr() string {
	return os.Getenv("XRVRF_TEST_REDIS_ADDR")
}

// SkipIfNoRedis skips the test if the test Redis instance is not reachable.
func SkipIfNoRedis(t *testing.T) {
	t.Helper()

	addr := RedisAddr()
	if addr == "" {
		t.Skip("test Redis not available: set XRVRF_TEST_REDIS_ADDR")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("test Redis not reachable at %s: %v", addr, err)
	}
}

// FlushDB empties the test database and registers the same cleanup.
func FlushDB(t *testing.T) {
	t.Helper()

	client := RedisClient(t)
	flush := func() {
		if err := client.FlushDB(context.Background()).Err(); err != nil {
			t.Fatalf("failed to flush DB %d: %v", TestDB, err)
		}
	}
	flush()
	t.Cleanup(flush)
}

// RedisClient returns a client for the test database.
func RedisClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: RedisAddr(), DB: TestDB})
	t.Cleanup(func() { client.Close() })
	return client
}

// Context returns a context with a reasonable timeout for tests.
// The cancel function is registered via t.Cleanup.
func Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// DeviceConfig returns SSH settings for the e2e router from
// XRVRF_E2E_DEVICE, XRVRF_E2E_USER and XRVRF_PASSWORD, skipping the test
// when no router is configured.
func DeviceConfig(t *testing.T) device.Config {
	t.Helper()
	host := os.Getenv("XRVRF_E2E_DEVICE")
	if host == "" {
		t.Skip("e2e router not available: set XRVRF_E2E_DEVICE")
	}
	return device.Config{
		Host:           host,
		User:           os.Getenv("XRVRF_E2E_USER"),
		Password:       os.Getenv("XRVRF_PASSWORD"),
		KnownHostsFile: os.Getenv("XRVRF_E2E_KNOWN_HOSTS"),
		Timeout:        30 * time.Second,
	}
}

// Dial connects to the e2e router and registers Close via t.Cleanup.
func Dial(t *testing.T) *device.Client {
	t.Helper()
	client, err := device.Dial(Context(t), DeviceConfig(t))
	if err != nil {
		t.Fatalf("dialing e2e router: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}
