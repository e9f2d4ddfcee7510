// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package testinfra provides test infrastructure for integration testing with containers.
//
// This package uses testcontainers-go to manage Docker containers for integration tests.
// Every file carries the integration build tag, so regular `go test ./...` runs
// never need Docker.
//
// # Redis Container
//
// RedisContainer backs the Redis cache integration tests:
//
//	func TestRedisStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//
//	    rc, err := testinfra.NewRedisContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, rc)
//
//	    store, err := cache.NewRedis(ctx, cache.RedisConfig{Addr: rc.Addr})
//	    // ...
//	}
//
// # Running
//
//	go test -tags integration ./internal/cache/...
//
// Tests are skipped gracefully if Docker is unavailable.
package testinfra
