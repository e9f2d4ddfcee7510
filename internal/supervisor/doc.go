// Reelmatch - Media Discovery Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package supervisor provides process supervision for Reelmatch using suture v4.

The supervisor tree manages the lifecycle of every long-running service in the
server: automatic restart with backoff, failure isolation between layers, and
ordered shutdown on context cancellation.

# Overview

	RootSupervisor ("reelmatch")
	├── EventsSupervisor ("events-layer")
	│   └── eventprocessor.Bus (cache invalidation consumers)
	├── SchedulingSupervisor ("scheduling-layer")
	│   ├── GenerationService (full regeneration)
	│   ├── RefreshService (recently active users)
	│   └── CleanupService (expired recommendations)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Suture reports lifecycle events through slog. The server passes
logging.NewSlogLogger(), which forwards them to the process zerolog logger,
so supervisor events share the JSON output of everything else.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddEventService(bus)
	tree.AddSchedulingService(services.NewGenerationService(jobs, cfg.Scheduler, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return tree.Serve(ctx)

See package services for the service wrappers.
*/
package supervisor
