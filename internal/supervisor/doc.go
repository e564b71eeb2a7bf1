// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

/*
Package supervisor runs the long-lived parts of mediashelf under suture v4.

# Overview

Services are grouped into three child supervisors:

	RootSupervisor ("mediashelf")
	├── MessagingSupervisor ("messaging-layer")
	│   └── ConsumerService (if messaging is enabled)
	├── JobsSupervisor ("jobs-layer")
	│   ├── RecomputeService (if achievements.recompute_enabled)
	│   └── CacheJanitorService (if the read cache is enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures independently. A broker outage or a crashing
batch pass never restarts the HTTP server.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))
	tree.AddJobService(services.NewRecomputeService(updater, readCache, recomputeCfg, logger))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor stopped")
	}

# Failure Handling

suture keeps a failure counter per supervisor that decays over FailureDecay
seconds. Once it passes FailureThreshold, restarts wait FailureBackoff.
A service returning suture.ErrDoNotRestart is removed instead of restarted;
the event consumer does this because a watermill router cannot run twice.

DuckDB is not supervised. It is an embedded library owned by the database
package, and a crash inside it takes the process down anyway.

# Shutdown

Canceling the context passed to Serve stops every layer. Services that
miss ShutdownTimeout are listed by UnstoppedServiceReport.
*/
package supervisor
