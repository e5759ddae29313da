// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

/*
Package supervisor runs the long-lived parts of "nextbasket serve" under a
suture v4 supervisor tree.

# Overview

	RootSupervisor ("nextbasket")
	├── PipelineSupervisor ("pipeline-layer")
	│   └── PipelineService (cron-scheduled period range)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crashing scheduler never takes the API down, and the other way round.
Crashed services restart with suture's backoff. Supervisor events (starts,
failures, backoff) are logged through sutureslog, which is given a slog
logger backed by zerolog (see logging.NewSlogLogger).

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddPipelineService(services.NewPipelineService(runner, periods, history, cfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)
*/
package supervisor
