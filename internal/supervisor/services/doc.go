// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

// Package services adapts the serve-mode components to suture.Service:
// PipelineService runs the period range on a cron schedule and
// HTTPServerService runs the API server with graceful shutdown.
package services
