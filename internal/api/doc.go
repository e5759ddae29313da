// Nextbasket - Co-purchase Rule Mining and Next-Product Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/nextbasket

/*
Package api serves the mined rules over HTTP using the Chi router.

# Endpoints

	GET  /health                 store reachability
	GET  /api/v1/rules?basket=A,B   stored rule for one antecedent (404 when absent)
	GET  /api/v1/rules/all       every stored rule, ordered by antecedent key
	POST /api/v1/recommend       next-product suggestion for {"basket": [...]}
	GET  /api/v1/runs/latest     report of the most recent pipeline run
	GET  /metrics                Prometheus exposition

# Response Format

Every JSON endpoint except /metrics answers with the same envelope:

	{
	  "status": "success",
	  "data": { ... },
	  "metadata": {"timestamp": "2024-07-01T03:00:00Z"}
	}

Errors set status to "error" and carry a machine-readable code:

	{
	  "status": "error",
	  "data": null,
	  "metadata": {"timestamp": "..."},
	  "error": {"code": "RULE_NOT_FOUND", "message": "no rule for basket {A, B}"}
	}

# Middleware

Applied globally, outermost first: request ID with logging context, real IP,
panic recovery, CORS (go-chi/cors), and Prometheus request metrics. The
/api/v1 group adds a per-IP limiter (go-chi/httprate) and security headers.
*/
package api
