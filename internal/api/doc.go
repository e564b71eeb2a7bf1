// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

/*
Package api provides the HTTP surface of mediashelf.

Routes are served by a chi router under /api/v1 and every response uses the
models.APIResponse envelope:

	{"status": "success", "data": {...}, "metadata": {"timestamp": "..."}}
	{"status": "error", "data": null, "error": {"code": "NOT_FOUND", "message": "..."}}

# Endpoints

Reads:
  - GET /users/{userID}/stats, GET /platform/stats
  - GET /users/{userID}/achievements
  - GET /users/{userID}/activity?month=YYYY-MM
  - GET /media/{category}/{mediaID}

List mutations return the "what changed" payload (before, after, delta and
the resulting aggregate rows):
  - POST, PATCH, DELETE /users/{userID}/entries/{category}/{mediaID}

Administration:
  - PUT /media/{category}/{mediaID}
  - DELETE /users/{userID}/activity/{category}/{mediaID}
  - POST /admin/achievements/recompute
  - POST /admin/stats/rebuild/{userID}, POST /admin/stats/rebuild

Most read endpoints accept an optional ?category= filter.

# Error mapping

Service errors are mapped in writeServiceError: validation failures are 400,
unknown media and missing entries are 404, duplicate entries are 409 and
anything else is a logged 500.

# Middleware

Request IDs with logging context, panic recovery, CORS (go-chi/cors),
per-IP rate limiting (go-chi/httprate), security headers, gzip and
Prometheus request metrics.
*/
package api
