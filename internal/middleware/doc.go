// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

/*
Package middleware provides HTTP middleware shared by the API router.

PrometheusMetrics records request counts, latency and in-flight requests.
Requests are labeled with the chi route pattern rather than the raw path,
so /api/v1/users/{userID}/stats is one series no matter how many users
exist.

	r := chi.NewRouter()
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
