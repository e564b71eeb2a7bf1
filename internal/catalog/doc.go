// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

/*
Package catalog supplies media metadata to the mutation service.

Resolver reads the local media table first. When the media is unknown and a
remote catalog is configured, RemoteClient fetches it and the result is
persisted with source "remote" so later lookups stay local.

RemoteClient is guarded by a sony/gobreaker circuit breaker and a token
bucket limiter from golang.org/x/time/rate. A 404 from the remote is an
answer, not a failure, and never trips the breaker.
*/
package catalog
