// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

/*
Package services adapts long-running components to suture.Service.

	HTTPServerService     *http.Server with graceful shutdown
	ConsumerService       entry event consumer (watermill router)
	RecomputeService      periodic achievement recomputation
	CacheJanitorService   expired read-cache sweeps

Each service blocks in Serve until its context is canceled and implements
fmt.Stringer so suture log lines name it. Dependencies are small interfaces
so the wrappers can be tested without a database or broker.
*/
package services
