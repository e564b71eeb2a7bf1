// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

/*
Package achievement evaluates tiered achievements against users' lists.

The catalog is declared in code (DefaultCatalog). Every Definition carries
the Strategy that evaluates it, so the code name to strategy mapping is fixed
at compile time:

  - Count: entries matching a fixed predicate (completed, rated, ...)
  - Classified: completed entries matching a genre, person, network,
    language or duration bracket given by the tier
  - Distinct: distinct classification values across completed entries
  - Stat: a field of the aggregate stats row divided by the achievement value

NewRegistry indexes the definitions per category. After the Seeder has
reconciled the persisted catalog, Registry.Validate confirms both sides agree
so a missing strategy stops startup.

The Updater runs strategies as set-based queries. RecomputeAll evaluates each
tier for every user in one query and isolates failures per tier:

	report, err := updater.RecomputeAll(ctx, nil)
	for _, f := range report.Failures {
	    log.Printf("%s/%s: %s", f.CodeName, f.Difficulty, f.Error)
	}

RecomputeUser evaluates one user and reports newly completed tiers. In both
modes completed_at is stamped on the first completion and never cleared.
*/
package achievement
