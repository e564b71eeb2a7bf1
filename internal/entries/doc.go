// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

/*
Package entries orchestrates list mutations.

Add, Update and Remove resolve the media, then inside one DuckDB transaction:

 1. read the stored entry (the old state)
 2. build and normalize the new state
 3. compute the delta with the category calculator
 4. write or delete the entry
 5. apply the delta to the user row and the platform row
 6. merge the activity change into the current month bucket

Any failure rolls back all of it. Only after commit is the cache invalidated
and an entry.mutated event published; a publish failure is logged and the
mutation still succeeds.

Validation errors (ErrMediaNotFound, ErrAlreadyInList, ErrNotInList and
friends) are reported by IsValidation and map to 4xx responses.
*/
package entries
