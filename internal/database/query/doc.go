// Mediashelf - Media List Statistics and Achievements
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mediashelf

// Package query provides SQL query building utilities for the database package.
//
// The WhereBuilder assembles parameterized WHERE clauses so that every
// criteria query keeps its values out of the SQL text:
//
//	wb := query.NewWhereBuilder()
//	wb.AddClause("e.category = ?", "series")
//	wb.AddClause("e.status = ?", "completed")
//	wb.AddIf(userID != "", "e.user_id = ?", userID)
//	wb.AddIn("c.value", []string{"drama", "comedy"})
//	whereClause, args := wb.BuildWithPrefix()
//	// WHERE e.category = ? AND e.status = ? AND e.user_id = ? AND c.value IN (?, ?)
//
// Column names passed to AddIn must come from code, never from user input.
package query
