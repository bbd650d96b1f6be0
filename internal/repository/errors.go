// Package repository contains data access logic separated from HTTP
// handlers. Every entity follows the same contract: rows are never
// physically removed, a non-null soft_deleted_at excludes a row from all
// reads, and user-owned rows are always filtered by owner id.
//
// The not-found sentinels below are shared by both failure cases of that
// filter: a row that does not exist and a row that exists but belongs to a
// different user produce the SAME error. Handlers must not give callers a
// way to tell the two apart, since a distinct "forbidden" answer would leak
// the existence of other users' records.
//
// Guarded updates read RowsAffected == 0 as that same not-found. This
// relies on clientFoundRows=true in the connection DSN, which makes the
// driver count matched rows rather than changed rows; a no-op write to an
// existing row must not look like a missing one.
package repository

import "errors"

var (
	// ErrEmailExists is returned when registering or changing email to an
	// address already present in the users table, active or not.
	ErrEmailExists = errors.New("email already exists")

	ErrUserNotFound         = errors.New("user not found")
	ErrProviderNotFound     = errors.New("provider not found")
	ErrSymptomNotFound      = errors.New("symptom not found")
	ErrMedicationNotFound   = errors.New("medication not found")
	ErrVisitNotFound        = errors.New("visit not found")
	ErrVisitPrepNotFound    = errors.New("visit prep not found")
	ErrVisitSummaryNotFound = errors.New("visit summary not found")
)
