// Package repository defines the data access layer and the sentinel errors
// handlers use to tell failure scenarios apart.  Lookups that miss return a
// NotFound sentinel; duplicate registrations return an Exists sentinel; all
// other errors are store failures and should surface as HTTP 500.
package repository

import (
	"errors"
	"strings"
)

// ErrSampleNotFound is returned when none of the requested samples exist.
var ErrSampleNotFound = errors.New("sample not found")

// ErrReportNotFound is returned when a report id does not resolve to a row.
var ErrReportNotFound = errors.New("report not found")

// ErrUserNotFound is returned when a username lookup fails.
var ErrUserNotFound = errors.New("user not found")

// ErrUsernameExists and ErrEmailExists signal a registration conflict.
var (
	ErrUsernameExists = errors.New("username already exists")
	ErrEmailExists    = errors.New("email already exists")
)

// isUniqueViolation recognises duplicate-key errors from MySQL (1062) and
// SQLite ("UNIQUE constraint failed").
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") || strings.Contains(msg, "unique constraint failed")
}
