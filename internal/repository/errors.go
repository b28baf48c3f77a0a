// Package repository implements the MySQL-backed stores for events, tags,
// profiles, comments and notifications.  Sentinel errors defined here are
// shared with the in-memory store so higher layers such as handlers can
// distinguish failure scenarios without knowing the backend.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrEventNotFound is returned when no event has the requested id.
// Handlers translate it into an HTTP 404 response.
var ErrEventNotFound = errors.New("event not found")

// ErrProfileNotFound is returned when a profile lookup misses.  The feed
// treats it as "use the placeholder", not as a failure.
var ErrProfileNotFound = errors.New("profile not found")

// ErrNotificationNotFound is returned when a notification does not exist
// or belongs to another profile.
var ErrNotificationNotFound = errors.New("notification not found")

// ErrDuplicate is returned when an insert collides with an existing
// primary key.  Deterministic notification ids rely on it.
var ErrDuplicate = errors.New("duplicate")

// MySQL server error numbers this package maps to sentinels.
const (
	errDupEntry        = 1062
	errNoReferencedRow = 1452
)

func isMySQLError(err error, number uint16) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == number
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
