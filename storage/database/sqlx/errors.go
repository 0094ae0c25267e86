// Package sqlxrepos implements the domain repositories over PostgreSQL
// via sqlx.
package sqlxrepos

import (
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique-constraint breach,
// optionally on a specific constraint.
func isUniqueViolation(err error, constraint ...string) bool {
	var pqErr *pq.Error
	if !errors.As(errors.Cause(err), &pqErr) || pqErr.Code != uniqueViolation {
		return false
	}
	if len(constraint) > 0 {
		return pqErr.Constraint == constraint[0]
	}
	return true
}
