package postgres

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

// ErrorCode returns the SQLSTATE carried by err, or "" when err did not come from the server.
func ErrorCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}

	return ""
}

// IsUniqueViolation reports SQLSTATE 23505.
func IsUniqueViolation(err error) bool {
	return ErrorCode(err) == pgerrcode.UniqueViolation
}

// IsForeignKeyViolation reports SQLSTATE 23503.
func IsForeignKeyViolation(err error) bool {
	return ErrorCode(err) == pgerrcode.ForeignKeyViolation
}

// IsExclusionViolation reports SQLSTATE 23P01, raised by EXCLUDE constraints.
func IsExclusionViolation(err error) bool {
	return ErrorCode(err) == pgerrcode.ExclusionViolation
}

// IsSerializationFailure reports SQLSTATE 40001 and 40P01, both of which mean a
// concurrent transaction won the race.
func IsSerializationFailure(err error) bool {
	code := ErrorCode(err)

	return code == pgerrcode.SerializationFailure || code == pgerrcode.DeadlockDetected
}
