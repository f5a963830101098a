package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type ErrorClass int

const (
	ClassInternal ErrorClass = iota
	ClassNotFound
	ClassConflict
	ClassForeignKey
	ClassCheck
	ClassRetryable
)

func (c ErrorClass) String() string {
	switch c {
	case ClassNotFound:
		return "not_found"
	case ClassConflict:
		return "conflict"
	case ClassForeignKey:
		return "foreign_key"
	case ClassCheck:
		return "check_violation"
	case ClassRetryable:
		return "retryable"
	default:
		return "internal"
	}
}

// Classify maps driver failures onto a small set of classes.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassInternal
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ClassNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ClassConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ClassRetryable
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return ClassConflict // unique_violation
		case "23503":
			return ClassForeignKey // foreign_key_violation
		case "23514":
			return ClassCheck // check_violation
		case "40001", "40P01", "55P03":
			return ClassRetryable // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint failed"):
		return ClassConflict
	case strings.Contains(msg, "check constraint failed"):
		return ClassCheck
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "database is locked"):
		return ClassRetryable
	default:
		return ClassInternal
	}
}

func IsConflict(err error) bool { return err != nil && Classify(err) == ClassConflict }
