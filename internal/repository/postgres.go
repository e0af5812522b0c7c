// Package repository provides PostgreSQL persistence for accounts and
// portfolio records.
//
// Repositories report missing rows as apperr.ErrNotFound and unique index
// violations as apperr.ErrConflict. Every other driver error is wrapped with
// the failing operation's name.
package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atinyakov/portfolio-api/internal/apperr"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// uniqueViolation is the Postgres SQLSTATE for a unique index violation.
const uniqueViolation = "23505"

// classify maps driver errors onto the apperr kinds and wraps the rest.
func classify(op string, err error) error {
	var pqErr *pq.Error
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	case errors.As(err, &pqErr) && pqErr.Code == uniqueViolation:
		return fmt.Errorf("%s: %w (%s)", op, apperr.ErrConflict, pqErr.Constraint)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// validID reports whether id can be a primary key. Anything else cannot
// match a row, so callers answer NotFound without a round trip.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func toJSON(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode json column: %w", err)
	}
	return b, nil
}

func fromJSON(b []byte, v any) error {
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode json column: %w", err)
	}
	return nil
}

// checkAffected turns a zero-row update or delete into ErrNotFound.
func checkAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return nil
}
