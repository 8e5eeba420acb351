// Package repository defines the entity store used by the catalog: the
// Store/Tx contract, the MySQL implementation and the error values shared
// by every implementation.  These sentinel values allow higher layers to
// distinguish a missing row from a constraint the store refused to
// violate.  ErrDuplicate signals a unique key violation (for example a
// second actor with the same name and age), while ErrConstraint covers
// check and foreign key violations, which callers treat as a generic
// storage failure.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrActorNotFound is returned when no actor row matches the lookup.
var ErrActorNotFound = errors.New("actor not found")

// ErrFilmNotFound is returned when no film row matches the lookup.
var ErrFilmNotFound = errors.New("film not found")

// ErrFilmActorNotFound is returned when no film_actors row matches the lookup.
var ErrFilmActorNotFound = errors.New("film actor not found")

// ErrDuplicate is returned when a write would violate one of the unique
// keys (unique_actor, unique_film, film_actor_combines_unique).
var ErrDuplicate = errors.New("duplicate entry")

// ErrConstraint is returned when a write violates a check constraint or a
// foreign key.
var ErrConstraint = errors.New("constraint violation")

// MySQL server error numbers translated by classify.
const (
	mysqlDuplicateEntry     = 1062
	mysqlRowIsReferenced    = 1451
	mysqlNoReferencedRow    = 1452
	mysqlCheckConstraintErr = 3819
)

// classify wraps driver errors with the matching sentinel so callers can
// use errors.Is without looking at driver types.  Unknown errors are
// returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDuplicateEntry:
			return fmt.Errorf("%w: %w", ErrDuplicate, err)
		case mysqlRowIsReferenced, mysqlNoReferencedRow, mysqlCheckConstraintErr:
			return fmt.Errorf("%w: %w", ErrConstraint, err)
		}
	}
	return err
}
