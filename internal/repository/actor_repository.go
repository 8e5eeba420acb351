package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/iliyamo/film-catalog/internal/model"
)

const (
	qActorByID     = `SELECT id, first_name, last_name, age FROM actors WHERE id = ?`
	qActorByTriple = `SELECT id, first_name, last_name, age FROM actors WHERE first_name = ? AND last_name = ? AND age = ?`
	qActorList     = `SELECT id, first_name, last_name, age FROM actors ORDER BY last_name, first_name, age`
	qActorInsert   = `INSERT INTO actors (id, first_name, last_name, age) VALUES (?, ?, ?, ?)`
	qActorUpdate   = `UPDATE actors SET first_name = ?, last_name = ?, age = ? WHERE id = ?`
	qActorDelete   = `DELETE FROM actors WHERE id = ?`
)

// GetActor fetches an actor by primary key.  It returns ErrActorNotFound
// if no row is found.
func (t *sqlTx) GetActor(ctx context.Context, id uuid.UUID) (*model.Actor, error) {
	return scanActor(t.tx.QueryRowContext(ctx, qActorByID, id))
}

// FindActor fetches the actor holding the unique (first_name, last_name,
// age) triple.  It returns ErrActorNotFound if there is none.
func (t *sqlTx) FindActor(ctx context.Context, f model.ActorFields) (*model.Actor, error) {
	return scanActor(t.tx.QueryRowContext(ctx, qActorByTriple, f.FirstName, f.LastName, f.Age))
}

// ListActors returns every actor ordered by name and age.
func (t *sqlTx) ListActors(ctx context.Context) ([]model.Actor, error) {
	rows, err := t.tx.QueryContext(ctx, qActorList)
	if err != nil {
		return nil, err
	}
	return collectActors(rows)
}

// CreateActor inserts a new actor.  The caller assigns the ID.  A second
// actor with the same triple fails with ErrDuplicate.
func (t *sqlTx) CreateActor(ctx context.Context, a *model.Actor) error {
	if _, err := t.tx.ExecContext(ctx, qActorInsert, a.ID, a.FirstName, a.LastName, a.Age); err != nil {
		return fmt.Errorf("insert actor: %w", classify(err))
	}
	return nil
}

// UpdateActor overwrites the three editable columns of an existing actor.
// It returns ErrActorNotFound when no row has the actor's ID.
func (t *sqlTx) UpdateActor(ctx context.Context, a *model.Actor) error {
	res, err := t.tx.ExecContext(ctx, qActorUpdate, a.FirstName, a.LastName, a.Age, a.ID)
	if err != nil {
		return fmt.Errorf("update actor: %w", classify(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrActorNotFound
	}
	return nil
}

// DeleteActor removes an actor row.  Associations must be removed first,
// otherwise the foreign key fails with ErrConstraint.
func (t *sqlTx) DeleteActor(ctx context.Context, id uuid.UUID) error {
	res, err := t.tx.ExecContext(ctx, qActorDelete, id)
	if err != nil {
		return fmt.Errorf("delete actor: %w", classify(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrActorNotFound
	}
	return nil
}

func scanActor(row *sql.Row) (*model.Actor, error) {
	var a model.Actor
	if err := row.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Age); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrActorNotFound
		}
		return nil, err
	}
	return &a, nil
}

func collectActors(rows *sql.Rows) ([]model.Actor, error) {
	defer rows.Close()

	out := []model.Actor{}
	for rows.Next() {
		var a model.Actor
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Age); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
