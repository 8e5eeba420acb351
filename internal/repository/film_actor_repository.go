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
	qFilmActorInsert       = `INSERT INTO film_actors (id, film_id, actor_id) VALUES (?, ?, ?)`
	qFilmActorByPair       = `SELECT id, film_id, actor_id FROM film_actors WHERE film_id = ? AND actor_id = ?`
	qFilmActorDelete       = `DELETE FROM film_actors WHERE id = ?`
	qFilmActorDeleteActor  = `DELETE FROM film_actors WHERE actor_id = ?`
	qFilmActorDeleteFilm   = `DELETE FROM film_actors WHERE film_id = ?`
	qFilmActorCountForFilm = `SELECT COUNT(*) FROM film_actors WHERE film_id = ?`
	qFilmsByActor          = `SELECT f.id, f.title, f.description, f.year
	                          FROM films f
	                          JOIN film_actors fa ON fa.film_id = f.id
	                          WHERE fa.actor_id = ?
	                          ORDER BY f.title, f.year`
	qActorsByFilm = `SELECT a.id, a.first_name, a.last_name, a.age
	                 FROM actors a
	                 JOIN film_actors fa ON fa.actor_id = a.id
	                 WHERE fa.film_id = ?
	                 ORDER BY a.last_name, a.first_name, a.age`
)

// CreateFilmActor links an actor to a film.  Linking the same pair twice
// fails with ErrDuplicate; a missing film or actor fails with
// ErrConstraint through the foreign keys.
func (t *sqlTx) CreateFilmActor(ctx context.Context, fa *model.FilmActor) error {
	if _, err := t.tx.ExecContext(ctx, qFilmActorInsert, fa.ID, fa.FilmID, fa.ActorID); err != nil {
		return fmt.Errorf("insert film actor: %w", classify(err))
	}
	return nil
}

// GetFilmActor fetches the association of the given film and actor.  It
// returns ErrFilmActorNotFound when the pair is not linked.
func (t *sqlTx) GetFilmActor(ctx context.Context, filmID, actorID uuid.UUID) (*model.FilmActor, error) {
	var fa model.FilmActor
	err := t.tx.QueryRowContext(ctx, qFilmActorByPair, filmID, actorID).Scan(&fa.ID, &fa.FilmID, &fa.ActorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFilmActorNotFound
		}
		return nil, err
	}
	return &fa, nil
}

// DeleteFilmActor removes a single association row by its ID.
func (t *sqlTx) DeleteFilmActor(ctx context.Context, id uuid.UUID) error {
	res, err := t.tx.ExecContext(ctx, qFilmActorDelete, id)
	if err != nil {
		return fmt.Errorf("delete film actor: %w", classify(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFilmActorNotFound
	}
	return nil
}

// DeleteFilmActorsByActor removes every association of an actor in one
// statement and reports how many rows went away.
func (t *sqlTx) DeleteFilmActorsByActor(ctx context.Context, actorID uuid.UUID) (int64, error) {
	res, err := t.tx.ExecContext(ctx, qFilmActorDeleteActor, actorID)
	if err != nil {
		return 0, fmt.Errorf("delete film actors of actor: %w", classify(err))
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// DeleteFilmActorsByFilm removes every association of a film.
func (t *sqlTx) DeleteFilmActorsByFilm(ctx context.Context, filmID uuid.UUID) (int64, error) {
	res, err := t.tx.ExecContext(ctx, qFilmActorDeleteFilm, filmID)
	if err != nil {
		return 0, fmt.Errorf("delete film actors of film: %w", classify(err))
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// FilmsByActor lists the films an actor is linked to.
func (t *sqlTx) FilmsByActor(ctx context.Context, actorID uuid.UUID) ([]model.Film, error) {
	rows, err := t.tx.QueryContext(ctx, qFilmsByActor, actorID)
	if err != nil {
		return nil, err
	}
	return collectFilms(rows)
}

// ActorsByFilm lists the actors linked to a film.
func (t *sqlTx) ActorsByFilm(ctx context.Context, filmID uuid.UUID) ([]model.Actor, error) {
	rows, err := t.tx.QueryContext(ctx, qActorsByFilm, filmID)
	if err != nil {
		return nil, err
	}
	return collectActors(rows)
}

// CountActorsByFilm returns the total number of actors linked to a film.
func (t *sqlTx) CountActorsByFilm(ctx context.Context, filmID uuid.UUID) (int, error) {
	var n int
	if err := t.tx.QueryRowContext(ctx, qFilmActorCountForFilm, filmID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
