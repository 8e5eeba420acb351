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
	qFilmByID        = `SELECT id, title, description, year FROM films WHERE id = ?`
	qFilmByTitleYear = `SELECT id, title, description, year FROM films WHERE title = ? AND year = ?`
	qFilmList        = `SELECT id, title, description, year FROM films ORDER BY title, year`
	qFilmInsert      = `INSERT INTO films (id, title, description, year) VALUES (?, ?, ?, ?)`
	qFilmUpdate      = `UPDATE films SET title = ?, description = ?, year = ? WHERE id = ?`
	qFilmDelete      = `DELETE FROM films WHERE id = ?`
)

// GetFilm fetches a film by primary key.  It returns ErrFilmNotFound if
// no row is found.
func (t *sqlTx) GetFilm(ctx context.Context, id uuid.UUID) (*model.Film, error) {
	return scanFilm(t.tx.QueryRowContext(ctx, qFilmByID, id))
}

// FindFilm fetches the film holding the unique (title, year) pair.
func (t *sqlTx) FindFilm(ctx context.Context, title string, year int) (*model.Film, error) {
	return scanFilm(t.tx.QueryRowContext(ctx, qFilmByTitleYear, title, year))
}

// ListFilms returns every film ordered by title and year.
func (t *sqlTx) ListFilms(ctx context.Context) ([]model.Film, error) {
	rows, err := t.tx.QueryContext(ctx, qFilmList)
	if err != nil {
		return nil, err
	}
	return collectFilms(rows)
}

// CreateFilm inserts a new film.  A second film with the same title and
// year fails with ErrDuplicate.
func (t *sqlTx) CreateFilm(ctx context.Context, f *model.Film) error {
	if _, err := t.tx.ExecContext(ctx, qFilmInsert, f.ID, f.Title, f.Description, f.Year); err != nil {
		return fmt.Errorf("insert film: %w", classify(err))
	}
	return nil
}

// UpdateFilm overwrites the editable columns of a film.  Returns
// ErrFilmNotFound when no row has the film's ID.
func (t *sqlTx) UpdateFilm(ctx context.Context, f *model.Film) error {
	res, err := t.tx.ExecContext(ctx, qFilmUpdate, f.Title, f.Description, f.Year, f.ID)
	if err != nil {
		return fmt.Errorf("update film: %w", classify(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFilmNotFound
	}
	return nil
}

// DeleteFilm removes a film row.  Its film_actors rows must already be
// gone.
func (t *sqlTx) DeleteFilm(ctx context.Context, id uuid.UUID) error {
	res, err := t.tx.ExecContext(ctx, qFilmDelete, id)
	if err != nil {
		return fmt.Errorf("delete film: %w", classify(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFilmNotFound
	}
	return nil
}

func scanFilm(row *sql.Row) (*model.Film, error) {
	var f model.Film
	if err := row.Scan(&f.ID, &f.Title, &f.Description, &f.Year); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFilmNotFound
		}
		return nil, err
	}
	return &f, nil
}

func collectFilms(rows *sql.Rows) ([]model.Film, error) {
	defer rows.Close()

	out := []model.Film{}
	for rows.Next() {
		var f model.Film
		if err := rows.Scan(&f.ID, &f.Title, &f.Description, &f.Year); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
