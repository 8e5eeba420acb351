package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/iliyamo/film-catalog/internal/model"
)

// Store hands out units of work.  Every catalog operation runs inside one
// Tx which is either committed as a whole or rolled back.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is an open unit of work against the entity store.  Implementations
// enforce the unique keys, check constraints and foreign keys of the
// schema and report violations as ErrDuplicate or ErrConstraint.
// Lookups that find nothing return the entity's not-found sentinel.
type Tx interface {
	ActorStore
	FilmStore
	FilmActorStore

	Commit() error
	Rollback() error
}

// ActorStore covers the actors table.
type ActorStore interface {
	GetActor(ctx context.Context, id uuid.UUID) (*model.Actor, error)
	FindActor(ctx context.Context, f model.ActorFields) (*model.Actor, error)
	ListActors(ctx context.Context) ([]model.Actor, error)
	CreateActor(ctx context.Context, a *model.Actor) error
	UpdateActor(ctx context.Context, a *model.Actor) error
	DeleteActor(ctx context.Context, id uuid.UUID) error
}

// FilmStore covers the films table.
type FilmStore interface {
	GetFilm(ctx context.Context, id uuid.UUID) (*model.Film, error)
	FindFilm(ctx context.Context, title string, year int) (*model.Film, error)
	ListFilms(ctx context.Context) ([]model.Film, error)
	CreateFilm(ctx context.Context, f *model.Film) error
	UpdateFilm(ctx context.Context, f *model.Film) error
	DeleteFilm(ctx context.Context, id uuid.UUID) error
}

// FilmActorStore covers the film_actors join table and the joins through it.
type FilmActorStore interface {
	CreateFilmActor(ctx context.Context, fa *model.FilmActor) error
	GetFilmActor(ctx context.Context, filmID, actorID uuid.UUID) (*model.FilmActor, error)
	DeleteFilmActor(ctx context.Context, id uuid.UUID) error
	DeleteFilmActorsByActor(ctx context.Context, actorID uuid.UUID) (int64, error)
	DeleteFilmActorsByFilm(ctx context.Context, filmID uuid.UUID) (int64, error)
	FilmsByActor(ctx context.Context, actorID uuid.UUID) ([]model.Film, error)
	ActorsByFilm(ctx context.Context, filmID uuid.UUID) ([]model.Actor, error)
	CountActorsByFilm(ctx context.Context, filmID uuid.UUID) (int, error)
}
