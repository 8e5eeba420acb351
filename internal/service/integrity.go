// Package service holds the catalog's business rules.  Integrity applies
// the uniqueness and cascade rules inside a caller-supplied unit of work;
// Catalog owns the unit of work and everything that happens around it
// (commit, events, rating lookups).
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/film-catalog/internal/model"
	"github.com/iliyamo/film-catalog/internal/rating"
	"github.com/iliyamo/film-catalog/internal/repository"
)

// Integrity implements the create/update/delete rules over actors, films
// and their associations.  Its methods never commit or roll back: the tx
// they receive is the whole unit of work and belongs to the caller.
type Integrity struct {
	log   *zap.Logger
	newID func() uuid.UUID
}

// NewIntegrity returns the rule engine.
func NewIntegrity(log *zap.Logger) *Integrity {
	return &Integrity{log: log.Named("integrity"), newID: uuid.New}
}

// ActorRef names an existing actor either by id or by its unique
// (first name, last name, age) triple.
type ActorRef struct {
	ID     uuid.UUID
	Fields *model.ActorFields
}

// ActorByID refers to an actor by primary key.
func ActorByID(id uuid.UUID) ActorRef { return ActorRef{ID: id} }

// ActorByFields refers to an actor by its unique triple.
func ActorByFields(f model.ActorFields) ActorRef { return ActorRef{Fields: &f} }

func (r ActorRef) resolve(ctx context.Context, tx repository.Tx) (*model.Actor, error) {
	var (
		a   *model.Actor
		err error
	)
	if r.Fields != nil {
		a, err = tx.FindActor(ctx, *r.Fields)
	} else {
		a, err = tx.GetActor(ctx, r.ID)
	}
	switch {
	case err == nil:
		return a, nil
	case errors.Is(err, repository.ErrActorNotFound):
		if r.Fields != nil {
			return nil, notFound("actor %q with age %d not found", r.Fields.FirstName+" "+r.Fields.LastName, r.Fields.Age)
		}
		return nil, notFound("actor with id %q not found", r.ID)
	default:
		return nil, fmt.Errorf("load actor: %w", err)
	}
}

// FilmRef names an existing film either by id or by its unique
// (title, year) pair.
type FilmRef struct {
	ID    uuid.UUID
	Title string
	Year  int
	byKey bool
}

// FilmByID refers to a film by primary key.
func FilmByID(id uuid.UUID) FilmRef { return FilmRef{ID: id} }

// FilmByTitle refers to a film by its unique (title, year) pair.
func FilmByTitle(title string, year int) FilmRef {
	return FilmRef{Title: title, Year: year, byKey: true}
}

func (r FilmRef) resolve(ctx context.Context, tx repository.Tx) (*model.Film, error) {
	var (
		f   *model.Film
		err error
	)
	if r.byKey {
		f, err = tx.FindFilm(ctx, r.Title, r.Year)
	} else {
		f, err = tx.GetFilm(ctx, r.ID)
	}
	switch {
	case err == nil:
		return f, nil
	case errors.Is(err, repository.ErrFilmNotFound):
		if r.byKey {
			return nil, notFound("film with title %q and year %d not found", r.Title, r.Year)
		}
		return nil, notFound("film with id %q not found", r.ID)
	default:
		return nil, fmt.Errorf("load film: %w", err)
	}
}

// FindOrCreateActor returns the actor with the given triple, inserting it
// first if it does not exist.  The bool reports whether a row was created.
func (in *Integrity) FindOrCreateActor(ctx context.Context, tx repository.Tx, f model.ActorFields) (*model.Actor, bool, error) {
	a, err := tx.FindActor(ctx, f)
	if err == nil {
		return a, false, nil
	}
	if !errors.Is(err, repository.ErrActorNotFound) {
		return nil, false, fmt.Errorf("find actor: %w", err)
	}
	a = &model.Actor{ID: in.newID()}
	a.Apply(f)
	if err := tx.CreateActor(ctx, a); err != nil {
		return nil, false, err
	}
	in.log.Debug("actor created", zap.Stringer("actor_id", a.ID))
	return a, true, nil
}

// FindOrCreateFilm returns the film with the given (title, year), inserting
// it first if it does not exist.  An existing film keeps its description.
func (in *Integrity) FindOrCreateFilm(ctx context.Context, tx repository.Tx, f model.FilmFields) (*model.Film, bool, error) {
	film, err := tx.FindFilm(ctx, f.Title, f.Year)
	if err == nil {
		return film, false, nil
	}
	if !errors.Is(err, repository.ErrFilmNotFound) {
		return nil, false, fmt.Errorf("find film: %w", err)
	}
	film = &model.Film{ID: in.newID()}
	film.Apply(f)
	if err := tx.CreateFilm(ctx, film); err != nil {
		return nil, false, err
	}
	in.log.Debug("film created", zap.Stringer("film_id", film.ID))
	return film, true, nil
}

// Casting is the outcome of linking a film to an actor.
type Casting struct {
	Actor       model.Actor     `json:"actor"`
	Film        model.Film      `json:"film"`
	FilmActor   model.FilmActor `json:"film_actor"`
	FilmCreated bool            `json:"film_created"`
}

// AddFilmForActor links the film (title, year) to an existing actor,
// creating the film if needed.  It is a Conflict when the actor already
// has a film with the same title, whatever that film's year: titles are
// compared per actor only, never across the whole catalog.
func (in *Integrity) AddFilmForActor(ctx context.Context, tx repository.Tx, ref ActorRef, f model.FilmFields) (*Casting, error) {
	actor, err := ref.resolve(ctx, tx)
	if err != nil {
		return nil, err
	}

	current, err := tx.FilmsByActor(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("films of actor: %w", err)
	}
	for _, film := range current {
		if film.Title == f.Title {
			return nil, conflict(nil, "actor already has a film %q in %d", f.Title, f.Year)
		}
	}

	film, created, err := in.FindOrCreateFilm(ctx, tx, f)
	if err != nil {
		return nil, err
	}

	link := model.FilmActor{ID: in.newID(), FilmID: film.ID, ActorID: actor.ID}
	if err := tx.CreateFilmActor(ctx, &link); err != nil {
		return nil, err
	}
	return &Casting{Actor: *actor, Film: *film, FilmActor: link, FilmCreated: created}, nil
}

// UpdateActor replaces all three fields of the actor.  The uniqueness
// check looks at every actor including the one being updated, so
// submitting the actor's current values unchanged is a Conflict.
func (in *Integrity) UpdateActor(ctx context.Context, tx repository.Tx, id uuid.UUID, f model.ActorFields) (*model.Actor, error) {
	actor, err := ActorByID(id).resolve(ctx, tx)
	if err != nil {
		return nil, err
	}

	switch _, err := tx.FindActor(ctx, f); {
	case err == nil:
		return nil, conflict(nil, "actor %q with age %d already exists", f.FirstName+" "+f.LastName, f.Age)
	case !errors.Is(err, repository.ErrActorNotFound):
		return nil, fmt.Errorf("find actor: %w", err)
	}

	actor.Apply(f)
	if err := tx.UpdateActor(ctx, actor); err != nil {
		return nil, err
	}
	return actor, nil
}

// UpdateFilm replaces title, description and year of the film.  As with
// UpdateActor the (title, year) check does not skip the film itself.
func (in *Integrity) UpdateFilm(ctx context.Context, tx repository.Tx, id uuid.UUID, f model.FilmFields) (*model.Film, error) {
	film, err := FilmByID(id).resolve(ctx, tx)
	if err != nil {
		return nil, err
	}

	switch _, err := tx.FindFilm(ctx, f.Title, f.Year); {
	case err == nil:
		return nil, conflict(nil, "film %q from %d already exists", f.Title, f.Year)
	case !errors.Is(err, repository.ErrFilmNotFound):
		return nil, fmt.Errorf("find film: %w", err)
	}

	film.Apply(f)
	if err := tx.UpdateFilm(ctx, film); err != nil {
		return nil, err
	}
	return film, nil
}

// DeleteFilm removes the film and every association pointing at it.
// Actors are left alone even if this was their last film.
func (in *Integrity) DeleteFilm(ctx context.Context, tx repository.Tx, id uuid.UUID) (*model.Film, error) {
	film, err := FilmByID(id).resolve(ctx, tx)
	if err != nil {
		return nil, err
	}
	n, err := tx.DeleteFilmActorsByFilm(ctx, film.ID)
	if err != nil {
		return nil, err
	}
	if err := tx.DeleteFilm(ctx, film.ID); err != nil {
		return nil, err
	}
	in.log.Debug("film deleted", zap.Stringer("film_id", film.ID), zap.Int64("associations", n))
	return film, nil
}

// DeleteFilmActor removes one association.  The film and the actor both
// survive, even when the film is left without actors.
func (in *Integrity) DeleteFilmActor(ctx context.Context, tx repository.Tx, filmID, actorID uuid.UUID) (*model.FilmActor, error) {
	if _, err := ActorByID(actorID).resolve(ctx, tx); err != nil {
		return nil, err
	}
	link, err := tx.GetFilmActor(ctx, filmID, actorID)
	if errors.Is(err, repository.ErrFilmActorNotFound) {
		return nil, notFound("film with id %q not found for actor with id %q", filmID, actorID)
	}
	if err != nil {
		return nil, fmt.Errorf("load film actor: %w", err)
	}
	if err := tx.DeleteFilmActor(ctx, link.ID); err != nil {
		return nil, err
	}
	return link, nil
}

// ActorProfile is an actor together with the films it appears in.
type ActorProfile struct {
	model.Actor
	Films []model.Film `json:"films"`
}

// FilmProfile is a film together with its cast.  Rating is filled in by
// Catalog when the rating service knows the title.
type FilmProfile struct {
	model.Film
	Actors []model.Actor `json:"actors"`
	Rating *rating.Movie `json:"rating,omitempty"`
}

// ActorDetail loads the actor and its films.
func (in *Integrity) ActorDetail(ctx context.Context, tx repository.Tx, ref ActorRef) (*ActorProfile, error) {
	actor, err := ref.resolve(ctx, tx)
	if err != nil {
		return nil, err
	}
	films, err := tx.FilmsByActor(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("films of actor: %w", err)
	}
	return &ActorProfile{Actor: *actor, Films: films}, nil
}

// FilmDetail loads the film and its actors.
func (in *Integrity) FilmDetail(ctx context.Context, tx repository.Tx, ref FilmRef) (*FilmProfile, error) {
	film, err := ref.resolve(ctx, tx)
	if err != nil {
		return nil, err
	}
	actors, err := tx.ActorsByFilm(ctx, film.ID)
	if err != nil {
		return nil, fmt.Errorf("actors of film: %w", err)
	}
	return &FilmProfile{Film: *film, Actors: actors}, nil
}
