package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/film-catalog/internal/model"
	"github.com/iliyamo/film-catalog/internal/queue"
	"github.com/iliyamo/film-catalog/internal/rating"
	"github.com/iliyamo/film-catalog/internal/repository"
)

// DefaultRatingTimeout bounds a rating lookup when none is configured.
const DefaultRatingTimeout = 3 * time.Second

// DefaultPublishTimeout bounds publishing one event after a commit.
const DefaultPublishTimeout = 2 * time.Second

// Catalog runs every Integrity operation in its own unit of work.  It
// commits on success and rolls back on any error, reports unique key
// violations (including ones only detected at commit) as Conflict,
// publishes an event after each committed change and adds ratings to
// film details.
type Catalog struct {
	store          repository.Store
	rules          *Integrity
	ratings        rating.Lookup
	events         queue.Publisher
	ratingTimeout  time.Duration
	publishTimeout time.Duration
	log            *zap.Logger
	now            func() time.Time
}

// Option customises a Catalog.
type Option func(*Catalog)

// WithRatings sets the rating lookup used by FilmDetail.
func WithRatings(l rating.Lookup) Option { return func(c *Catalog) { c.ratings = l } }

// WithEvents sets the publisher notified after each committed change.
func WithEvents(p queue.Publisher) Option { return func(c *Catalog) { c.events = p } }

// WithRatingTimeout bounds each rating lookup.
func WithRatingTimeout(d time.Duration) Option { return func(c *Catalog) { c.ratingTimeout = d } }

// WithPublishTimeout bounds how long a committed write waits on its event.
// Non-positive values keep DefaultPublishTimeout.
func WithPublishTimeout(d time.Duration) Option {
	return func(c *Catalog) {
		if d > 0 {
			c.publishTimeout = d
		}
	}
}

// NewCatalog returns a Catalog over store.  Without options ratings are
// never looked up and events are dropped.
func NewCatalog(store repository.Store, log *zap.Logger, opts ...Option) *Catalog {
	c := &Catalog{
		store:          store,
		rules:          NewIntegrity(log),
		ratings:        rating.Nop{},
		events:         queue.NopPublisher{},
		ratingTimeout:  DefaultRatingTimeout,
		publishTimeout: DefaultPublishTimeout,
		log:            log.Named("catalog"),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// withinTx runs fn in a fresh unit of work.
func (c *Catalog) withinTx(ctx context.Context, op string, fn func(tx repository.Tx) error) error {
	tx, err := c.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				c.log.Error("rollback failed", zap.String("op", op), zap.Error(rbErr))
			}
		}
	}()

	if err := fn(tx); err != nil {
		return normalize(op, err)
	}
	if err := tx.Commit(); err != nil {
		return normalize(op, fmt.Errorf("commit: %w", err))
	}
	committed = true
	return nil
}

// normalize keeps catalog errors as they are and turns unique key
// violations from the store into Conflict.  Everything else is a storage
// failure.
func normalize(op string, err error) error {
	if _, ok := AsError(err); ok {
		return err
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return conflict(err, "%s conflicts with an existing record", op)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (c *Catalog) publish(ctx context.Context, ev queue.CatalogEvent) {
	ev.OccurredAt = c.now().UTC()
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.publishTimeout)
	defer cancel()
	if err := c.events.Publish(ctx, ev); err != nil {
		c.log.Warn("event not published", zap.String("type", string(ev.Type)), zap.Error(err))
	}
}

// FindOrCreateActor returns the actor with the given fields, creating it
// if needed.  The bool reports whether it was created.
func (c *Catalog) FindOrCreateActor(ctx context.Context, f model.ActorFields) (*model.Actor, bool, error) {
	var (
		actor   *model.Actor
		created bool
	)
	err := c.withinTx(ctx, "create actor", func(tx repository.Tx) error {
		var err error
		actor, created, err = c.rules.FindOrCreateActor(ctx, tx, f)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		c.publish(ctx, queue.CatalogEvent{Type: queue.ActorCreated, ActorID: &actor.ID})
	}
	return actor, created, nil
}

// FindOrCreateFilm returns the film with the given title and year,
// creating it if needed.  The bool reports whether it was created.
func (c *Catalog) FindOrCreateFilm(ctx context.Context, f model.FilmFields) (*model.Film, bool, error) {
	var (
		film    *model.Film
		created bool
	)
	err := c.withinTx(ctx, "create film", func(tx repository.Tx) error {
		var err error
		film, created, err = c.rules.FindOrCreateFilm(ctx, tx, f)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		c.publish(ctx, queue.CatalogEvent{Type: queue.FilmCreated, FilmID: &film.ID, Titles: []string{film.Title}})
	}
	return film, created, nil
}

// AddFilmForActor links a film to an existing actor, creating the film
// if needed.
func (c *Catalog) AddFilmForActor(ctx context.Context, ref ActorRef, f model.FilmFields) (*Casting, error) {
	var casting *Casting
	err := c.withinTx(ctx, "add film for actor", func(tx repository.Tx) error {
		var err error
		casting, err = c.rules.AddFilmForActor(ctx, tx, ref, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	if casting.FilmCreated {
		c.publish(ctx, queue.CatalogEvent{Type: queue.FilmCreated, FilmID: &casting.Film.ID, Titles: []string{casting.Film.Title}})
	}
	c.publish(ctx, queue.CatalogEvent{
		Type:    queue.FilmActorCreated,
		ActorID: &casting.Actor.ID,
		FilmID:  &casting.Film.ID,
	})
	return casting, nil
}

// UpdateActor replaces the actor's fields.  Resubmitting the current
// values is a Conflict.
func (c *Catalog) UpdateActor(ctx context.Context, id uuid.UUID, f model.ActorFields) (*model.Actor, error) {
	var actor *model.Actor
	err := c.withinTx(ctx, "update actor", func(tx repository.Tx) error {
		var err error
		actor, err = c.rules.UpdateActor(ctx, tx, id, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	c.publish(ctx, queue.CatalogEvent{Type: queue.ActorUpdated, ActorID: &actor.ID})
	return actor, nil
}

// UpdateFilm replaces the film's fields.  Resubmitting the current title
// and year is a Conflict.
func (c *Catalog) UpdateFilm(ctx context.Context, id uuid.UUID, f model.FilmFields) (*model.Film, error) {
	var (
		film     *model.Film
		oldTitle string
	)
	err := c.withinTx(ctx, "update film", func(tx repository.Tx) error {
		if prev, err := tx.GetFilm(ctx, id); err == nil {
			oldTitle = prev.Title
		}
		var err error
		film, err = c.rules.UpdateFilm(ctx, tx, id, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	titles := []string{film.Title}
	if oldTitle != "" && oldTitle != film.Title {
		titles = append(titles, oldTitle)
	}
	c.publish(ctx, queue.CatalogEvent{Type: queue.FilmUpdated, FilmID: &film.ID, Titles: titles})
	return film, nil
}

// DeleteFilm removes the film and its associations.
func (c *Catalog) DeleteFilm(ctx context.Context, id uuid.UUID) error {
	var film *model.Film
	err := c.withinTx(ctx, "delete film", func(tx repository.Tx) error {
		var err error
		film, err = c.rules.DeleteFilm(ctx, tx, id)
		return err
	})
	if err != nil {
		return err
	}
	c.publish(ctx, queue.CatalogEvent{Type: queue.FilmDeleted, FilmID: &film.ID, Titles: []string{film.Title}})
	return nil
}

// DeleteFilmActor removes the association between a film and an actor.
func (c *Catalog) DeleteFilmActor(ctx context.Context, filmID, actorID uuid.UUID) error {
	err := c.withinTx(ctx, "delete film actor", func(tx repository.Tx) error {
		_, err := c.rules.DeleteFilmActor(ctx, tx, filmID, actorID)
		return err
	})
	if err != nil {
		return err
	}
	c.publish(ctx, queue.CatalogEvent{Type: queue.FilmActorDeleted, ActorID: &actorID, FilmID: &filmID})
	return nil
}

// DeleteActor removes the actor and every film left without actors.
func (c *Catalog) DeleteActor(ctx context.Context, id uuid.UUID) (*ActorDeletion, error) {
	var report *ActorDeletion
	err := c.withinTx(ctx, "delete actor", func(tx repository.Tx) error {
		var err error
		report, err = c.rules.DeleteActor(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	ev := queue.CatalogEvent{Type: queue.ActorDeleted, ActorID: &report.Actor.ID}
	for _, f := range report.Films {
		ev.Titles = append(ev.Titles, f.Title)
		ev.CascadedFilmIDs = append(ev.CascadedFilmIDs, f.ID)
	}
	c.publish(ctx, ev)
	return report, nil
}

// ListActors returns every actor ordered by name and age.
func (c *Catalog) ListActors(ctx context.Context) ([]model.Actor, error) {
	var out []model.Actor
	err := c.withinTx(ctx, "list actors", func(tx repository.Tx) error {
		var err error
		out, err = tx.ListActors(ctx)
		return err
	})
	return out, err
}

// ListFilms returns every film ordered by title and year.
func (c *Catalog) ListFilms(ctx context.Context) ([]model.Film, error) {
	var out []model.Film
	err := c.withinTx(ctx, "list films", func(tx repository.Tx) error {
		var err error
		out, err = tx.ListFilms(ctx)
		return err
	})
	return out, err
}

// ActorDetail returns the actor and its films.
func (c *Catalog) ActorDetail(ctx context.Context, ref ActorRef) (*ActorProfile, error) {
	var p *ActorProfile
	err := c.withinTx(ctx, "actor detail", func(tx repository.Tx) error {
		var err error
		p, err = c.rules.ActorDetail(ctx, tx, ref)
		return err
	})
	return p, err
}

// FilmDetail returns the film, its actors and, when the rating service
// knows the title, its rating.  The lookup runs after the unit of work
// has ended and a failed lookup only leaves Rating empty.
func (c *Catalog) FilmDetail(ctx context.Context, ref FilmRef) (*FilmProfile, error) {
	var p *FilmProfile
	err := c.withinTx(ctx, "film detail", func(tx repository.Tx) error {
		var err error
		p, err = c.rules.FilmDetail(ctx, tx, ref)
		return err
	})
	if err != nil {
		return nil, err
	}

	rctx, cancel := context.WithTimeout(ctx, c.ratingTimeout)
	defer cancel()
	if m, ok := c.ratings.Lookup(rctx, p.Title); ok {
		p.Rating = m
	}
	return p, nil
}
