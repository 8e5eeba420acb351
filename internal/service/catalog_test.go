package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/film-catalog/internal/model"
	"github.com/iliyamo/film-catalog/internal/queue"
	"github.com/iliyamo/film-catalog/internal/rating"
	"github.com/iliyamo/film-catalog/internal/repository"
	"github.com/iliyamo/film-catalog/internal/repository/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.CatalogEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.CatalogEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []queue.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type stubRatings map[string]*rating.Movie

func (s stubRatings) Lookup(_ context.Context, title string) (*rating.Movie, bool) {
	m, ok := s[title]
	return m, ok
}

// blockingRatings never answers before the context ends.
type blockingRatings struct{}

func (blockingRatings) Lookup(ctx context.Context, _ string) (*rating.Movie, bool) {
	<-ctx.Done()
	return nil, false
}

// faultyStore wraps the memory store and lets a test break one step of
// the unit of work.
type faultyStore struct {
	*memory.Store
	failCreateLink error
	failCommit     error
}

func (s *faultyStore) Begin(ctx context.Context) (repository.Tx, error) {
	tx, err := s.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &faultyTx{Tx: tx, store: s}, nil
}

type faultyTx struct {
	repository.Tx
	store *faultyStore
}

func (t *faultyTx) CreateFilmActor(ctx context.Context, fa *model.FilmActor) error {
	if t.store.failCreateLink != nil {
		return t.store.failCreateLink
	}
	return t.Tx.CreateFilmActor(ctx, fa)
}

func (t *faultyTx) Commit() error {
	if t.store.failCommit != nil {
		_ = t.Tx.Rollback()
		return t.store.failCommit
	}
	return t.Tx.Commit()
}

func newCatalog(t *testing.T, opts ...Option) (*Catalog, *memory.Store, *recordingPublisher) {
	t.Helper()
	store := memory.NewStore()
	pub := &recordingPublisher{}
	opts = append([]Option{WithEvents(pub)}, opts...)
	return NewCatalog(store, zap.NewNop(), opts...), store, pub
}

func TestTomHanksForrestGump(t *testing.T) {
	c, store, _ := newCatalog(t)
	ctx := context.Background()

	tom, created, err := c.FindOrCreateActor(ctx, model.ActorFields{FirstName: "Tom", LastName: "Hanks", Age: 60})
	require.NoError(t, err)
	require.True(t, created)

	gump := model.FilmFields{Title: "Forrest Gump", Description: "Life is like a box of chocolates", Year: 1994}
	casting, err := c.AddFilmForActor(ctx, ActorByID(tom.ID), gump)
	require.NoError(t, err)
	assert.True(t, casting.FilmCreated)

	snap := store.Snapshot()
	require.Len(t, snap.Films, 1)
	require.Len(t, snap.FilmActors, 1)

	_, err = c.AddFilmForActor(ctx, ActorByID(tom.ID), gump)
	require.ErrorIs(t, err, ErrConflict)
	assert.Empty(t, cmp.Diff(snap, store.Snapshot()))
}

func TestCatalogRollsBackFailedUnitOfWork(t *testing.T) {
	mem := memory.NewStore()
	store := &faultyStore{Store: mem}
	pub := &recordingPublisher{}
	c := NewCatalog(store, zap.NewNop(), WithEvents(pub))
	ctx := context.Background()

	a, _, err := c.FindOrCreateActor(ctx, john)
	require.NoError(t, err)
	before := mem.Snapshot()
	pub.events = nil

	boom := errors.New("disk full")
	store.failCreateLink = boom
	_, err = c.AddFilmForActor(ctx, ActorByID(a.ID), film("Big", 1988))
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrNotFound)

	// The film created earlier in the same unit of work is gone too.
	assert.Empty(t, cmp.Diff(before, mem.Snapshot()))
	assert.Empty(t, pub.events)
}

func TestCatalogCommitDuplicateIsConflict(t *testing.T) {
	mem := memory.NewStore()
	store := &faultyStore{Store: mem, failCommit: fmt.Errorf("%w: unique_actor", repository.ErrDuplicate)}
	c := NewCatalog(store, zap.NewNop())

	_, _, err := c.FindOrCreateActor(context.Background(), john)
	require.ErrorIs(t, err, ErrConflict)
	require.ErrorIs(t, err, repository.ErrDuplicate)
	assert.Empty(t, mem.Snapshot().Actors)

	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindConflict, e.Kind)
}

func TestCatalogConstraintIsStorageFailure(t *testing.T) {
	c, _, _ := newCatalog(t)

	_, _, err := c.FindOrCreateActor(context.Background(), model.ActorFields{FirstName: "Too", LastName: "Old", Age: 101})
	require.ErrorIs(t, err, repository.ErrConstraint)
	_, ok := AsError(err)
	assert.False(t, ok)
}

func TestCatalogEvents(t *testing.T) {
	c, _, pub := newCatalog(t)
	ctx := context.Background()

	a, _, err := c.FindOrCreateActor(ctx, john)
	require.NoError(t, err)
	_, _, err = c.FindOrCreateActor(ctx, john)
	require.NoError(t, err)
	b, _, err := c.FindOrCreateActor(ctx, jane)
	require.NoError(t, err)

	big, err := c.AddFilmForActor(ctx, ActorByID(a.ID), film("Big", 1988))
	require.NoError(t, err)
	_, err = c.AddFilmForActor(ctx, ActorByID(b.ID), film("Big", 1988))
	require.NoError(t, err)
	solo, err := c.AddFilmForActor(ctx, ActorByID(a.ID), film("Splash", 1984))
	require.NoError(t, err)

	_, err = c.UpdateFilm(ctx, big.Film.ID, film("Bigger", 1988))
	require.NoError(t, err)
	_, err = c.UpdateActor(ctx, b.ID, model.ActorFields{FirstName: "Janet", LastName: "Roe", Age: 26})
	require.NoError(t, err)

	_, err = c.UpdateActor(ctx, b.ID, model.ActorFields{FirstName: "Janet", LastName: "Roe", Age: 26})
	require.ErrorIs(t, err, ErrConflict)

	_, err = c.DeleteActor(ctx, a.ID)
	require.NoError(t, err)
	require.NoError(t, c.DeleteFilmActor(ctx, big.Film.ID, b.ID))
	require.NoError(t, c.DeleteFilm(ctx, big.Film.ID))

	assert.Equal(t, []queue.EventType{
		queue.ActorCreated,
		queue.ActorCreated,
		queue.FilmCreated, queue.FilmActorCreated,
		queue.FilmActorCreated,
		queue.FilmCreated, queue.FilmActorCreated,
		queue.FilmUpdated,
		queue.ActorUpdated,
		queue.ActorDeleted,
		queue.FilmActorDeleted,
		queue.FilmDeleted,
	}, pub.types())

	byType := func(typ queue.EventType) []queue.CatalogEvent {
		var out []queue.CatalogEvent
		for _, ev := range pub.events {
			if ev.Type == typ {
				out = append(out, ev)
			}
		}
		return out
	}

	updated := byType(queue.FilmUpdated)[0]
	assert.ElementsMatch(t, []string{"Bigger", "Big"}, updated.Titles)

	deleted := byType(queue.ActorDeleted)[0]
	assert.Equal(t, a.ID, *deleted.ActorID)
	assert.Equal(t, []string{"Splash"}, deleted.Titles)
	assert.Equal(t, []uuid.UUID{solo.Film.ID}, deleted.CascadedFilmIDs)
	assert.False(t, deleted.OccurredAt.IsZero())

	assert.Equal(t, []string{"Bigger"}, byType(queue.FilmDeleted)[0].Titles)
}

func TestCatalogPublishFailureDoesNotFailOperation(t *testing.T) {
	c, store, pub := newCatalog(t)
	pub.err = errors.New("broker down")

	_, created, err := c.FindOrCreateActor(context.Background(), john)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, store.Snapshot().Actors, 1)
}

// stalledPublisher blocks until its context gives up, like a publish to
// a broker that never answers.
type stalledPublisher struct{ errs chan error }

func (p stalledPublisher) Publish(ctx context.Context, _ queue.CatalogEvent) error {
	<-ctx.Done()
	p.errs <- ctx.Err()
	return ctx.Err()
}

func TestCatalogPublishIsBounded(t *testing.T) {
	pub := stalledPublisher{errs: make(chan error, 1)}
	c := NewCatalog(memory.NewStore(), zap.NewNop(), WithEvents(pub), WithPublishTimeout(50*time.Millisecond))

	start := time.Now()
	_, created, err := c.FindOrCreateActor(context.Background(), john)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Less(t, time.Since(start), time.Second)
	assert.ErrorIs(t, <-pub.errs, context.DeadlineExceeded)
}

func TestFilmDetailRating(t *testing.T) {
	ratings := stubRatings{"Big": {ID: 1, Name: "Big", Rating: rating.Scores{IMDB: 7.3}}}
	c, _, _ := newCatalog(t, WithRatings(ratings))
	ctx := context.Background()

	a, _, err := c.FindOrCreateActor(ctx, john)
	require.NoError(t, err)
	_, err = c.AddFilmForActor(ctx, ActorByID(a.ID), film("Big", 1988))
	require.NoError(t, err)
	_, err = c.AddFilmForActor(ctx, ActorByID(a.ID), film("Unrated", 1999))
	require.NoError(t, err)

	p, err := c.FilmDetail(ctx, FilmByTitle("Big", 1988))
	require.NoError(t, err)
	require.NotNil(t, p.Rating)
	assert.InDelta(t, 7.3, p.Rating.Rating.IMDB, 0.001)
	assert.Equal(t, []model.Actor{*a}, p.Actors)

	p, err = c.FilmDetail(ctx, FilmByTitle("Unrated", 1999))
	require.NoError(t, err)
	assert.Nil(t, p.Rating)
}

func TestFilmDetailRatingTimeout(t *testing.T) {
	c, _, _ := newCatalog(t, WithRatings(blockingRatings{}), WithRatingTimeout(20*time.Millisecond))
	ctx := context.Background()

	f, _, err := c.FindOrCreateFilm(ctx, film("Big", 1988))
	require.NoError(t, err)

	start := time.Now()
	p, err := c.FilmDetail(ctx, FilmByID(f.ID))
	require.NoError(t, err)
	assert.Nil(t, p.Rating)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestCatalogLists(t *testing.T) {
	c, _, _ := newCatalog(t)
	ctx := context.Background()

	actors, err := c.ListActors(ctx)
	require.NoError(t, err)
	assert.Empty(t, actors)

	b, _, err := c.FindOrCreateActor(ctx, jane)
	require.NoError(t, err)
	a, _, err := c.FindOrCreateActor(ctx, john)
	require.NoError(t, err)
	_, _, err = c.FindOrCreateFilm(ctx, film("Splash", 1984))
	require.NoError(t, err)
	_, _, err = c.FindOrCreateFilm(ctx, film("Big", 1988))
	require.NoError(t, err)

	actors, err = c.ListActors(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Actor{*a, *b}, actors)

	films, err := c.ListFilms(ctx)
	require.NoError(t, err)
	require.Len(t, films, 2)
	assert.Equal(t, "Big", films[0].Title)

	p, err := c.ActorDetail(ctx, ActorByFields(jane))
	require.NoError(t, err)
	assert.Equal(t, b.ID, p.ID)
	assert.Empty(t, p.Films)
}

func TestErrorKinds(t *testing.T) {
	err := notFound("actor with id %q not found", "x")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.Equal(t, `actor with id "x" not found`, err.Error())

	wrapped := fmt.Errorf("outer: %w", conflict(repository.ErrDuplicate, "taken"))
	assert.ErrorIs(t, wrapped, ErrConflict)
	assert.ErrorIs(t, wrapped, repository.ErrDuplicate)
	assert.Equal(t, "outer: taken: duplicate entry", wrapped.Error())
	assert.Equal(t, "NOT_FOUND", ErrNotFound.Error())
}
