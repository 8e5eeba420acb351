// Package memory provides an in-memory transactional implementation of
// repository.Store.  It enforces the same unique keys, check constraints
// and foreign keys as the MySQL schema, so the catalog behaves identically
// against it.  Transactions are serialised: Begin blocks until the
// previous unit of work has committed or rolled back, and each Tx works
// on a private copy of the tables that replaces the shared state on
// commit.
package memory

import (
	"context"
	"database/sql"
	"sort"

	"github.com/google/uuid"

	"github.com/iliyamo/film-catalog/internal/model"
	"github.com/iliyamo/film-catalog/internal/repository"
)

type tables struct {
	actors     map[uuid.UUID]model.Actor
	films      map[uuid.UUID]model.Film
	filmActors map[uuid.UUID]model.FilmActor
}

func newTables() tables {
	return tables{
		actors:     map[uuid.UUID]model.Actor{},
		films:      map[uuid.UUID]model.Film{},
		filmActors: map[uuid.UUID]model.FilmActor{},
	}
}

func (t tables) clone() tables {
	out := tables{
		actors:     make(map[uuid.UUID]model.Actor, len(t.actors)),
		films:      make(map[uuid.UUID]model.Film, len(t.films)),
		filmActors: make(map[uuid.UUID]model.FilmActor, len(t.filmActors)),
	}
	for k, v := range t.actors {
		out.actors[k] = v
	}
	for k, v := range t.films {
		out.films[k] = v
	}
	for k, v := range t.filmActors {
		out.filmActors[k] = v
	}
	return out
}

// Store is the in-memory entity store.
type Store struct {
	sem   chan struct{} // one slot, held for the lifetime of an open Tx
	state tables
}

var _ repository.Store = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{sem: make(chan struct{}, 1), state: newTables()}
}

// Begin opens a unit of work.  It blocks while another one is open and
// gives up when ctx is done first.
func (s *Store) Begin(ctx context.Context) (repository.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &tx{store: s, work: s.state.clone()}, nil
}

// Snapshot is a full copy of the three tables sorted by primary key.
type Snapshot struct {
	Actors     []model.Actor
	Films      []model.Film
	FilmActors []model.FilmActor
}

// Snapshot returns the committed contents of every table.  It must not be
// called while a Tx is open on the same goroutine.
func (s *Store) Snapshot() Snapshot {
	s.sem <- struct{}{}
	defer func() { <-s.sem }()

	snap := Snapshot{
		Actors:     make([]model.Actor, 0, len(s.state.actors)),
		Films:      make([]model.Film, 0, len(s.state.films)),
		FilmActors: make([]model.FilmActor, 0, len(s.state.filmActors)),
	}
	for _, a := range s.state.actors {
		snap.Actors = append(snap.Actors, a)
	}
	for _, f := range s.state.films {
		snap.Films = append(snap.Films, f)
	}
	for _, fa := range s.state.filmActors {
		snap.FilmActors = append(snap.FilmActors, fa)
	}
	sort.Slice(snap.Actors, func(i, j int) bool { return snap.Actors[i].ID.String() < snap.Actors[j].ID.String() })
	sort.Slice(snap.Films, func(i, j int) bool { return snap.Films[i].ID.String() < snap.Films[j].ID.String() })
	sort.Slice(snap.FilmActors, func(i, j int) bool { return snap.FilmActors[i].ID.String() < snap.FilmActors[j].ID.String() })
	return snap
}

type tx struct {
	store *Store
	work  tables
	done  bool
}

func (t *tx) Commit() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.store.state = t.work
	<-t.store.sem
	return nil
}

func (t *tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	<-t.store.sem
	return nil
}

func (t *tx) check() error {
	if t.done {
		return sql.ErrTxDone
	}
	return nil
}
