package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/iliyamo/film-catalog/internal/model"
	"github.com/iliyamo/film-catalog/internal/repository"
)

func (t *tx) GetActor(_ context.Context, id uuid.UUID) (*model.Actor, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	a, ok := t.work.actors[id]
	if !ok {
		return nil, repository.ErrActorNotFound
	}
	return &a, nil
}

func (t *tx) FindActor(_ context.Context, f model.ActorFields) (*model.Actor, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	for _, a := range t.work.actors {
		if a.Fields() == f {
			return &a, nil
		}
	}
	return nil, repository.ErrActorNotFound
}

func (t *tx) ListActors(_ context.Context) ([]model.Actor, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	out := make([]model.Actor, 0, len(t.work.actors))
	for _, a := range t.work.actors {
		out = append(out, a)
	}
	sortActors(out)
	return out, nil
}

func (t *tx) CreateActor(_ context.Context, a *model.Actor) error {
	if err := t.check(); err != nil {
		return err
	}
	if err := actorConstraints(a); err != nil {
		return err
	}
	if _, ok := t.work.actors[a.ID]; ok {
		return fmt.Errorf("%w: actors.PRIMARY", repository.ErrDuplicate)
	}
	if t.actorTripleTaken(a) {
		return fmt.Errorf("%w: unique_actor", repository.ErrDuplicate)
	}
	t.work.actors[a.ID] = *a
	return nil
}

func (t *tx) UpdateActor(_ context.Context, a *model.Actor) error {
	if err := t.check(); err != nil {
		return err
	}
	if _, ok := t.work.actors[a.ID]; !ok {
		return repository.ErrActorNotFound
	}
	if err := actorConstraints(a); err != nil {
		return err
	}
	if t.actorTripleTaken(a) {
		return fmt.Errorf("%w: unique_actor", repository.ErrDuplicate)
	}
	t.work.actors[a.ID] = *a
	return nil
}

func (t *tx) DeleteActor(_ context.Context, id uuid.UUID) error {
	if err := t.check(); err != nil {
		return err
	}
	if _, ok := t.work.actors[id]; !ok {
		return repository.ErrActorNotFound
	}
	for _, fa := range t.work.filmActors {
		if fa.ActorID == id {
			return fmt.Errorf("%w: film_actors.actor_id references actor %s", repository.ErrConstraint, id)
		}
	}
	delete(t.work.actors, id)
	return nil
}

// actorTripleTaken reports whether another row already holds a's triple.
func (t *tx) actorTripleTaken(a *model.Actor) bool {
	for id, other := range t.work.actors {
		if id != a.ID && other.Fields() == a.Fields() {
			return true
		}
	}
	return false
}

func (t *tx) GetFilm(_ context.Context, id uuid.UUID) (*model.Film, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	f, ok := t.work.films[id]
	if !ok {
		return nil, repository.ErrFilmNotFound
	}
	return &f, nil
}

func (t *tx) FindFilm(_ context.Context, title string, year int) (*model.Film, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	for _, f := range t.work.films {
		if f.Title == title && f.Year == year {
			return &f, nil
		}
	}
	return nil, repository.ErrFilmNotFound
}

func (t *tx) ListFilms(_ context.Context) ([]model.Film, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	out := make([]model.Film, 0, len(t.work.films))
	for _, f := range t.work.films {
		out = append(out, f)
	}
	sortFilms(out)
	return out, nil
}

func (t *tx) CreateFilm(_ context.Context, f *model.Film) error {
	if err := t.check(); err != nil {
		return err
	}
	if err := filmConstraints(f); err != nil {
		return err
	}
	if _, ok := t.work.films[f.ID]; ok {
		return fmt.Errorf("%w: films.PRIMARY", repository.ErrDuplicate)
	}
	if t.filmPairTaken(f) {
		return fmt.Errorf("%w: unique_film", repository.ErrDuplicate)
	}
	t.work.films[f.ID] = *f
	return nil
}

func (t *tx) UpdateFilm(_ context.Context, f *model.Film) error {
	if err := t.check(); err != nil {
		return err
	}
	if _, ok := t.work.films[f.ID]; !ok {
		return repository.ErrFilmNotFound
	}
	if err := filmConstraints(f); err != nil {
		return err
	}
	if t.filmPairTaken(f) {
		return fmt.Errorf("%w: unique_film", repository.ErrDuplicate)
	}
	t.work.films[f.ID] = *f
	return nil
}

func (t *tx) DeleteFilm(_ context.Context, id uuid.UUID) error {
	if err := t.check(); err != nil {
		return err
	}
	if _, ok := t.work.films[id]; !ok {
		return repository.ErrFilmNotFound
	}
	for _, fa := range t.work.filmActors {
		if fa.FilmID == id {
			return fmt.Errorf("%w: film_actors.film_id references film %s", repository.ErrConstraint, id)
		}
	}
	delete(t.work.films, id)
	return nil
}

func (t *tx) filmPairTaken(f *model.Film) bool {
	for id, other := range t.work.films {
		if id != f.ID && other.Title == f.Title && other.Year == f.Year {
			return true
		}
	}
	return false
}

func (t *tx) CreateFilmActor(_ context.Context, fa *model.FilmActor) error {
	if err := t.check(); err != nil {
		return err
	}
	if _, ok := t.work.films[fa.FilmID]; !ok {
		return fmt.Errorf("%w: film %s does not exist", repository.ErrConstraint, fa.FilmID)
	}
	if _, ok := t.work.actors[fa.ActorID]; !ok {
		return fmt.Errorf("%w: actor %s does not exist", repository.ErrConstraint, fa.ActorID)
	}
	if _, ok := t.work.filmActors[fa.ID]; ok {
		return fmt.Errorf("%w: film_actors.PRIMARY", repository.ErrDuplicate)
	}
	for _, other := range t.work.filmActors {
		if other.FilmID == fa.FilmID && other.ActorID == fa.ActorID {
			return fmt.Errorf("%w: film_actor_combines_unique", repository.ErrDuplicate)
		}
	}
	t.work.filmActors[fa.ID] = *fa
	return nil
}

func (t *tx) GetFilmActor(_ context.Context, filmID, actorID uuid.UUID) (*model.FilmActor, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	for _, fa := range t.work.filmActors {
		if fa.FilmID == filmID && fa.ActorID == actorID {
			return &fa, nil
		}
	}
	return nil, repository.ErrFilmActorNotFound
}

func (t *tx) DeleteFilmActor(_ context.Context, id uuid.UUID) error {
	if err := t.check(); err != nil {
		return err
	}
	if _, ok := t.work.filmActors[id]; !ok {
		return repository.ErrFilmActorNotFound
	}
	delete(t.work.filmActors, id)
	return nil
}

func (t *tx) DeleteFilmActorsByActor(_ context.Context, actorID uuid.UUID) (int64, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	var n int64
	for id, fa := range t.work.filmActors {
		if fa.ActorID == actorID {
			delete(t.work.filmActors, id)
			n++
		}
	}
	return n, nil
}

func (t *tx) DeleteFilmActorsByFilm(_ context.Context, filmID uuid.UUID) (int64, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	var n int64
	for id, fa := range t.work.filmActors {
		if fa.FilmID == filmID {
			delete(t.work.filmActors, id)
			n++
		}
	}
	return n, nil
}

func (t *tx) FilmsByActor(_ context.Context, actorID uuid.UUID) ([]model.Film, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	out := []model.Film{}
	for _, fa := range t.work.filmActors {
		if fa.ActorID == actorID {
			out = append(out, t.work.films[fa.FilmID])
		}
	}
	sortFilms(out)
	return out, nil
}

func (t *tx) ActorsByFilm(_ context.Context, filmID uuid.UUID) ([]model.Actor, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	out := []model.Actor{}
	for _, fa := range t.work.filmActors {
		if fa.FilmID == filmID {
			out = append(out, t.work.actors[fa.ActorID])
		}
	}
	sortActors(out)
	return out, nil
}

func (t *tx) CountActorsByFilm(_ context.Context, filmID uuid.UUID) (int, error) {
	if err := t.check(); err != nil {
		return 0, err
	}
	n := 0
	for _, fa := range t.work.filmActors {
		if fa.FilmID == filmID {
			n++
		}
	}
	return n, nil
}

// actorConstraints mirrors check_length_fname, check_length_lname and
// check_age.
func actorConstraints(a *model.Actor) error {
	if err := a.Fields().Validate(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrConstraint, err)
	}
	return nil
}

// filmConstraints mirrors check_length_title, check_length_description
// and check_year.
func filmConstraints(f *model.Film) error {
	if err := f.Fields().Validate(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrConstraint, err)
	}
	return nil
}

func sortActors(as []model.Actor) {
	sort.Slice(as, func(i, j int) bool {
		if as[i].LastName != as[j].LastName {
			return as[i].LastName < as[j].LastName
		}
		if as[i].FirstName != as[j].FirstName {
			return as[i].FirstName < as[j].FirstName
		}
		return as[i].Age < as[j].Age
	})
}

func sortFilms(fs []model.Film) {
	sort.Slice(fs, func(i, j int) bool {
		if fs[i].Title != fs[j].Title {
			return fs[i].Title < fs[j].Title
		}
		return fs[i].Year < fs[j].Year
	})
}
