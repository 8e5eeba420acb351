package model

import "github.com/google/uuid"

// FilmActor links one actor to one film.  It corresponds to a row in the
// `film_actors` table.  Both references are required and the
// (FilmID, ActorID) pair is unique: an actor appears in a film at most
// once.
type FilmActor struct {
	ID      uuid.UUID `json:"id"`       // film_actors.id
	FilmID  uuid.UUID `json:"film_id"`  // film_actors.film_id -> films.id
	ActorID uuid.UUID `json:"actor_id"` // film_actors.actor_id -> actors.id
}
