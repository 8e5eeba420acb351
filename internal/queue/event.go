// Package queue defines the catalog events exchanged over RabbitMQ, the
// publisher used after each committed change and the background
// consumer that reacts to them.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// EventType names what happened to the catalog.
type EventType string

const (
	ActorCreated     EventType = "actor.created"
	ActorUpdated     EventType = "actor.updated"
	ActorDeleted     EventType = "actor.deleted"
	FilmCreated      EventType = "film.created"
	FilmUpdated      EventType = "film.updated"
	FilmDeleted      EventType = "film.deleted"
	FilmActorCreated EventType = "film_actor.created"
	FilmActorDeleted EventType = "film_actor.deleted"
)

// DefaultQueue is the durable queue catalog events are published to.
const DefaultQueue = "catalog.events"

// CatalogEvent is published once a change has been committed.  Titles
// lists every film title whose cached rating may now be stale (a renamed
// film carries both the old and the new title); CascadedFilmIDs lists the
// films removed together with an actor.
type CatalogEvent struct {
	Type            EventType   `json:"type"`
	ActorID         *uuid.UUID  `json:"actor_id,omitempty"`
	FilmID          *uuid.UUID  `json:"film_id,omitempty"`
	Titles          []string    `json:"titles,omitempty"`
	CascadedFilmIDs []uuid.UUID `json:"cascaded_film_ids,omitempty"`
	OccurredAt      time.Time   `json:"occurred_at"`
}
