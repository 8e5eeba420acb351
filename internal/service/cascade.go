package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/film-catalog/internal/model"
	"github.com/iliyamo/film-catalog/internal/repository"
)

// ActorDeletion reports what removing an actor took with it.
type ActorDeletion struct {
	Actor        model.Actor  `json:"actor"`
	Associations int64        `json:"removed_associations"`
	Films        []model.Film `json:"cascaded_films"`
}

// actorDeletion is the plan for removing one actor.  orphans are the
// films whose only actor is the one being removed; they are counted
// before any association is touched, because afterwards every film of
// the actor would look actor-less.
type actorDeletion struct {
	actor   model.Actor
	orphans []model.Film
}

// DeleteActor removes the actor, its associations, and every film that
// had no other actor.  The work is split into a census (plan) and the
// mutations (execute), which run in this order: associations, orphaned
// films, actor.
func (in *Integrity) DeleteActor(ctx context.Context, tx repository.Tx, id uuid.UUID) (*ActorDeletion, error) {
	plan, err := in.planActorDeletion(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	return in.executeActorDeletion(ctx, tx, plan)
}

func (in *Integrity) planActorDeletion(ctx context.Context, tx repository.Tx, id uuid.UUID) (*actorDeletion, error) {
	actor, err := ActorByID(id).resolve(ctx, tx)
	if err != nil {
		return nil, err
	}
	films, err := tx.FilmsByActor(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("films of actor: %w", err)
	}

	plan := &actorDeletion{actor: *actor}
	for _, film := range films {
		n, err := tx.CountActorsByFilm(ctx, film.ID)
		if err != nil {
			return nil, fmt.Errorf("count actors of film: %w", err)
		}
		if n == 1 {
			plan.orphans = append(plan.orphans, film)
		}
	}
	return plan, nil
}

func (in *Integrity) executeActorDeletion(ctx context.Context, tx repository.Tx, plan *actorDeletion) (*ActorDeletion, error) {
	n, err := tx.DeleteFilmActorsByActor(ctx, plan.actor.ID)
	if err != nil {
		return nil, err
	}
	for _, film := range plan.orphans {
		if err := tx.DeleteFilm(ctx, film.ID); err != nil {
			return nil, fmt.Errorf("cascade film %s: %w", film.ID, err)
		}
	}
	if err := tx.DeleteActor(ctx, plan.actor.ID); err != nil {
		return nil, err
	}

	in.log.Debug("actor deleted",
		zap.Stringer("actor_id", plan.actor.ID),
		zap.Int64("associations", n),
		zap.Int("cascaded_films", len(plan.orphans)))

	films := plan.orphans
	if films == nil {
		films = []model.Film{}
	}
	return &ActorDeletion{Actor: plan.actor, Associations: n, Films: films}, nil
}
