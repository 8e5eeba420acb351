package model

import "github.com/google/uuid"

// Actor represents a performer as stored in the `actors` table.  The
// (FirstName, LastName, Age) triple is unique across the table; the
// store rejects a second row with the same triple.
//
// Fields:
//
//	ID        – random UUID primary key.
//	FirstName – given name, at most MaxFirstNameLen characters.
//	LastName  – family name, at most MaxLastNameLen characters.
//	Age       – age in years, between MinAge and MaxAge inclusive.
type Actor struct {
	ID        uuid.UUID `json:"id"`         // actors.id
	FirstName string    `json:"first_name"` // actors.first_name
	LastName  string    `json:"last_name"`  // actors.last_name
	Age       int       `json:"age"`        // actors.age
}

// Column limits mirrored by the CHECK constraints of the actors table.
const (
	MaxFirstNameLen = 19
	MaxLastNameLen  = 24
	MinAge          = 1
	MaxAge          = 100
)

// ActorFields holds the user-editable part of an actor.  It is the
// input of create and update operations, which always replace all three
// fields together.
type ActorFields struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Age       int    `json:"age"`
}

// Fields returns the editable part of the actor.
func (a Actor) Fields() ActorFields {
	return ActorFields{FirstName: a.FirstName, LastName: a.LastName, Age: a.Age}
}

// Apply overwrites the editable fields of the actor in place.  The ID is
// left untouched.
func (a *Actor) Apply(f ActorFields) {
	a.FirstName = f.FirstName
	a.LastName = f.LastName
	a.Age = f.Age
}

// Validate checks the column limits.  A nil return means the store will
// accept the values as far as its check constraints are concerned.
func (f ActorFields) Validate() error {
	if f.FirstName == "" {
		return &ValidationError{Field: "first_name", Message: "is required"}
	}
	if runeLen(f.FirstName) > MaxFirstNameLen {
		return &ValidationError{Field: "first_name", Message: tooLong(MaxFirstNameLen)}
	}
	if f.LastName == "" {
		return &ValidationError{Field: "last_name", Message: "is required"}
	}
	if runeLen(f.LastName) > MaxLastNameLen {
		return &ValidationError{Field: "last_name", Message: tooLong(MaxLastNameLen)}
	}
	if f.Age < MinAge || f.Age > MaxAge {
		return &ValidationError{Field: "age", Message: outOfRange(MinAge, MaxAge)}
	}
	return nil
}
