package model

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorFieldsValidate(t *testing.T) {
	tests := []struct {
		name  string
		in    ActorFields
		field string
	}{
		{name: "ok", in: ActorFields{FirstName: "Tom", LastName: "Hanks", Age: 60}},
		{name: "boundary lengths", in: ActorFields{FirstName: strings.Repeat("a", 19), LastName: strings.Repeat("b", 24), Age: 100}},
		{name: "multibyte counted as characters", in: ActorFields{FirstName: strings.Repeat("ё", 19), LastName: "Doe", Age: 1}},
		{name: "empty first name", in: ActorFields{LastName: "Doe", Age: 30}, field: "first_name"},
		{name: "first name too long", in: ActorFields{FirstName: strings.Repeat("a", 20), LastName: "Doe", Age: 30}, field: "first_name"},
		{name: "last name too long", in: ActorFields{FirstName: "John", LastName: strings.Repeat("b", 25), Age: 30}, field: "last_name"},
		{name: "age zero", in: ActorFields{FirstName: "John", LastName: "Doe", Age: 0}, field: "age"},
		{name: "age over limit", in: ActorFields{FirstName: "John", LastName: "Doe", Age: 101}, field: "age"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestFilmFieldsValidate(t *testing.T) {
	tests := []struct {
		name  string
		in    FilmFields
		field string
	}{
		{name: "ok", in: FilmFields{Title: "Forrest Gump", Description: "A man named Forrest.", Year: 1994}},
		{name: "empty description allowed", in: FilmFields{Title: "Big", Year: 1988}},
		{name: "lower year bound", in: FilmFields{Title: "Old", Year: 1901}},
		{name: "upper year bound", in: FilmFields{Title: "New", Year: 2029}},
		{name: "year too early", in: FilmFields{Title: "Old", Year: 1900}, field: "year"},
		{name: "year too late", in: FilmFields{Title: "New", Year: 2030}, field: "year"},
		{name: "title too long", in: FilmFields{Title: strings.Repeat("t", 20), Year: 2000}, field: "title"},
		{name: "description too long", in: FilmFields{Title: "Long", Description: strings.Repeat("d", 500), Year: 2000}, field: "description"},
		{name: "missing title", in: FilmFields{Year: 2000}, field: "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestApplyKeepsID(t *testing.T) {
	a := Actor{FirstName: "John", LastName: "Doe", Age: 30}
	id := a.ID
	a.Apply(ActorFields{FirstName: "NewJohn", LastName: "NewDoe", Age: 35})
	assert.Equal(t, id, a.ID)
	assert.Equal(t, ActorFields{FirstName: "NewJohn", LastName: "NewDoe", Age: 35}, a.Fields())
}
