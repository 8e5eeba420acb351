package model

import "github.com/google/uuid"

// Film represents a movie as stored in the `films` table.  The
// (Title, Year) pair is unique across the table.  A film may exist
// without any actor when it was created directly.
//
// Fields:
//
//	ID          – random UUID primary key.
//	Title       – film title, at most MaxTitleLen characters.
//	Description – free text, at most MaxDescriptionLen characters.
//	Year        – release year, between MinYear and MaxYear inclusive.
type Film struct {
	ID          uuid.UUID `json:"id"`          // films.id
	Title       string    `json:"title"`       // films.title
	Description string    `json:"description"` // films.description
	Year        int       `json:"year"`        // films.year
}

// Column limits mirrored by the CHECK constraints of the films table.
const (
	MaxTitleLen       = 19
	MaxDescriptionLen = 499
	MinYear           = 1901
	MaxYear           = 2029
)

// FilmFields holds the user-editable part of a film.
type FilmFields struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Year        int    `json:"year"`
}

// Fields returns the editable part of the film.
func (f Film) Fields() FilmFields {
	return FilmFields{Title: f.Title, Description: f.Description, Year: f.Year}
}

// Apply overwrites the editable fields of the film in place.
func (f *Film) Apply(in FilmFields) {
	f.Title = in.Title
	f.Description = in.Description
	f.Year = in.Year
}

// Validate checks the column limits of a film.
func (f FilmFields) Validate() error {
	if f.Title == "" {
		return &ValidationError{Field: "title", Message: "is required"}
	}
	if runeLen(f.Title) > MaxTitleLen {
		return &ValidationError{Field: "title", Message: tooLong(MaxTitleLen)}
	}
	if runeLen(f.Description) > MaxDescriptionLen {
		return &ValidationError{Field: "description", Message: tooLong(MaxDescriptionLen)}
	}
	if f.Year < MinYear || f.Year > MaxYear {
		return &ValidationError{Field: "year", Message: outOfRange(MinYear, MaxYear)}
	}
	return nil
}
