// Package rating looks up film ratings in an external movie database.
// Lookups are best effort: any failure is reported as "no result" and
// never as an error, so film details render with or without a rating.
package rating

import "context"

// Movie is the part of the movie database's search result that the
// catalog shows next to a film.
type Movie struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	AlternativeName string  `json:"alternativeName,omitempty"`
	Year            int     `json:"year,omitempty"`
	Description     string  `json:"description,omitempty"`
	Rating          Scores  `json:"rating"`
	Votes           Votes   `json:"votes"`
	Poster          *Poster `json:"poster,omitempty"`
}

// Scores holds the per-source ratings of a movie.
type Scores struct {
	KP   float64 `json:"kp"`
	IMDB float64 `json:"imdb"`
}

// Votes holds the number of votes behind each score.
type Votes struct {
	KP   int64 `json:"kp"`
	IMDB int64 `json:"imdb"`
}

// Poster links to the movie's poster image.
type Poster struct {
	URL        string `json:"url,omitempty"`
	PreviewURL string `json:"previewUrl,omitempty"`
}

// Lookup finds rating data for a film title.  The bool is false when
// nothing is known about the title or the lookup failed.
type Lookup interface {
	Lookup(ctx context.Context, title string) (*Movie, bool)
}

// Nop is the Lookup used when no rating service is configured.
type Nop struct{}

func (Nop) Lookup(context.Context, string) (*Movie, bool) { return nil, false }
