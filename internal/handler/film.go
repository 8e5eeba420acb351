package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/film-catalog/internal/service"
)

// ListFilms handles GET /v1/films.
func (h *CatalogHandler) ListFilms(c echo.Context) error {
	films, err := h.Catalog.ListFilms(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, items(films))
}

// CreateFilm handles POST /v1/films.  A film with the same title and year
// is returned as is with 200; a new one is created with 201.
func (h *CatalogHandler) CreateFilm(c echo.Context) error {
	var body filmBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	f := body.fields()
	if err := f.Validate(); err != nil {
		return invalid(c, err)
	}
	film, created, err := h.Catalog.FindOrCreateFilm(c.Request().Context(), f)
	if err != nil {
		return h.fail(c, err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, film)
}

// CastFilm handles POST /v1/films/cast.  The actor is named by its first
// name, last name and age and must already exist.
func (h *CatalogHandler) CastFilm(c echo.Context) error {
	var body struct {
		actorBody
		filmBody
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	actor := body.actorBody.fields()
	if err := actor.Validate(); err != nil {
		return invalid(c, err)
	}
	film := body.filmBody.fields()
	if err := film.Validate(); err != nil {
		return invalid(c, err)
	}
	casting, err := h.Catalog.AddFilmForActor(c.Request().Context(), service.ActorByFields(actor), film)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, casting)
}

// LookupFilm handles GET /v1/films/lookup?title=&year= and returns the
// film with its actors and rating.
func (h *CatalogHandler) LookupFilm(c echo.Context) error {
	title := c.QueryParam("title")
	rawYear := c.QueryParam("year")
	if title == "" || rawYear == "" {
		return badRequest(c, "missing required parameters")
	}
	year, err := strconv.Atoi(rawYear)
	if err != nil {
		return badRequest(c, "year must be an integer")
	}
	profile, err := h.Catalog.FilmDetail(c.Request().Context(), service.FilmByTitle(title, year))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// GetFilm handles GET /v1/films/:id.
func (h *CatalogHandler) GetFilm(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid film id")
	}
	profile, err := h.Catalog.FilmDetail(c.Request().Context(), service.FilmByID(id))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateFilm handles PUT/PATCH /v1/films/:id.  Sending the film's current
// title and year is a 409.
func (h *CatalogHandler) UpdateFilm(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid film id")
	}
	var body filmBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	f := body.fields()
	if err := f.Validate(); err != nil {
		return invalid(c, err)
	}
	film, err := h.Catalog.UpdateFilm(c.Request().Context(), id, f)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, film)
}

// DeleteFilm handles DELETE /v1/films/:id.  The film's actors are kept.
func (h *CatalogHandler) DeleteFilm(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid film id")
	}
	if err := h.Catalog.DeleteFilm(c.Request().Context(), id); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteFilmActor handles DELETE /v1/films/:id/actors/:actor_id.
func (h *CatalogHandler) DeleteFilmActor(c echo.Context) error {
	filmID, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid film id")
	}
	actorID, ok := pathUUID(c, "actor_id")
	if !ok {
		return badRequest(c, "invalid actor id")
	}
	if err := h.Catalog.DeleteFilmActor(c.Request().Context(), filmID, actorID); err != nil {
		return h.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
