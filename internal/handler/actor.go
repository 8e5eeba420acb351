package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/film-catalog/internal/model"
	"github.com/iliyamo/film-catalog/internal/service"
)

// ListActors handles GET /v1/actors.
func (h *CatalogHandler) ListActors(c echo.Context) error {
	actors, err := h.Catalog.ListActors(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, items(actors))
}

// CreateActor handles POST /v1/actors.  An actor with the same name and
// age is returned as is with 200; a new one is created with 201.
func (h *CatalogHandler) CreateActor(c echo.Context) error {
	var body actorBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	f := body.fields()
	if err := f.Validate(); err != nil {
		return invalid(c, err)
	}
	actor, created, err := h.Catalog.FindOrCreateActor(c.Request().Context(), f)
	if err != nil {
		return h.fail(c, err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, actor)
}

// LookupActor handles GET /v1/actors/lookup?first_name=&last_name=&age=
// and returns the actor with its films.
func (h *CatalogHandler) LookupActor(c echo.Context) error {
	first := c.QueryParam("first_name")
	last := c.QueryParam("last_name")
	rawAge := c.QueryParam("age")
	if first == "" || last == "" || rawAge == "" {
		return badRequest(c, "missing required parameters")
	}
	age, err := strconv.Atoi(rawAge)
	if err != nil {
		return badRequest(c, "age must be an integer")
	}
	ref := service.ActorByFields(model.ActorFields{FirstName: first, LastName: last, Age: age})
	profile, err := h.Catalog.ActorDetail(c.Request().Context(), ref)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// GetActor handles GET /v1/actors/:id.
func (h *CatalogHandler) GetActor(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid actor id")
	}
	profile, err := h.Catalog.ActorDetail(c.Request().Context(), service.ActorByID(id))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateActor handles PUT/PATCH /v1/actors/:id.  All three fields are
// replaced; sending the actor's current values is a 409.
func (h *CatalogHandler) UpdateActor(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid actor id")
	}
	var body actorBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	f := body.fields()
	if err := f.Validate(); err != nil {
		return invalid(c, err)
	}
	actor, err := h.Catalog.UpdateActor(c.Request().Context(), id, f)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, actor)
}

// DeleteActor handles DELETE /v1/actors/:id and reports the films that
// were removed along with the actor.
func (h *CatalogHandler) DeleteActor(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid actor id")
	}
	report, err := h.Catalog.DeleteActor(c.Request().Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// AddFilmForActor handles POST /v1/actors/:id/films.
func (h *CatalogHandler) AddFilmForActor(c echo.Context) error {
	id, ok := pathUUID(c, "id")
	if !ok {
		return badRequest(c, "invalid actor id")
	}
	var body filmBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	f := body.fields()
	if err := f.Validate(); err != nil {
		return invalid(c, err)
	}
	casting, err := h.Catalog.AddFilmForActor(c.Request().Context(), service.ActorByID(id), f)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, casting)
}
