// Package handler exposes the catalog over HTTP.  Handlers parse and
// validate requests, call the catalog service and translate its errors:
// NotFound becomes 404, Conflict 409, invalid input 400 and everything
// else 500.
package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/film-catalog/internal/model"
	"github.com/iliyamo/film-catalog/internal/service"
)

// CatalogHandler serves the actor and film endpoints.
type CatalogHandler struct {
	Catalog *service.Catalog // runs every operation in its own unit of work
	log     *zap.Logger
}

// NewCatalogHandler constructs a CatalogHandler and panics if catalog is nil.
func NewCatalogHandler(catalog *service.Catalog, log *zap.Logger) *CatalogHandler {
	if catalog == nil {
		panic("nil catalog passed to NewCatalogHandler")
	}
	return &CatalogHandler{Catalog: catalog, log: log.Named("handler")}
}

// fail writes the response for an error returned by the catalog.
func (h *CatalogHandler) fail(c echo.Context, err error) error {
	if e, ok := service.AsError(err); ok {
		switch e.Kind {
		case service.KindNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": e.Message})
		case service.KindConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": e.Message})
		}
	}
	h.log.Error("catalog operation failed",
		zap.String("method", c.Request().Method),
		zap.String("route", c.Path()),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// invalid reports a failed field validation as 400.
func invalid(c echo.Context, err error) error {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return badRequest(c, ve.Error())
	}
	return badRequest(c, "invalid request")
}

// pathUUID parses the named path parameter as a UUID.
func pathUUID(c echo.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	return id, err == nil
}

// actorBody is the JSON shape of an actor in requests.
type actorBody struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Age       int    `json:"age"`
}

func (b actorBody) fields() model.ActorFields {
	return model.ActorFields{
		FirstName: b.FirstName,
		LastName:  b.LastName,
		Age:       b.Age,
	}
}

// filmBody is the JSON shape of a film in requests.
type filmBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Year        int    `json:"year"`
}

func (b filmBody) fields() model.FilmFields {
	return model.FilmFields{
		Title:       b.Title,
		Description: b.Description,
		Year:        b.Year,
	}
}

// items wraps a list response.
func items[T any](list []T) echo.Map {
	if list == nil {
		list = []T{}
	}
	return echo.Map{"items": list}
}
