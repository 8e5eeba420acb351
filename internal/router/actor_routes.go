package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/film-catalog/internal/handler"
)

func registerActors(g *echo.Group, h *handler.CatalogHandler) {
	g.GET("/actors", h.ListActors)
	g.POST("/actors", h.CreateActor)
	// Static segment, matched before /actors/:id.
	g.GET("/actors/lookup", h.LookupActor)
	g.GET("/actors/:id", h.GetActor)
	g.PUT("/actors/:id", h.UpdateActor)
	g.PATCH("/actors/:id", h.UpdateActor) // full replace, same as PUT
	g.DELETE("/actors/:id", h.DeleteActor)
	g.POST("/actors/:id/films", h.AddFilmForActor)
}
