package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/film-catalog/internal/handler"
)

func registerFilms(g *echo.Group, h *handler.CatalogHandler) {
	g.GET("/films", h.ListFilms)
	g.POST("/films", h.CreateFilm)
	g.POST("/films/cast", h.CastFilm)
	g.GET("/films/lookup", h.LookupFilm)
	g.GET("/films/:id", h.GetFilm)
	g.PUT("/films/:id", h.UpdateFilm)
	g.PATCH("/films/:id", h.UpdateFilm)
	g.DELETE("/films/:id", h.DeleteFilm)
	g.DELETE("/films/:id/actors/:actor_id", h.DeleteFilmActor)
}
