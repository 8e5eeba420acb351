// Package router registers the HTTP routes of the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/film-catalog/internal/handler"
)

// RegisterRoutes registers routes outside the versioned API.  Currently
// it exposes only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo, h *handler.Health) {
	e.GET("/healthz", h.Check)
}

// RegisterCatalog registers the actor and film endpoints under /v1.  mw
// is applied to the whole group (rate limiting, response caching).
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, mw ...echo.MiddlewareFunc) {
	g := e.Group("/v1", mw...)
	registerActors(g, h)
	registerFilms(g, h)
}
