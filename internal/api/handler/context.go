package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/linguameet/linguameet-api/internal/core/domain"
)

// callerFrom extracts the authenticated user injected by the Auth
// middleware. Its presence proves the middleware ran; a route wired without
// it fails fast with 401 instead of reaching a service with no identity.
func callerFrom(c echo.Context) (*domain.User, error) {
	user, ok := c.Get("user").(*domain.User)
	if !ok || user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return user, nil
}
