package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		viewer, err := GetViewer(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "not logged in"})
		}
		c.Set("user_id", viewer.Id)
		return next(c)
	}
}

func AdminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		viewer, err := GetViewer(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "not logged in"})
		}
		if !viewer.Admin {
			return c.JSON(http.StatusForbidden, map[string]string{"detail": "admin only"})
		}
		c.Set("user_id", viewer.Id)
		return next(c)
	}
}
