package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Hello answers the root path.
func Hello(c echo.Context) error {
	return c.String(http.StatusOK, "Hello")
}

// HealthCheck reports liveness.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
