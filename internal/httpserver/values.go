package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func greet(msg string) echo.HandlerFunc {
	return func(c echo.Context) error { return c.String(http.StatusOK, msg) }
}
