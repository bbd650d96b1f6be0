package handler

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// dbTimeout bounds every database round trip made from a handler.
const dbTimeout = 5 * time.Second

var (
	emailRx = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	timeRx  = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d):([0-5]\d)$`)
)

// reqCtx derives a bounded context from the incoming request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// currentUserID reads the authenticated user's id stashed by the JWT
// middleware. Zero means the route was registered without the middleware,
// which is a wiring bug, and the caller will fail on the ownership filter.
func currentUserID(c echo.Context) uint64 {
	uid, _ := c.Get("user_id").(uint64)
	return uid
}

// parseID parses a positive numeric path parameter.
func parseID(s string) (uint64, bool) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// validationFail responds 400 with a per-field message list so clients can
// surface errors next to form inputs.
func validationFail(c echo.Context, fields ...string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"error":  "validation failed",
		"fields": fields,
	})
}

// successMsg is the uniform body for mutations that return no entity.
func successMsg(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"success": true, "message": message})
}
