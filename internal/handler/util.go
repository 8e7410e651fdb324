package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// viewAsParam parses the optional ?view_as=<salon id> query parameter used
// by administrators to read a single tenant's data. The scope package
// ignores it for everyone else.
func viewAsParam(c echo.Context) *uint {
	raw := c.QueryParam("view_as")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	val := uint(id)
	return &val
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}
