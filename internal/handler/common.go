package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// requestTimeout bounds the store work a single request may do.
const requestTimeout = 5 * time.Second

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// parseID reads the :id path parameter as a positive integer.
func parseID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", c.Param("id"))
	}
	return id, nil
}

// queryInt returns the integer query parameter or 0 when absent or not a
// number, leaving defaults to the repository.
func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return n
}

// fieldErrors collects per-field validation messages keyed by JSON path.
type fieldErrors map[string]string

func (fe fieldErrors) required(field, value string) {
	if value == "" {
		fe[field] = "is required"
	}
}

func (fe fieldErrors) maxLen(field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		fe[field] = fmt.Sprintf("must be at most %d characters", max)
	}
}

func (fe fieldErrors) maxLenPtr(field string, value *string, max int) {
	if value != nil {
		fe.maxLen(field, *value, max)
	}
}

func validationFailed(c echo.Context, fe fieldErrors) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": fe})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

func notFound(c echo.Context, msg string) error {
	return c.JSON(http.StatusNotFound, echo.Map{"error": msg})
}

// internalError logs err with the request id and answers a bare 500.
func internalError(c echo.Context, log *zap.Logger, msg string, err error) error {
	log.Error(msg,
		zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		zap.String("path", c.Path()),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msg})
}
