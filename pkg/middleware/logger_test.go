package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datenknoten/freundebuch/pkg/middleware"
)

func TestLogger(t *testing.T) {
	var captured []ectologger.EctoLogMessage
	logger := ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		captured = append(captured, msg)
	})

	e := echo.New()
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.GET("/friends/:friendId", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"id": c.Param("friendId")})
	})

	req := httptest.NewRequest(http.MethodGet, "/friends/abc", nil)
	req.Header.Set(middleware.HeaderUserID, "user-1")
	req.Header.Set("X-Request-ID", "req-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, captured, 1)
}

func TestLoggerHandlerError(t *testing.T) {
	var captured []ectologger.EctoLogMessage
	logger := ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		captured = append(captured, msg)
	})

	e := echo.New()
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.GET("/friends/:friendId", func(c echo.Context) error {
		return httperror.NewHTTPError(http.StatusNotFound, "friend not found")
	})

	req := httptest.NewRequest(http.MethodGet, "/friends/missing", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	// The middleware resolves the error itself, so the response is written
	// and exactly one line is still logged.
	require.NotEqual(t, http.StatusOK, rec.Code)
	assert.Len(t, captured, 1)
}
