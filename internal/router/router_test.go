package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"library/internal/handler"
)

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	Register(e, zap.NewNop().Sugar(), handler.NewHealthHandler(handler.PingerFunc(func(ctx context.Context) error { return nil })))
	return e
}

func serve(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestRegister_ServiceRoutes(t *testing.T) {
	e := newTestEcho(t)

	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/healthz").Code)
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/readyz").Code)
	assert.Equal(t, http.StatusNotFound, serve(e, http.MethodGet, "/api/").Code)
}

func TestMount_DefaultBlueprint(t *testing.T) {
	e := newTestEcho(t)
	Mount(e, APIPrefix, DefaultBlueprint(handler.NewIndexHandler("test")))

	rec := serve(e, http.MethodGet, "/api/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"library"`)
}

func TestMount_CustomBlueprint(t *testing.T) {
	e := newTestEcho(t)
	bp := NewBlueprint("catalogue", func(g *echo.Group) {
		g.GET("/books", func(c echo.Context) error {
			return c.JSON(http.StatusOK, []string{})
		})
	})
	Mount(e, APIPrefix, bp)

	assert.Equal(t, "catalogue", bp.Name())
	assert.Equal(t, http.StatusOK, serve(e, http.MethodGet, "/api/books").Code)
	assert.Equal(t, http.StatusNotFound, serve(e, http.MethodGet, "/books").Code)
}

func TestCustomValidator(t *testing.T) {
	e := newTestEcho(t)

	type payload struct {
		Email string `validate:"required,email"`
	}
	assert.NoError(t, e.Validator.Validate(&payload{Email: "librarian@example.com"}))
	assert.Error(t, e.Validator.Validate(&payload{Email: "nope"}))
}
