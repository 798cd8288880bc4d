package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// IndexResponse describes the running service.
type IndexResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
}

// IndexHandler serves the API root.
type IndexHandler struct {
	version string
}

// NewIndexHandler creates an index handler reporting version.
func NewIndexHandler(version string) *IndexHandler {
	return &IndexHandler{version: version}
}

// Index godoc
// @Summary Service index
// @Tags index
// @Produce json
// @Success 200 {object} IndexResponse
// @Router / [get]
func (h *IndexHandler) Index(c echo.Context) error {
	return c.JSON(http.StatusOK, IndexResponse{
		Name:    "library",
		Version: h.version,
		Docs:    "/swagger/index.html",
	})
}
