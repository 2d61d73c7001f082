package relationshiptype

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/datenknoten/freundebuch/pkg/catalog"
	"github.com/datenknoten/freundebuch/pkg/models"
)

type ListResponse struct {
	Items   []models.RelationshipType                                 `json:"items"`
	Grouped map[models.RelationshipCategory][]models.RelationshipType `json:"grouped"`
}

// Handler serves the static relationship type catalog.
type Handler struct {
	catalog *catalog.Catalog
}

func NewHandler(cat *catalog.Catalog) *Handler {
	return &Handler{catalog: cat}
}

func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
}

func (h *Handler) List(c echo.Context) error {
	return c.JSON(http.StatusOK, ListResponse{
		Items:   h.catalog.All(),
		Grouped: h.catalog.Grouped(),
	})
}
