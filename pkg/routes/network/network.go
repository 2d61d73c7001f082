package network

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	ctxutil "github.com/datenknoten/freundebuch/pkg/context"
	"github.com/datenknoten/freundebuch/pkg/network"
)

// Handler serves the user's network projection.
type Handler struct {
	service *network.Service
}

func NewHandler(service *network.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.Graph)
}

func (h *Handler) Graph(c echo.Context) error {
	ctx := c.Request().Context()

	userID := ctxutil.GetUserID(ctx)
	if userID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "user id is required")
	}

	graph, err := h.service.Graph(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, graph)
}
