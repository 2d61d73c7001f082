package relationship

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/datenknoten/freundebuch/pkg/catalog"
	ctxutil "github.com/datenknoten/freundebuch/pkg/context"
	"github.com/datenknoten/freundebuch/pkg/graph"
	"github.com/datenknoten/freundebuch/pkg/models"
	"github.com/datenknoten/freundebuch/pkg/relationships"
)

var validate = validator.New()

type ListResponse struct {
	Items []models.Relationship `json:"items"`
}

type Handler struct {
	service *relationships.Service
	catalog *catalog.Catalog
	mirror  *graph.Mirror
}

func NewHandler(service *relationships.Service, cat *catalog.Catalog, mirror *graph.Mirror) *Handler {
	return &Handler{
		service: service,
		catalog: cat,
		mirror:  mirror,
	}
}

// Register mounts the routes on /friends/:friendId/relationships.
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func userFromContext(c echo.Context) (string, error) {
	userID := ctxutil.GetUserID(c.Request().Context())
	if userID == "" {
		return "", httperror.NewHTTPError(http.StatusUnauthorized, "user id is required")
	}
	return userID, nil
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userFromContext(c)
	if err != nil {
		return err
	}

	items, err := h.service.ListByFriend(ctx, userID, c.Param("friendId"))
	if err != nil {
		return err
	}
	if items == nil {
		items = []models.Relationship{}
	}

	return c.JSON(http.StatusOK, ListResponse{Items: items})
}

func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userFromContext(c)
	if err != nil {
		return err
	}

	var req models.CreateRelationshipRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Add(ctx, userID, c.Param("friendId"), req)
	if err != nil {
		return err
	}

	h.mirror.UpsertRelationship(ctx, result)
	if inverse, _ := h.catalog.Inverse(result.RelationshipTypeID); inverse != nil {
		h.mirror.UpsertRelationship(ctx, inverseEdge(result, inverse.ID))
	}

	return c.JSON(http.StatusCreated, result)
}

// inverseEdge is the mirrored counterpart of a forward row: endpoints swapped,
// the inverse type, and no row id. The relational inverse has its own id that
// the write path never loads, so the edge must not carry the forward one.
func inverseEdge(forward *models.Relationship, inverseTypeID string) *models.Relationship {
	return &models.Relationship{
		UserID:             forward.UserID,
		FriendID:           forward.RelatedFriendID,
		RelatedFriendID:    forward.FriendID,
		RelationshipTypeID: inverseTypeID,
	}
}

func (h *Handler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userFromContext(c)
	if err != nil {
		return err
	}

	var req models.UpdateRelationshipRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.Update(ctx, userID, c.Param("friendId"), c.Param("id"), req)
	if err != nil {
		return err
	}
	if result == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "relationship not found")
	}

	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userFromContext(c)
	if err != nil {
		return err
	}

	removed, err := h.service.Remove(ctx, userID, c.Param("friendId"), c.Param("id"))
	if err != nil {
		return err
	}
	if removed == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "relationship not found")
	}

	inverseID := ""
	if inverse, _ := h.catalog.Inverse(removed.RelationshipTypeID); inverse != nil {
		inverseID = inverse.ID
	}
	h.mirror.DeleteRelationship(ctx, removed, inverseID)

	return c.NoContent(http.StatusNoContent)
}
