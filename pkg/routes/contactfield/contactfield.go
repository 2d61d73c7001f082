package contactfield

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	ctxutil "github.com/datenknoten/freundebuch/pkg/context"
	"github.com/datenknoten/freundebuch/pkg/models"
	"github.com/datenknoten/freundebuch/pkg/subresource"
)

var validate = validator.New()

// parentFromContext resolves the owning entity from whichever path parameter
// the route was mounted under.
func parentFromContext(c echo.Context) (models.ParentRef, error) {
	if id := c.Param("friendId"); id != "" {
		return models.ParentRef{Kind: models.ParentKindFriend, ID: id}, nil
	}
	if id := c.Param("collectiveId"); id != "" {
		return models.ParentRef{Kind: models.ParentKindCollective, ID: id}, nil
	}
	return models.ParentRef{}, httperror.NewHTTPError(http.StatusBadRequest, "missing parent id")
}

func userFromContext(c echo.Context) (string, error) {
	userID := ctxutil.GetUserID(c.Request().Context())
	if userID == "" {
		return "", httperror.NewHTTPError(http.StatusUnauthorized, "user id is required")
	}
	return userID, nil
}

// Handler serves one contact category under both friend and collective
// parents. The build and apply hooks translate between the category's request
// types and its row type; everything else is identical across categories.
type Handler[I any, C any, U any] struct {
	manager *subresource.Manager[I]
	build   func(userID string, parent models.ParentRef, req *C) *I
	apply   func(item *I, req *U)
}

func NewHandler[I any, C any, U any](
	manager *subresource.Manager[I],
	build func(userID string, parent models.ParentRef, req *C) *I,
	apply func(item *I, req *U),
) *Handler[I, C, U] {
	return &Handler[I, C, U]{
		manager: manager,
		build:   build,
		apply:   apply,
	}
}

// Register mounts the category's routes on a group that already carries the
// parent path parameter.
func (h *Handler[I, C, U]) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *Handler[I, C, U]) List(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userFromContext(c)
	if err != nil {
		return err
	}
	parent, err := parentFromContext(c)
	if err != nil {
		return err
	}

	items, err := h.manager.List(ctx, userID, parent)
	if err != nil {
		return err
	}
	if items == nil {
		items = []I{}
	}

	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

func (h *Handler[I, C, U]) Get(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userFromContext(c)
	if err != nil {
		return err
	}
	parent, err := parentFromContext(c)
	if err != nil {
		return err
	}

	item, err := h.manager.Get(ctx, userID, parent, c.Param("id"))
	if err != nil {
		return err
	}
	if item == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "not found")
	}

	return c.JSON(http.StatusOK, item)
}

func (h *Handler[I, C, U]) Create(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userFromContext(c)
	if err != nil {
		return err
	}
	parent, err := parentFromContext(c)
	if err != nil {
		return err
	}

	var req C
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item := h.build(userID, parent, &req)
	result, err := h.manager.Create(ctx, userID, parent, item)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, result)
}

func (h *Handler[I, C, U]) Update(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userFromContext(c)
	if err != nil {
		return err
	}
	parent, err := parentFromContext(c)
	if err != nil {
		return err
	}

	var req U
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.manager.Get(ctx, userID, parent, c.Param("id"))
	if err != nil {
		return err
	}
	if item == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "not found")
	}

	h.apply(item, &req)
	result, err := h.manager.Update(ctx, userID, parent, item)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *Handler[I, C, U]) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userFromContext(c)
	if err != nil {
		return err
	}
	parent, err := parentFromContext(c)
	if err != nil {
		return err
	}

	deleted, err := h.manager.Delete(ctx, userID, parent, c.Param("id"))
	if err != nil {
		return err
	}
	if !deleted {
		return httperror.NewHTTPError(http.StatusNotFound, "not found")
	}

	return c.NoContent(http.StatusNoContent)
}
