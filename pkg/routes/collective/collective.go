package collective

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	collectiverepo "github.com/datenknoten/freundebuch/internal/repositories/collective"
	ctxutil "github.com/datenknoten/freundebuch/pkg/context"
	"github.com/datenknoten/freundebuch/pkg/events"
	"github.com/datenknoten/freundebuch/pkg/models"
)

var validate = validator.New()

type ListResponse struct {
	Items      []models.Collective `json:"items"`
	TotalCount int                 `json:"totalCount"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
}

type Handler struct {
	repo    collectiverepo.CollectiveRepository
	emitter *events.Emitter
}

func NewHandler(repo collectiverepo.CollectiveRepository, emitter *events.Emitter) *Handler {
	return &Handler{
		repo:    repo,
		emitter: emitter,
	}
}

func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:collectiveId", h.Get)
	g.PUT("/:collectiveId", h.Update)
	g.DELETE("/:collectiveId", h.Delete)
	g.PUT("/:collectiveId/archive", h.Archive)
	g.PUT("/:collectiveId/unarchive", h.Unarchive)
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

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	items, totalCount, err := h.repo.List(ctx, userID, page, pageSize)
	if err != nil {
		return err
	}
	if items == nil {
		items = []models.Collective{}
	}

	return c.JSON(http.StatusOK, ListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userFromContext(c)
	if err != nil {
		return err
	}

	var req models.CreateCollectiveRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.repo.Create(ctx, userID, req)
	if err != nil {
		return err
	}

	h.emitter.Emit(ctx, events.TypeCollectiveCreated, userID, map[string]any{"id": result.ID})

	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userFromContext(c)
	if err != nil {
		return err
	}

	result, err := h.repo.GetByID(ctx, userID, c.Param("collectiveId"))
	if err != nil {
		return err
	}
	if result == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "collective not found")
	}

	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userFromContext(c)
	if err != nil {
		return err
	}

	var req models.UpdateCollectiveRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.repo.Update(ctx, userID, c.Param("collectiveId"), req)
	if err != nil {
		return err
	}
	if result == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "collective not found")
	}

	h.emitter.Emit(ctx, events.TypeCollectiveUpdated, userID, map[string]any{"id": result.ID})

	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Archive(c echo.Context) error {
	return h.setArchived(c, true)
}

func (h *Handler) Unarchive(c echo.Context) error {
	return h.setArchived(c, false)
}

func (h *Handler) setArchived(c echo.Context, archived bool) error {
	ctx := c.Request().Context()

	userID, err := userFromContext(c)
	if err != nil {
		return err
	}

	result, err := h.repo.Update(ctx, userID, c.Param("collectiveId"), models.UpdateCollectiveRequest{
		Archived: &archived,
	})
	if err != nil {
		return err
	}
	if result == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "collective not found")
	}

	h.emitter.Emit(ctx, events.TypeCollectiveUpdated, userID, map[string]any{"id": result.ID, "archived": archived})

	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userFromContext(c)
	if err != nil {
		return err
	}
	collectiveID := c.Param("collectiveId")

	deleted, err := h.repo.Delete(ctx, userID, collectiveID)
	if err != nil {
		return err
	}
	if !deleted {
		return httperror.NewHTTPError(http.StatusNotFound, "collective not found")
	}

	h.emitter.Emit(ctx, events.TypeCollectiveDeleted, userID, map[string]any{"id": collectiveID})

	return c.NoContent(http.StatusNoContent)
}
