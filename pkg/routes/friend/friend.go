package friend

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	friendrepo "github.com/datenknoten/freundebuch/internal/repositories/friend"
	ctxutil "github.com/datenknoten/freundebuch/pkg/context"
	"github.com/datenknoten/freundebuch/pkg/database"
	"github.com/datenknoten/freundebuch/pkg/events"
	"github.com/datenknoten/freundebuch/pkg/graph"
	"github.com/datenknoten/freundebuch/pkg/models"
	"github.com/datenknoten/freundebuch/pkg/relationships"
)

var validate = validator.New()

type ListResponse struct {
	Items      []models.Friend `json:"items"`
	TotalCount int             `json:"totalCount"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
}

type Handler struct {
	repo    friendrepo.FriendRepository
	rels    *relationships.Service
	db      database.DB
	mirror  *graph.Mirror
	emitter *events.Emitter
	cache   relationships.CacheInvalidator
	logger  ectologger.Logger
}

func NewHandler(
	repo friendrepo.FriendRepository,
	rels *relationships.Service,
	db database.DB,
	mirror *graph.Mirror,
	emitter *events.Emitter,
	cache relationships.CacheInvalidator,
	logger ectologger.Logger,
) *Handler {
	return &Handler{
		repo:    repo,
		rels:    rels,
		db:      db,
		mirror:  mirror,
		emitter: emitter,
		cache:   cache,
		logger:  logger,
	}
}

func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:friendId", h.Get)
	g.PUT("/:friendId", h.Update)
	g.DELETE("/:friendId", h.Delete)
	g.PUT("/:friendId/archive", h.Archive)
	g.PUT("/:friendId/unarchive", h.Unarchive)
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
		items = []models.Friend{}
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

	var req models.CreateFriendRequest
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

	h.mirror.UpsertFriend(ctx, result)
	h.emitter.Emit(ctx, events.TypeFriendCreated, userID, map[string]any{"id": result.ID})
	h.cache.Invalidate(ctx, userID)

	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userFromContext(c)
	if err != nil {
		return err
	}

	result, err := h.repo.GetByID(ctx, userID, c.Param("friendId"))
	if err != nil {
		return err
	}
	if result == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "friend not found")
	}

	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userFromContext(c)
	if err != nil {
		return err
	}

	var req models.UpdateFriendRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.repo.Update(ctx, userID, c.Param("friendId"), req)
	if err != nil {
		return err
	}
	if result == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "friend not found")
	}

	h.mirror.UpsertFriend(ctx, result)
	h.emitter.Emit(ctx, events.TypeFriendUpdated, userID, map[string]any{"id": result.ID})
	h.cache.Invalidate(ctx, userID)

	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Archive(c echo.Context) error {
	return h.setArchived(c, true)
}

func (h *Handler) Unarchive(c echo.Context) error {
	return h.setArchived(c, false)
}

// setArchived flips the archived flag. Archiving keeps the friend's data but
// drops it from the network projection.
func (h *Handler) setArchived(c echo.Context, archived bool) error {
	ctx := c.Request().Context()

	userID, err := userFromContext(c)
	if err != nil {
		return err
	}

	result, err := h.repo.Update(ctx, userID, c.Param("friendId"), models.UpdateFriendRequest{
		Archived: &archived,
	})
	if err != nil {
		return err
	}
	if result == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "friend not found")
	}

	h.mirror.UpsertFriend(ctx, result)
	h.emitter.Emit(ctx, events.TypeFriendUpdated, userID, map[string]any{"id": result.ID, "archived": archived})
	h.cache.Invalidate(ctx, userID)

	return c.JSON(http.StatusOK, result)
}

// Delete soft deletes the friend and removes every relationship touching it,
// in one transaction.
func (h *Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := userFromContext(c)
	if err != nil {
		return err
	}
	friendID := c.Param("friendId")

	ctx, tx, err := h.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	if _, err := h.rels.RemoveAllForFriend(ctx, userID, friendID); err != nil {
		return err
	}

	deleted, err := h.repo.Delete(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if !deleted {
		return httperror.NewHTTPError(http.StatusNotFound, "friend not found")
	}

	if err := tx.Commit(ctx); err != nil {
		h.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"user_id":   userID,
			"friend_id": friendID,
		}).Error("failed to commit friend deletion")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit")
	}

	h.mirror.DeleteFriend(ctx, userID, friendID)
	h.emitter.Emit(ctx, events.TypeFriendDeleted, userID, map[string]any{"id": friendID})
	h.cache.Invalidate(ctx, userID)

	return c.NoContent(http.StatusNoContent)
}
