package category

import (
	"strconv"

	"github.com/akshayrajput12/chronical-sub004/internal/middleware"
	"github.com/akshayrajput12/chronical-sub004/internal/models"
	"github.com/akshayrajput12/chronical-sub004/internal/modules/content/respond"
	"github.com/akshayrajput12/chronical-sub004/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// Handler handles category HTTP requests.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts category routes onto the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	cats := rg.Group("/categories")

	cats.GET("", h.list)
	cats.GET("/:identifier", h.get)

	authed := cats.Group("", authMW)
	authed.POST("", h.create)
	authed.PUT("/reorder", h.reorder)
	authed.PUT("/:id", h.update)
	authed.PATCH("/:id", h.update)
	authed.PATCH("/:id/status", h.transition)
	authed.PATCH("/:id/move", h.move)
	authed.DELETE("/:id", h.delete)
}

func kindQuery(c *gin.Context) models.CategoryKind {
	if k, err := strconv.Atoi(c.Query("kind")); err == nil {
		return models.CategoryKind(k)
	}
	return models.CategoryKindBlog
}

func (h *Handler) list(c *gin.Context) {
	cats, err := h.svc.List(kindQuery(c), middleware.IsAuthenticated(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	items := make([]categoryResponse, len(cats))
	for i, cat := range cats {
		items[i] = toResponse(&cat)
	}
	response.OK(c, items)
}

func (h *Handler) get(c *gin.Context) {
	cat, err := h.svc.GetByIdentifier(c.Param("identifier"), middleware.IsAuthenticated(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if cat == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(cat))
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateCategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cat, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		respond.Error(c, err)
		return
	}
	response.Created(c, toResponse(cat))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateCategoryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cat, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		respond.Error(c, err)
		return
	}
	if cat == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(cat))
}

func (h *Handler) transition(c *gin.Context) {
	var dto TransitionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cat, err := h.svc.TransitionStatus(c.Request.Context(), c.Param("id"), dto.Status)
	if err != nil {
		respond.Error(c, err)
		return
	}
	response.OK(c, toResponse(cat))
}

func (h *Handler) move(c *gin.Context) {
	var dto MoveDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.svc.Move(c.Request.Context(), c.Param("id"), dto.Direction); err != nil {
		respond.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) reorder(c *gin.Context) {
	var dto ReorderDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.svc.Reorder(c.Request.Context(), models.CategoryKind(dto.Kind), dto.OrderedIDs); err != nil {
		respond.Error(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respond.Error(c, err)
		return
	}
	response.NoContent(c)
}
