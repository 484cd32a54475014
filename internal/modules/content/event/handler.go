package event

import (
	"github.com/akshayrajput12/chronical-sub004/internal/middleware"
	"github.com/akshayrajput12/chronical-sub004/internal/modules/content/respond"
	"github.com/akshayrajput12/chronical-sub004/internal/pkg/pagination"
	"github.com/akshayrajput12/chronical-sub004/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// Handler handles event HTTP requests.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts event routes onto the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	events := rg.Group("/events")

	events.GET("", h.list)
	events.GET("/:identifier", h.get)

	authed := events.Group("", authMW)
	authed.POST("", h.create)
	authed.PUT("/reorder", h.reorder)
	authed.PUT("/:id", h.update)
	authed.PATCH("/:id", h.update)
	authed.PATCH("/:id/status", h.transition)
	authed.PATCH("/:id/move", h.move)
	authed.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)

	var lq ListQuery
	if err := c.ShouldBindQuery(&lq); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	events, pag, err := h.svc.List(q, lq, middleware.IsAuthenticated(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	items := make([]eventResponse, len(events))
	for i, e := range events {
		items[i] = toResponse(&e)
	}
	response.Paged(c, items, pag)
}

func (h *Handler) get(c *gin.Context) {
	ev, err := h.svc.GetByIdentifier(c.Param("identifier"), middleware.IsAuthenticated(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if ev == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(ev))
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateEventDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ev, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		respond.Error(c, err)
		return
	}
	response.Created(c, toResponse(ev))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateEventDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ev, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		respond.Error(c, err)
		return
	}
	if ev == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(ev))
}

func (h *Handler) transition(c *gin.Context) {
	var dto TransitionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ev, err := h.svc.TransitionStatus(c.Request.Context(), c.Param("id"), dto.Status)
	if err != nil {
		respond.Error(c, err)
		return
	}
	response.OK(c, toResponse(ev))
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

	if err := h.svc.Reorder(c.Request.Context(), dto.CityID, dto.OrderedIDs); err != nil {
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
