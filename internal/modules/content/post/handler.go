package post

import (
	"github.com/akshayrajput12/chronical-sub004/internal/middleware"
	"github.com/akshayrajput12/chronical-sub004/internal/modules/content/respond"
	"github.com/akshayrajput12/chronical-sub004/internal/pkg/markdown"
	"github.com/akshayrajput12/chronical-sub004/internal/pkg/pagination"
	"github.com/akshayrajput12/chronical-sub004/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// Handler handles blog post HTTP requests.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts post routes onto the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	posts := rg.Group("/posts")

	posts.GET("", h.list)
	posts.GET("/:identifier", h.get)

	authed := posts.Group("", authMW)
	authed.POST("", h.create)
	authed.PUT("/reorder", h.reorder)
	authed.PUT("/:id", h.update)
	authed.PATCH("/:id", h.update)
	authed.PATCH("/:id/status", h.transition)
	authed.PATCH("/:id/move", h.move)
	authed.DELETE("/:id", h.delete)
}

// list GET /posts
func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)

	var lq ListQuery
	if err := c.ShouldBindQuery(&lq); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	posts, pag, err := h.svc.List(q, lq, middleware.IsAuthenticated(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	items := make([]postResponse, len(posts))
	for i, p := range posts {
		items[i] = toResponse(&p, "")
	}
	response.Paged(c, items, pag)
}

// get GET /posts/:identifier
func (h *Handler) get(c *gin.Context) {
	isAdmin := middleware.IsAuthenticated(c)

	post, err := h.svc.GetByIdentifier(c.Param("identifier"), isAdmin)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if post == nil {
		response.NotFound(c)
		return
	}

	html := ""
	if !isAdmin {
		if html, err = markdown.Render(post.Text); err != nil {
			response.InternalError(c, err)
			return
		}
	}
	response.OK(c, toResponse(post, html))
}

// create POST /posts
func (h *Handler) create(c *gin.Context) {
	var dto CreatePostDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	post, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		respond.Error(c, err)
		return
	}
	response.Created(c, toResponse(post, ""))
}

// update PUT/PATCH /posts/:id
func (h *Handler) update(c *gin.Context) {
	var dto UpdatePostDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	post, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		respond.Error(c, err)
		return
	}
	if post == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(post, ""))
}

// transition PATCH /posts/:id/status
func (h *Handler) transition(c *gin.Context) {
	var dto TransitionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	post, err := h.svc.TransitionStatus(c.Request.Context(), c.Param("id"), dto.Status)
	if err != nil {
		respond.Error(c, err)
		return
	}
	response.OK(c, toResponse(post, ""))
}

// move PATCH /posts/:id/move
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

// reorder PUT /posts/reorder
func (h *Handler) reorder(c *gin.Context) {
	var dto ReorderDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.svc.Reorder(c.Request.Context(), dto.CategoryID, dto.OrderedIDs); err != nil {
		respond.Error(c, err)
		return
	}
	response.NoContent(c)
}

// delete DELETE /posts/:id
func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respond.Error(c, err)
		return
	}
	response.NoContent(c)
}
