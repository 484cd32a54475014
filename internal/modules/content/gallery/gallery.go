// Package gallery manages the curated media posts on the home page. All
// gallery posts share a single global sibling group.
package gallery

import (
	"context"
	"errors"
	"time"

	"github.com/akshayrajput12/chronical-sub004/internal/middleware"
	"github.com/akshayrajput12/chronical-sub004/internal/models"
	"github.com/akshayrajput12/chronical-sub004/internal/modules/content/respond"
	"github.com/akshayrajput12/chronical-sub004/internal/pkg/cacheflush"
	"github.com/akshayrajput12/chronical-sub004/internal/pkg/response"
	"github.com/akshayrajput12/chronical-sub004/internal/publishing"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateGalleryDTO struct {
	Caption   string `json:"caption" binding:"required"`
	MediaURL  string `json:"media_url"`
	Permalink string `json:"permalink"`
}

type UpdateGalleryDTO struct {
	Caption   *string `json:"caption"`
	MediaURL  *string `json:"media_url"`
	Permalink *string `json:"permalink"`
	IsActive  *bool   `json:"is_active"`
}

type TransitionDTO struct {
	Status string `json:"status" binding:"required"`
}

type MoveDTO struct {
	Direction string `json:"direction" binding:"required"`
}

type ReorderDTO struct {
	OrderedIDs []string `json:"ordered_ids" binding:"required"`
}

type galleryResponse struct {
	models.GalleryPostModel
	Status string `json:"status"`
}

func toResponse(gp *models.GalleryPostModel) galleryResponse {
	return galleryResponse{
		GalleryPostModel: *gp,
		Status:           string(publishing.DeriveStatus(gp.IsActive, gp.PublishedAt)),
	}
}

var galleryGroup = publishing.Group{Table: "gallery_posts"}

// Service handles gallery business logic.
type Service struct {
	db     *gorm.DB
	orders *publishing.Manager
	flush  *cacheflush.Service
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, orders: publishing.NewManager(db)}
}

func (s *Service) SetCacheFlush(f *cacheflush.Service) { s.flush = f }

// List returns gallery posts in display order.
func (s *Service) List(isAdmin bool) ([]models.GalleryPostModel, error) {
	tx := s.db.Model(&models.GalleryPostModel{}).
		Order("display_order ASC, created_at ASC")
	if !isAdmin {
		tx = tx.Where("is_active = ? AND published_at IS NOT NULL", true)
	}

	var posts []models.GalleryPostModel
	err := tx.Find(&posts).Error
	return posts, err
}

func (s *Service) getByID(id string) (*models.GalleryPostModel, error) {
	var gp models.GalleryPostModel
	if err := s.db.First(&gp, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &gp, nil
}

// Create appends a new gallery draft with a slug derived from the caption.
func (s *Service) Create(ctx context.Context, dto *CreateGalleryDTO) (*models.GalleryPostModel, error) {
	gp := &models.GalleryPostModel{
		Caption:   dto.Caption,
		MediaURL:  dto.MediaURL,
		Permalink: dto.Permalink,
	}
	gp.IsActive = true

	err := publishing.CreateWithSlug(ctx, s.db, galleryGroup, dto.Caption, nil, func(tx *gorm.DB, slug string, order int) error {
		gp.Slug = slug
		gp.DisplayOrder = order
		return tx.Create(gp).Error
	})
	if err != nil {
		return nil, err
	}
	return gp, nil
}

// Update patches a gallery post.
func (s *Service) Update(ctx context.Context, id string, dto *UpdateGalleryDTO) (*models.GalleryPostModel, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var gp models.GalleryPostModel
		if err := tx.First(&gp, "id = ?", id).Error; err != nil {
			return err
		}
		state := publishing.State{IsActive: gp.IsActive, PublishedAt: gp.PublishedAt}

		updates := map[string]interface{}{}
		if dto.Caption != nil {
			updates["caption"] = *dto.Caption
		}
		if dto.MediaURL != nil {
			updates["media_url"] = *dto.MediaURL
		}
		if dto.Permalink != nil {
			updates["permalink"] = *dto.Permalink
		}
		if dto.IsActive != nil {
			updates["is_active"] = *dto.IsActive
		}

		newSlug, err := publishing.ResolveSlugChange(tx, "gallery_posts", gp.Slug, gp.Caption, state, nil, dto.Caption)
		if err != nil {
			return err
		}
		if newSlug != "" {
			updates["slug"] = newSlug
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&gp).Updates(updates).Error; err != nil {
			if publishing.IsDuplicateEntry(err) {
				return &publishing.SlugConflictError{Slug: newSlug}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return s.getByID(id)
}

// TransitionStatus runs the lifecycle state machine. A post without media
// cannot be published.
func (s *Service) TransitionStatus(ctx context.Context, id, target string) (*models.GalleryPostModel, error) {
	status, err := publishing.ParseStatus(target)
	if err != nil {
		return nil, err
	}

	var gp models.GalleryPostModel
	if err := s.db.WithContext(ctx).First(&gp, "id = ?", id).Error; err != nil {
		return nil, err
	}

	cur := publishing.State{IsActive: gp.IsActive, PublishedAt: gp.PublishedAt}
	next, err := publishing.Transition(cur, status, publishing.Document{Title: gp.Caption, Body: gp.MediaURL}, time.Now())
	if err != nil {
		return nil, err
	}
	if next == cur {
		return &gp, nil
	}

	if err := s.db.WithContext(ctx).Model(&gp).Updates(map[string]interface{}{
		"is_active":    next.IsActive,
		"published_at": next.PublishedAt,
	}).Error; err != nil {
		return nil, err
	}
	gp.IsActive = next.IsActive
	gp.PublishedAt = next.PublishedAt

	s.invalidate()
	return &gp, nil
}

// Move swaps the post with its neighbor.
func (s *Service) Move(ctx context.Context, id, direction string) error {
	dir, err := publishing.ParseDirection(direction)
	if err != nil {
		return err
	}
	if err := s.orders.MoveAdjacent(ctx, galleryGroup, id, dir); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Reorder applies a full explicit ordering to the gallery.
func (s *Service) Reorder(ctx context.Context, orderedIDs []string) error {
	if err := s.orders.ReorderAll(ctx, galleryGroup, orderedIDs); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Delete removes the post and renumbers the survivors.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.orders.Remove(ctx, galleryGroup, &models.GalleryPostModel{}, id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *Service) invalidate() {
	if s.flush != nil {
		s.flush.Invalidate("gallery_posts")
	}
}

// Handler handles gallery HTTP requests.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	posts := rg.Group("/gallery")

	posts.GET("", h.list)

	authed := posts.Group("", authMW)
	authed.POST("", h.create)
	authed.PUT("/reorder", h.reorder)
	authed.PUT("/:id", h.update)
	authed.PATCH("/:id", h.update)
	authed.PATCH("/:id/status", h.transition)
	authed.PATCH("/:id/move", h.move)
	authed.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	posts, err := h.svc.List(middleware.IsAuthenticated(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	out := make([]galleryResponse, len(posts))
	for i, gp := range posts {
		out[i] = toResponse(&gp)
	}
	response.OK(c, out)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateGalleryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	gp, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		respond.Error(c, err)
		return
	}
	response.Created(c, toResponse(gp))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateGalleryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	gp, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		respond.Error(c, err)
		return
	}
	if gp == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(gp))
}

func (h *Handler) transition(c *gin.Context) {
	var dto TransitionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	gp, err := h.svc.TransitionStatus(c.Request.Context(), c.Param("id"), dto.Status)
	if err != nil {
		respond.Error(c, err)
		return
	}
	response.OK(c, toResponse(gp))
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

	if err := h.svc.Reorder(c.Request.Context(), dto.OrderedIDs); err != nil {
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
