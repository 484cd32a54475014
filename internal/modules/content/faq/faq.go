// Package faq manages the question/answer items shown on the FAQ page.
// Items of one category form a sibling group, so admins order questions
// inside each section independently.
package faq

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

type CreateFAQDTO struct {
	Question   string  `json:"question" binding:"required"`
	Answer     string  `json:"answer"`
	CategoryID *string `json:"category_id"`
}

type UpdateFAQDTO struct {
	Question   *string `json:"question"`
	Answer     *string `json:"answer"`
	CategoryID *string `json:"category_id"`
	IsActive   *bool   `json:"is_active"`
}

type TransitionDTO struct {
	Status string `json:"status" binding:"required"`
}

type MoveDTO struct {
	Direction string `json:"direction" binding:"required"`
}

type ReorderDTO struct {
	CategoryID *string  `json:"category_id"`
	OrderedIDs []string `json:"ordered_ids" binding:"required"`
}

type faqResponse struct {
	models.FAQItemModel
	Status string `json:"status"`
}

func toResponse(item *models.FAQItemModel) faqResponse {
	return faqResponse{
		FAQItemModel: *item,
		Status:       string(publishing.DeriveStatus(item.IsActive, item.PublishedAt)),
	}
}

// Service handles FAQ business logic.
type Service struct {
	db     *gorm.DB
	orders *publishing.Manager
	flush  *cacheflush.Service
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, orders: publishing.NewManager(db)}
}

func (s *Service) SetCacheFlush(f *cacheflush.Service) { s.flush = f }

func group(categoryID *string) publishing.Group {
	var key any
	if categoryID != nil {
		key = *categoryID
	}
	return publishing.Group{Table: "faq_items", Column: "category_id", Key: key}
}

// List returns items of one category group in display order.
func (s *Service) List(categoryID *string, isAdmin bool) ([]models.FAQItemModel, error) {
	tx := s.db.Model(&models.FAQItemModel{}).
		Preload("Category").
		Order("display_order ASC, created_at ASC")
	if categoryID != nil {
		tx = tx.Where("category_id = ?", *categoryID)
	}
	if !isAdmin {
		tx = tx.Where("is_active = ? AND published_at IS NOT NULL", true)
	}

	var items []models.FAQItemModel
	err := tx.Find(&items).Error
	return items, err
}

func (s *Service) getByID(id string) (*models.FAQItemModel, error) {
	var item models.FAQItemModel
	if err := s.db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// Create inserts a new FAQ draft with a slug derived from the question.
func (s *Service) Create(ctx context.Context, dto *CreateFAQDTO) (*models.FAQItemModel, error) {
	item := &models.FAQItemModel{
		Question:   dto.Question,
		Answer:     dto.Answer,
		CategoryID: dto.CategoryID,
	}
	item.IsActive = true

	err := publishing.CreateWithSlug(ctx, s.db, group(dto.CategoryID), dto.Question, nil, func(tx *gorm.DB, slug string, order int) error {
		item.Slug = slug
		item.DisplayOrder = order
		return tx.Create(item).Error
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Update patches an FAQ item. A question edit before publishing regenerates
// the slug; after publishing the slug stays put.
func (s *Service) Update(ctx context.Context, id string, dto *UpdateFAQDTO) (*models.FAQItemModel, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.FAQItemModel
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			return err
		}
		state := publishing.State{IsActive: item.IsActive, PublishedAt: item.PublishedAt}

		updates := map[string]interface{}{}
		if dto.Question != nil {
			updates["question"] = *dto.Question
		}
		if dto.Answer != nil {
			updates["answer"] = *dto.Answer
		}
		// A category change moves the item between sibling groups: append
		// to the destination, renumber the source after the update.
		var regroup *publishing.Regroup
		if dto.CategoryID != nil && groupChanged(item.CategoryID, *dto.CategoryID) {
			r, err := publishing.PlanRegroup(tx, group(item.CategoryID), group(dto.CategoryID), item.ID)
			if err != nil {
				return err
			}
			regroup = r
			updates["display_order"] = r.DestOrder
		}
		if dto.CategoryID != nil {
			updates["category_id"] = *dto.CategoryID
		}
		if dto.IsActive != nil {
			updates["is_active"] = *dto.IsActive
		}

		newSlug, err := publishing.ResolveSlugChange(tx, "faq_items", item.Slug, item.Question, state, nil, dto.Question)
		if err != nil {
			return err
		}
		if newSlug != "" {
			updates["slug"] = newSlug
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&item).Updates(updates).Error; err != nil {
			if publishing.IsDuplicateEntry(err) {
				return &publishing.SlugConflictError{Slug: newSlug}
			}
			return err
		}
		if regroup != nil {
			return regroup.CloseGap(tx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return s.getByID(id)
}

// TransitionStatus runs the lifecycle state machine for an FAQ item. An
// item without an answer cannot be published.
func (s *Service) TransitionStatus(ctx context.Context, id, target string) (*models.FAQItemModel, error) {
	status, err := publishing.ParseStatus(target)
	if err != nil {
		return nil, err
	}

	var item models.FAQItemModel
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}

	cur := publishing.State{IsActive: item.IsActive, PublishedAt: item.PublishedAt}
	next, err := publishing.Transition(cur, status, publishing.Document{Title: item.Question, Body: item.Answer}, time.Now())
	if err != nil {
		return nil, err
	}
	if next == cur {
		return &item, nil
	}

	if err := s.db.WithContext(ctx).Model(&item).Updates(map[string]interface{}{
		"is_active":    next.IsActive,
		"published_at": next.PublishedAt,
	}).Error; err != nil {
		return nil, err
	}
	item.IsActive = next.IsActive
	item.PublishedAt = next.PublishedAt

	s.invalidate()
	return &item, nil
}

// Move swaps the item with its neighbor inside its category group.
func (s *Service) Move(ctx context.Context, id, direction string) error {
	dir, err := publishing.ParseDirection(direction)
	if err != nil {
		return err
	}
	item, err := s.getByID(id)
	if err != nil {
		return err
	}
	if item == nil {
		return gorm.ErrRecordNotFound
	}
	if err := s.orders.MoveAdjacent(ctx, group(item.CategoryID), item.ID, dir); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Reorder applies a full explicit ordering to one category group.
func (s *Service) Reorder(ctx context.Context, categoryID *string, orderedIDs []string) error {
	if err := s.orders.ReorderAll(ctx, group(categoryID), orderedIDs); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Delete removes the item and renumbers its category group.
func (s *Service) Delete(ctx context.Context, id string) error {
	item, err := s.getByID(id)
	if err != nil {
		return err
	}
	if item == nil {
		return gorm.ErrRecordNotFound
	}
	if err := s.orders.Remove(ctx, group(item.CategoryID), &models.FAQItemModel{}, item.ID); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *Service) invalidate() {
	if s.flush != nil {
		s.flush.Invalidate("faq_items")
	}
}

func groupChanged(cur *string, next string) bool {
	return cur == nil || *cur != next
}

// Handler handles FAQ HTTP requests.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	faqs := rg.Group("/faqs")

	faqs.GET("", h.list)

	authed := faqs.Group("", authMW)
	authed.POST("", h.create)
	authed.PUT("/reorder", h.reorder)
	authed.PUT("/:id", h.update)
	authed.PATCH("/:id", h.update)
	authed.PATCH("/:id/status", h.transition)
	authed.PATCH("/:id/move", h.move)
	authed.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	var categoryID *string
	if v := c.Query("category_id"); v != "" {
		categoryID = &v
	}

	items, err := h.svc.List(categoryID, middleware.IsAuthenticated(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	out := make([]faqResponse, len(items))
	for i, item := range items {
		out[i] = toResponse(&item)
	}
	response.OK(c, out)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateFAQDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		respond.Error(c, err)
		return
	}
	response.Created(c, toResponse(item))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateFAQDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		respond.Error(c, err)
		return
	}
	if item == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(item))
}

func (h *Handler) transition(c *gin.Context) {
	var dto TransitionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	item, err := h.svc.TransitionStatus(c.Request.Context(), c.Param("id"), dto.Status)
	if err != nil {
		respond.Error(c, err)
		return
	}
	response.OK(c, toResponse(item))
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

	if err := h.svc.Reorder(c.Request.Context(), dto.CategoryID, dto.OrderedIDs); err != nil {
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
