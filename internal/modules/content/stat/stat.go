// Package stat manages the headline figures rendered on landing pages
// ("250+ projects delivered"). Entries sharing a section key form one
// sibling group.
package stat

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

type CreateStatDTO struct {
	Label   string `json:"label"   binding:"required"`
	Value   int    `json:"value"`
	Suffix  string `json:"suffix"`
	Section string `json:"section" binding:"required"`
}

type UpdateStatDTO struct {
	Label    *string `json:"label"`
	Value    *int    `json:"value"`
	Suffix   *string `json:"suffix"`
	IsActive *bool   `json:"is_active"`
}

type TransitionDTO struct {
	Status string `json:"status" binding:"required"`
}

type MoveDTO struct {
	Direction string `json:"direction" binding:"required"`
}

type ReorderDTO struct {
	Section    string   `json:"section"     binding:"required"`
	OrderedIDs []string `json:"ordered_ids" binding:"required"`
}

type statResponse struct {
	models.StatModel
	Status string `json:"status"`
}

func toResponse(st *models.StatModel) statResponse {
	return statResponse{
		StatModel: *st,
		Status:    string(publishing.DeriveStatus(st.IsActive, st.PublishedAt)),
	}
}

// Service handles stat business logic.
type Service struct {
	db     *gorm.DB
	orders *publishing.Manager
	flush  *cacheflush.Service
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, orders: publishing.NewManager(db)}
}

func (s *Service) SetCacheFlush(f *cacheflush.Service) { s.flush = f }

func group(section string) publishing.Group {
	return publishing.Group{Table: "stats", Column: "section", Key: section}
}

// List returns the entries of one section in display order. An empty
// section returns every entry.
func (s *Service) List(section string, isAdmin bool) ([]models.StatModel, error) {
	tx := s.db.Model(&models.StatModel{}).
		Order("section ASC, display_order ASC, created_at ASC")
	if section != "" {
		tx = tx.Where("section = ?", section)
	}
	if !isAdmin {
		tx = tx.Where("is_active = ? AND published_at IS NOT NULL", true)
	}

	var stats []models.StatModel
	err := tx.Find(&stats).Error
	return stats, err
}

func (s *Service) getByID(id string) (*models.StatModel, error) {
	var st models.StatModel
	if err := s.db.First(&st, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &st, nil
}

// Create appends a new stat draft to its section.
func (s *Service) Create(ctx context.Context, dto *CreateStatDTO) (*models.StatModel, error) {
	st := &models.StatModel{
		Label:   dto.Label,
		Value:   dto.Value,
		Suffix:  dto.Suffix,
		Section: dto.Section,
	}
	st.IsActive = true

	err := publishing.CreateWithSlug(ctx, s.db, group(dto.Section), dto.Label, nil, func(tx *gorm.DB, slug string, order int) error {
		st.Slug = slug
		st.DisplayOrder = order
		return tx.Create(st).Error
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// Update patches a stat entry. The section is fixed at creation; moving an
// entry between sections means deleting and recreating it.
func (s *Service) Update(ctx context.Context, id string, dto *UpdateStatDTO) (*models.StatModel, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var st models.StatModel
		if err := tx.First(&st, "id = ?", id).Error; err != nil {
			return err
		}
		state := publishing.State{IsActive: st.IsActive, PublishedAt: st.PublishedAt}

		updates := map[string]interface{}{}
		if dto.Label != nil {
			updates["label"] = *dto.Label
		}
		if dto.Value != nil {
			updates["value"] = *dto.Value
		}
		if dto.Suffix != nil {
			updates["suffix"] = *dto.Suffix
		}
		if dto.IsActive != nil {
			updates["is_active"] = *dto.IsActive
		}

		newSlug, err := publishing.ResolveSlugChange(tx, "stats", st.Slug, st.Label, state, nil, dto.Label)
		if err != nil {
			return err
		}
		if newSlug != "" {
			updates["slug"] = newSlug
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&st).Updates(updates).Error; err != nil {
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

// TransitionStatus runs the lifecycle state machine for a stat entry.
func (s *Service) TransitionStatus(ctx context.Context, id, target string) (*models.StatModel, error) {
	status, err := publishing.ParseStatus(target)
	if err != nil {
		return nil, err
	}

	var st models.StatModel
	if err := s.db.WithContext(ctx).First(&st, "id = ?", id).Error; err != nil {
		return nil, err
	}

	cur := publishing.State{IsActive: st.IsActive, PublishedAt: st.PublishedAt}
	next, err := publishing.Transition(cur, status, publishing.Document{Title: st.Label, Body: st.Section}, time.Now())
	if err != nil {
		return nil, err
	}
	if next == cur {
		return &st, nil
	}

	if err := s.db.WithContext(ctx).Model(&st).Updates(map[string]interface{}{
		"is_active":    next.IsActive,
		"published_at": next.PublishedAt,
	}).Error; err != nil {
		return nil, err
	}
	st.IsActive = next.IsActive
	st.PublishedAt = next.PublishedAt

	s.invalidate()
	return &st, nil
}

// Move swaps the entry with its neighbor inside its section.
func (s *Service) Move(ctx context.Context, id, direction string) error {
	dir, err := publishing.ParseDirection(direction)
	if err != nil {
		return err
	}
	st, err := s.getByID(id)
	if err != nil {
		return err
	}
	if st == nil {
		return gorm.ErrRecordNotFound
	}
	if err := s.orders.MoveAdjacent(ctx, group(st.Section), st.ID, dir); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Reorder applies a full explicit ordering to one section.
func (s *Service) Reorder(ctx context.Context, section string, orderedIDs []string) error {
	if err := s.orders.ReorderAll(ctx, group(section), orderedIDs); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Delete removes the entry and renumbers its section.
func (s *Service) Delete(ctx context.Context, id string) error {
	st, err := s.getByID(id)
	if err != nil {
		return err
	}
	if st == nil {
		return gorm.ErrRecordNotFound
	}
	if err := s.orders.Remove(ctx, group(st.Section), &models.StatModel{}, st.ID); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *Service) invalidate() {
	if s.flush != nil {
		s.flush.Invalidate("stats")
	}
}

// Handler handles stat HTTP requests.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	stats := rg.Group("/stats")

	stats.GET("", h.list)

	authed := stats.Group("", authMW)
	authed.POST("", h.create)
	authed.PUT("/reorder", h.reorder)
	authed.PUT("/:id", h.update)
	authed.PATCH("/:id", h.update)
	authed.PATCH("/:id/status", h.transition)
	authed.PATCH("/:id/move", h.move)
	authed.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	stats, err := h.svc.List(c.Query("section"), middleware.IsAuthenticated(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	out := make([]statResponse, len(stats))
	for i, st := range stats {
		out[i] = toResponse(&st)
	}
	response.OK(c, out)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateStatDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	st, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		respond.Error(c, err)
		return
	}
	response.Created(c, toResponse(st))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateStatDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	st, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		respond.Error(c, err)
		return
	}
	if st == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(st))
}

func (h *Handler) transition(c *gin.Context) {
	var dto TransitionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	st, err := h.svc.TransitionStatus(c.Request.Context(), c.Param("id"), dto.Status)
	if err != nil {
		respond.Error(c, err)
		return
	}
	response.OK(c, toResponse(st))
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

	if err := h.svc.Reorder(c.Request.Context(), dto.Section, dto.OrderedIDs); err != nil {
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
