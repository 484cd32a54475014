// Package city manages the city landing pages. All cities share a single
// global sibling group that orders the destinations navigation.
package city

import (
	"context"
	"errors"
	"time"

	"github.com/akshayrajput12/chronical-sub004/internal/middleware"
	"github.com/akshayrajput12/chronical-sub004/internal/models"
	"github.com/akshayrajput12/chronical-sub004/internal/modules/content/respond"
	"github.com/akshayrajput12/chronical-sub004/internal/modules/system/redirect"
	"github.com/akshayrajput12/chronical-sub004/internal/pkg/cacheflush"
	"github.com/akshayrajput12/chronical-sub004/internal/pkg/markdown"
	"github.com/akshayrajput12/chronical-sub004/internal/pkg/response"
	"github.com/akshayrajput12/chronical-sub004/internal/publishing"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateCityDTO struct {
	Name      string `json:"name"  binding:"required"`
	Title     string `json:"title" binding:"required"`
	Text      string `json:"text"`
	Country   string `json:"country"`
	HeroImage string `json:"hero_image"`
}

type UpdateCityDTO struct {
	Name      *string `json:"name"`
	Title     *string `json:"title"`
	Text      *string `json:"text"`
	Country   *string `json:"country"`
	HeroImage *string `json:"hero_image"`
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

type cityResponse struct {
	models.CityModel
	Status string `json:"status"`
	HTML   string `json:"html,omitempty"`
}

func toResponse(city *models.CityModel, html string) cityResponse {
	return cityResponse{
		CityModel: *city,
		Status:    string(publishing.DeriveStatus(city.IsActive, city.PublishedAt)),
		HTML:      html,
	}
}

var cityGroup = publishing.Group{Table: "cities"}

// Service handles city business logic.
type Service struct {
	db        *gorm.DB
	orders    *publishing.Manager
	redirects *redirect.Service
	flush     *cacheflush.Service
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, orders: publishing.NewManager(db)}
}

func (s *Service) SetRedirects(r *redirect.Service) { s.redirects = r }

func (s *Service) SetCacheFlush(f *cacheflush.Service) { s.flush = f }

// List returns cities in display order.
func (s *Service) List(isAdmin bool) ([]models.CityModel, error) {
	tx := s.db.Model(&models.CityModel{}).
		Order("display_order ASC, created_at ASC")
	if !isAdmin {
		tx = tx.Where("is_active = ? AND published_at IS NOT NULL", true)
	}

	var cities []models.CityModel
	err := tx.Find(&cities).Error
	return cities, err
}

// GetByIdentifier fetches a city by ID first, then falls back to slug.
func (s *Service) GetByIdentifier(identifier string, isAdmin bool) (*models.CityModel, error) {
	var city models.CityModel
	tx := s.db.Where("id = ? OR slug = ?", identifier, identifier)
	if !isAdmin {
		tx = tx.Where("is_active = ? AND published_at IS NOT NULL", true)
	}
	if err := tx.First(&city).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &city, nil
}

// Create inserts a new city draft with a slug derived from the city name.
func (s *Service) Create(ctx context.Context, dto *CreateCityDTO) (*models.CityModel, error) {
	city := &models.CityModel{
		WriteBase: models.WriteBase{Title: dto.Title, Text: dto.Text},
		Name:      dto.Name,
		Country:   dto.Country,
		HeroImage: dto.HeroImage,
	}
	city.IsActive = true

	err := publishing.CreateWithSlug(ctx, s.db, cityGroup, dto.Name, nil, func(tx *gorm.DB, slug string, order int) error {
		city.Slug = slug
		city.DisplayOrder = order
		return tx.Create(city).Error
	})
	if err != nil {
		return nil, err
	}
	return city, nil
}

// Update patches a city, regenerating the slug on a pre-publish rename.
func (s *Service) Update(ctx context.Context, id string, dto *UpdateCityDTO) (*models.CityModel, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var city models.CityModel
		if err := tx.First(&city, "id = ?", id).Error; err != nil {
			return err
		}
		state := publishing.State{IsActive: city.IsActive, PublishedAt: city.PublishedAt}

		updates := map[string]interface{}{}
		if dto.Name != nil {
			updates["name"] = *dto.Name
		}
		if dto.Title != nil {
			updates["title"] = *dto.Title
		}
		if dto.Text != nil {
			updates["text"] = *dto.Text
		}
		if dto.Country != nil {
			updates["country"] = *dto.Country
		}
		if dto.HeroImage != nil {
			updates["hero_image"] = *dto.HeroImage
		}
		if dto.IsActive != nil {
			updates["is_active"] = *dto.IsActive
		}

		newSlug, err := publishing.ResolveSlugChange(tx, "cities", city.Slug, city.Name, state, nil, dto.Name)
		if err != nil {
			return err
		}
		oldSlug := city.Slug
		if newSlug != "" {
			updates["slug"] = newSlug
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&city).Updates(updates).Error; err != nil {
			if publishing.IsDuplicateEntry(err) {
				return &publishing.SlugConflictError{Slug: newSlug}
			}
			return err
		}

		if newSlug != "" && s.redirects != nil {
			return s.redirects.TrackTx(tx, oldSlug, "city", city.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return s.GetByIdentifier(id, true)
}

// TransitionStatus runs the lifecycle state machine for a city page.
func (s *Service) TransitionStatus(ctx context.Context, id, target string) (*models.CityModel, error) {
	status, err := publishing.ParseStatus(target)
	if err != nil {
		return nil, err
	}

	var city models.CityModel
	if err := s.db.WithContext(ctx).First(&city, "id = ?", id).Error; err != nil {
		return nil, err
	}

	cur := publishing.State{IsActive: city.IsActive, PublishedAt: city.PublishedAt}
	next, err := publishing.Transition(cur, status, publishing.Document{Title: city.Title, Body: city.Text}, time.Now())
	if err != nil {
		return nil, err
	}
	if next == cur {
		return &city, nil
	}

	if err := s.db.WithContext(ctx).Model(&city).Updates(map[string]interface{}{
		"is_active":    next.IsActive,
		"published_at": next.PublishedAt,
	}).Error; err != nil {
		return nil, err
	}
	city.IsActive = next.IsActive
	city.PublishedAt = next.PublishedAt

	s.invalidate()
	return &city, nil
}

// Move swaps the city with its neighbor.
func (s *Service) Move(ctx context.Context, id, direction string) error {
	dir, err := publishing.ParseDirection(direction)
	if err != nil {
		return err
	}
	if err := s.orders.MoveAdjacent(ctx, cityGroup, id, dir); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Reorder applies a full explicit ordering to the city list.
func (s *Service) Reorder(ctx context.Context, orderedIDs []string) error {
	if err := s.orders.ReorderAll(ctx, cityGroup, orderedIDs); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Delete removes a city and renumbers the survivors. A city that still has
// events cannot be deleted.
func (s *Service) Delete(ctx context.Context, id string) error {
	city, err := s.GetByIdentifier(id, true)
	if err != nil {
		return err
	}
	if city == nil {
		return gorm.ErrRecordNotFound
	}

	var events int64
	if err := s.db.Table("events").
		Where("city_id = ? AND deleted_at IS NULL", city.ID).
		Count(&events).Error; err != nil {
		return err
	}
	if events > 0 {
		return &publishing.ValidationError{Reason: "city still has events"}
	}

	if err := s.orders.Remove(ctx, cityGroup, &models.CityModel{}, city.ID); err != nil {
		return err
	}
	if s.redirects != nil {
		s.redirects.DeleteByTargetID(city.ID)
	}
	s.invalidate()
	return nil
}

func (s *Service) invalidate() {
	if s.flush != nil {
		s.flush.Invalidate("cities")
	}
}

// Handler handles city HTTP requests.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	cities := rg.Group("/cities")

	cities.GET("", h.list)
	cities.GET("/:identifier", h.get)

	authed := cities.Group("", authMW)
	authed.POST("", h.create)
	authed.PUT("/reorder", h.reorder)
	authed.PUT("/:id", h.update)
	authed.PATCH("/:id", h.update)
	authed.PATCH("/:id/status", h.transition)
	authed.PATCH("/:id/move", h.move)
	authed.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	cities, err := h.svc.List(middleware.IsAuthenticated(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	out := make([]cityResponse, len(cities))
	for i, city := range cities {
		out[i] = toResponse(&city, "")
	}
	response.OK(c, out)
}

func (h *Handler) get(c *gin.Context) {
	isAdmin := middleware.IsAuthenticated(c)

	city, err := h.svc.GetByIdentifier(c.Param("identifier"), isAdmin)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if city == nil {
		response.NotFound(c)
		return
	}

	html := ""
	if !isAdmin {
		if html, err = markdown.Render(city.Text); err != nil {
			response.InternalError(c, err)
			return
		}
	}
	response.OK(c, toResponse(city, html))
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateCityDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	city, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		respond.Error(c, err)
		return
	}
	response.Created(c, toResponse(city, ""))
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateCityDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	city, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		respond.Error(c, err)
		return
	}
	if city == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(city, ""))
}

func (h *Handler) transition(c *gin.Context) {
	var dto TransitionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	city, err := h.svc.TransitionStatus(c.Request.Context(), c.Param("id"), dto.Status)
	if err != nil {
		respond.Error(c, err)
		return
	}
	response.OK(c, toResponse(city, ""))
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
