package category

import (
	"context"
	"errors"
	"time"

	"github.com/akshayrajput12/chronical-sub004/internal/models"
	"github.com/akshayrajput12/chronical-sub004/internal/modules/system/redirect"
	"github.com/akshayrajput12/chronical-sub004/internal/pkg/cacheflush"
	"github.com/akshayrajput12/chronical-sub004/internal/publishing"
	"gorm.io/gorm"
)

// CreateCategoryDTO is the request body for creating a category. Categories
// accept an editor-chosen slug; a conflicting one is rejected outright.
type CreateCategoryDTO struct {
	Name string  `json:"name" binding:"required"`
	Slug *string `json:"slug"`
	Kind *int    `json:"kind"`
}

// UpdateCategoryDTO is the request body for patching a category.
type UpdateCategoryDTO struct {
	Name     *string `json:"name"`
	Slug     *string `json:"slug"`
	IsActive *bool   `json:"is_active"`
}

// TransitionDTO carries the requested lifecycle status.
type TransitionDTO struct {
	Status string `json:"status" binding:"required"`
}

// MoveDTO carries the adjacent-move direction.
type MoveDTO struct {
	Direction string `json:"direction" binding:"required"`
}

// ReorderDTO carries a full explicit ordering for one kind group.
type ReorderDTO struct {
	Kind       int      `json:"kind"`
	OrderedIDs []string `json:"ordered_ids" binding:"required"`
}

type categoryResponse struct {
	models.CategoryModel
	Status string `json:"status"`
}

func toResponse(cat *models.CategoryModel) categoryResponse {
	return categoryResponse{
		CategoryModel: *cat,
		Status:        string(publishing.DeriveStatus(cat.IsActive, cat.PublishedAt)),
	}
}

// Service handles category business logic.
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

// Categories of one kind form a sibling group: blog categories order the
// blog navigation, FAQ categories order the FAQ page sections.
func group(kind models.CategoryKind) publishing.Group {
	return publishing.Group{Table: "categories", Column: "kind", Key: int(kind)}
}

// List returns categories of one kind in display order.
func (s *Service) List(kind models.CategoryKind, isAdmin bool) ([]models.CategoryModel, error) {
	tx := s.db.Model(&models.CategoryModel{}).
		Where("kind = ?", kind).
		Order("display_order ASC, created_at ASC")
	if !isAdmin {
		tx = tx.Where("is_active = ? AND published_at IS NOT NULL", true)
	}

	var cats []models.CategoryModel
	err := tx.Find(&cats).Error
	return cats, err
}

// GetByIdentifier fetches a category by ID first, then falls back to slug.
func (s *Service) GetByIdentifier(identifier string, isAdmin bool) (*models.CategoryModel, error) {
	var cat models.CategoryModel
	tx := s.db.Where("id = ? OR slug = ?", identifier, identifier)
	if !isAdmin {
		tx = tx.Where("is_active = ? AND published_at IS NOT NULL", true)
	}
	if err := tx.First(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

// Create inserts a new category draft. The slug is generated from the name
// unless the editor supplied one.
func (s *Service) Create(ctx context.Context, dto *CreateCategoryDTO) (*models.CategoryModel, error) {
	kind := models.CategoryKindBlog
	if dto.Kind != nil {
		kind = models.CategoryKind(*dto.Kind)
	}

	cat := &models.CategoryModel{Name: dto.Name, Kind: kind}
	cat.IsActive = true

	err := publishing.CreateWithSlug(ctx, s.db, group(kind), dto.Name, dto.Slug, func(tx *gorm.DB, slug string, order int) error {
		cat.Slug = slug
		cat.DisplayOrder = order
		return tx.Create(cat).Error
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// Update patches a category. A manual slug on a published category is
// rejected; a rename before publishing regenerates the slug.
func (s *Service) Update(ctx context.Context, id string, dto *UpdateCategoryDTO) (*models.CategoryModel, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cat models.CategoryModel
		if err := tx.First(&cat, "id = ?", id).Error; err != nil {
			return err
		}
		state := publishing.State{IsActive: cat.IsActive, PublishedAt: cat.PublishedAt}

		updates := map[string]interface{}{}
		if dto.Name != nil {
			updates["name"] = *dto.Name
		}
		if dto.IsActive != nil {
			updates["is_active"] = *dto.IsActive
		}

		newSlug, err := publishing.ResolveSlugChange(tx, "categories", cat.Slug, cat.Name, state, dto.Slug, dto.Name)
		if err != nil {
			return err
		}
		oldSlug := cat.Slug
		if newSlug != "" {
			updates["slug"] = newSlug
		}
		if len(updates) == 0 {
			return nil
		}

		if err := tx.Model(&cat).Updates(updates).Error; err != nil {
			if publishing.IsDuplicateEntry(err) {
				return &publishing.SlugConflictError{Slug: newSlug}
			}
			return err
		}

		if newSlug != "" && s.redirects != nil {
			return s.redirects.TrackTx(tx, oldSlug, "category", cat.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate()
	return s.GetByIdentifier(id, true)
}

// TransitionStatus runs the lifecycle state machine for a category.
func (s *Service) TransitionStatus(ctx context.Context, id, target string) (*models.CategoryModel, error) {
	status, err := publishing.ParseStatus(target)
	if err != nil {
		return nil, err
	}

	var cat models.CategoryModel
	if err := s.db.WithContext(ctx).First(&cat, "id = ?", id).Error; err != nil {
		return nil, err
	}

	cur := publishing.State{IsActive: cat.IsActive, PublishedAt: cat.PublishedAt}
	// A category has no body; the name stands in for both completeness
	// fields, so publishing only requires a non-empty name.
	next, err := publishing.Transition(cur, status, publishing.Document{Title: cat.Name, Body: cat.Name}, time.Now())
	if err != nil {
		return nil, err
	}
	if next == cur {
		return &cat, nil
	}

	if err := s.db.WithContext(ctx).Model(&cat).Updates(map[string]interface{}{
		"is_active":    next.IsActive,
		"published_at": next.PublishedAt,
	}).Error; err != nil {
		return nil, err
	}
	cat.IsActive = next.IsActive
	cat.PublishedAt = next.PublishedAt

	s.invalidate()
	return &cat, nil
}

// Move swaps the category with its neighbor inside its kind group.
func (s *Service) Move(ctx context.Context, id, direction string) error {
	dir, err := publishing.ParseDirection(direction)
	if err != nil {
		return err
	}
	cat, err := s.GetByIdentifier(id, true)
	if err != nil {
		return err
	}
	if cat == nil {
		return gorm.ErrRecordNotFound
	}
	if err := s.orders.MoveAdjacent(ctx, group(cat.Kind), cat.ID, dir); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Reorder applies a full explicit ordering to one kind group.
func (s *Service) Reorder(ctx context.Context, kind models.CategoryKind, orderedIDs []string) error {
	if err := s.orders.ReorderAll(ctx, group(kind), orderedIDs); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Delete removes an empty category and renumbers its kind group. A category
// still holding posts or FAQ items cannot be deleted.
func (s *Service) Delete(ctx context.Context, id string) error {
	cat, err := s.GetByIdentifier(id, true)
	if err != nil {
		return err
	}
	if cat == nil {
		return gorm.ErrRecordNotFound
	}

	var children int64
	table := "posts"
	if cat.Kind == models.CategoryKindFAQ {
		table = "faq_items"
	}
	if err := s.db.Table(table).
		Where("category_id = ? AND deleted_at IS NULL", cat.ID).
		Count(&children).Error; err != nil {
		return err
	}
	if children > 0 {
		return &publishing.ValidationError{Reason: "category still has content"}
	}

	if err := s.orders.Remove(ctx, group(cat.Kind), &models.CategoryModel{}, cat.ID); err != nil {
		return err
	}
	if s.redirects != nil {
		s.redirects.DeleteByTargetID(cat.ID)
	}
	s.invalidate()
	return nil
}

func (s *Service) invalidate() {
	if s.flush != nil {
		s.flush.Invalidate("categories")
	}
}
