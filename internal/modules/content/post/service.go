package post

import (
	"context"
	"errors"
	"time"

	"github.com/akshayrajput12/chronical-sub004/internal/models"
	"github.com/akshayrajput12/chronical-sub004/internal/modules/system/redirect"
	"github.com/akshayrajput12/chronical-sub004/internal/pkg/cacheflush"
	"github.com/akshayrajput12/chronical-sub004/internal/pkg/pagination"
	"github.com/akshayrajput12/chronical-sub004/internal/pkg/response"
	"github.com/akshayrajput12/chronical-sub004/internal/publishing"
	"gorm.io/gorm"
)

// Service handles blog post business logic on top of the publishing engine.
type Service struct {
	db        *gorm.DB
	orders    *publishing.Manager
	redirects *redirect.Service
	flush     *cacheflush.Service
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, orders: publishing.NewManager(db)}
}

// SetRedirects wires old-slug redirect tracking (optional).
func (s *Service) SetRedirects(r *redirect.Service) { s.redirects = r }

// SetCacheFlush wires page-cache invalidation (optional).
func (s *Service) SetCacheFlush(f *cacheflush.Service) { s.flush = f }

func group(categoryID *string) publishing.Group {
	var key any
	if categoryID != nil {
		key = *categoryID
	}
	return publishing.Group{Table: "posts", Column: "category_id", Key: key}
}

// List returns a paginated list of posts in display order. Non-admin callers
// only see published, active posts.
func (s *Service) List(q pagination.Query, lq ListQuery, isAdmin bool) ([]models.PostModel, response.Pagination, error) {
	tx := s.db.Model(&models.PostModel{}).
		Preload("Category").
		Order("display_order ASC, created_at ASC")

	if lq.CategoryID != nil {
		tx = tx.Where("category_id = ?", *lq.CategoryID)
	}
	if lq.Tag != nil {
		tx = tx.Where("JSON_CONTAINS(tags, JSON_QUOTE(?))", *lq.Tag)
	}
	if !isAdmin {
		tx = tx.Where("is_active = ? AND published_at IS NOT NULL", true)
	}

	var posts []models.PostModel
	pag, err := pagination.Paginate(tx, q, &posts)
	return posts, pag, err
}

// GetByIdentifier fetches a post by ID first, then falls back to slug.
func (s *Service) GetByIdentifier(identifier string, isAdmin bool) (*models.PostModel, error) {
	var post models.PostModel
	tx := s.db.Preload("Category").Where("id = ? OR slug = ?", identifier, identifier)
	if !isAdmin {
		tx = tx.Where("is_active = ? AND published_at IS NOT NULL", true)
	}
	if err := tx.First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Create inserts a new draft: slug generated (or manual slug validated) and
// the next display order claimed, atomically with the insert.
func (s *Service) Create(ctx context.Context, dto *CreatePostDTO) (*models.PostModel, error) {
	post := &models.PostModel{
		WriteBase:  models.WriteBase{Title: dto.Title, Text: dto.Text},
		Summary:    dto.Summary,
		Cover:      dto.Cover,
		CategoryID: dto.CategoryID,
		Tags:       dto.Tags,
	}
	post.IsActive = true

	err := publishing.CreateWithSlug(ctx, s.db, group(dto.CategoryID), dto.Title, dto.Slug, func(tx *gorm.DB, slug string, order int) error {
		post.Slug = slug
		post.DisplayOrder = order
		return tx.Create(post).Error
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

// Update patches a post. Changing the slug of a published post is rejected;
// a pre-publish title change regenerates the slug and records a redirect.
func (s *Service) Update(ctx context.Context, id string, dto *UpdatePostDTO) (*models.PostModel, error) {
	var post *models.PostModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post = new(models.PostModel)
		if err := tx.First(post, "id = ?", id).Error; err != nil {
			return err
		}
		state := publishing.State{IsActive: post.IsActive, PublishedAt: post.PublishedAt}

		updates := map[string]interface{}{}
		applyIf(updates, "text", dto.Text)
		applyIf(updates, "summary", dto.Summary)
		applyIf(updates, "cover", dto.Cover)

		// A category change moves the post between sibling groups: it is
		// appended to the destination and the source is renumbered below,
		// so both groups keep their dense range.
		var regroup *publishing.Regroup
		if dto.CategoryID != nil && groupChanged(post.CategoryID, *dto.CategoryID) {
			r, err := publishing.PlanRegroup(tx, group(post.CategoryID), group(dto.CategoryID), post.ID)
			if err != nil {
				return err
			}
			regroup = r
			updates["display_order"] = r.DestOrder
		}
		if dto.CategoryID != nil {
			updates["category_id"] = *dto.CategoryID
		}
		if dto.Tags != nil {
			updates["tags"] = models.StringSlice(dto.Tags)
		}
		if dto.IsActive != nil {
			updates["is_active"] = *dto.IsActive
		}
		if dto.Title != nil {
			updates["title"] = *dto.Title
		}

		newSlug, err := publishing.ResolveSlugChange(tx, "posts", post.Slug, post.Title, state, dto.Slug, dto.Title)
		if err != nil {
			return err
		}
		oldSlug := post.Slug
		if newSlug != "" {
			updates["slug"] = newSlug
		}

		if err := tx.Model(post).Updates(updates).Error; err != nil {
			if publishing.IsDuplicateEntry(err) {
				return &publishing.SlugConflictError{Slug: newSlug}
			}
			return err
		}

		if newSlug != "" && s.redirects != nil {
			if err := s.redirects.TrackTx(tx, oldSlug, "post", post.ID); err != nil {
				return err
			}
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
	return s.GetByIdentifier(id, true)
}

// TransitionStatus runs the lifecycle state machine and persists both flags
// in a single statement so stored state and derived status cannot diverge.
func (s *Service) TransitionStatus(ctx context.Context, id, target string) (*models.PostModel, error) {
	status, err := publishing.ParseStatus(target)
	if err != nil {
		return nil, err
	}

	var post models.PostModel
	if err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}

	cur := publishing.State{IsActive: post.IsActive, PublishedAt: post.PublishedAt}
	next, err := publishing.Transition(cur, status, publishing.Document{Title: post.Title, Body: post.Text}, time.Now())
	if err != nil {
		return nil, err
	}
	if next == cur {
		return &post, nil
	}

	if err := s.db.WithContext(ctx).Model(&post).Updates(map[string]interface{}{
		"is_active":    next.IsActive,
		"published_at": next.PublishedAt,
	}).Error; err != nil {
		return nil, err
	}
	post.IsActive = next.IsActive
	post.PublishedAt = next.PublishedAt

	s.invalidate()
	return &post, nil
}

// Move swaps the post with its neighbor inside its category group.
func (s *Service) Move(ctx context.Context, id, direction string) error {
	dir, err := publishing.ParseDirection(direction)
	if err != nil {
		return err
	}
	post, err := s.GetByIdentifier(id, true)
	if err != nil {
		return err
	}
	if post == nil {
		return gorm.ErrRecordNotFound
	}
	if err := s.orders.MoveAdjacent(ctx, group(post.CategoryID), post.ID, dir); err != nil {
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

// Delete removes the post and renumbers its siblings in one transaction.
func (s *Service) Delete(ctx context.Context, id string) error {
	post, err := s.GetByIdentifier(id, true)
	if err != nil {
		return err
	}
	if post == nil {
		return gorm.ErrRecordNotFound
	}
	if err := s.orders.Remove(ctx, group(post.CategoryID), &models.PostModel{}, post.ID); err != nil {
		return err
	}
	if s.redirects != nil {
		s.redirects.DeleteByTargetID(post.ID)
	}
	s.invalidate()
	return nil
}

func (s *Service) invalidate() {
	if s.flush != nil {
		s.flush.Invalidate("posts")
	}
}

func applyIf(updates map[string]interface{}, column string, v *string) {
	if v != nil {
		updates[column] = *v
	}
}

func groupChanged(cur *string, next string) bool {
	return cur == nil || *cur != next
}
