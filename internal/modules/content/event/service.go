package event

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

// Service handles event business logic on top of the publishing engine.
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

func group(cityID *string) publishing.Group {
	var key any
	if cityID != nil {
		key = *cityID
	}
	return publishing.Group{Table: "events", Column: "city_id", Key: key}
}

// List returns events of one city group in display order. Public callers see
// only published, active events.
func (s *Service) List(q pagination.Query, lq ListQuery, isAdmin bool) ([]models.EventModel, response.Pagination, error) {
	tx := s.db.Model(&models.EventModel{}).
		Preload("City").
		Order("display_order ASC, created_at ASC")

	if lq.CityID != nil {
		tx = tx.Where("city_id = ?", *lq.CityID)
	}
	if lq.Upcoming != nil && *lq.Upcoming {
		tx = tx.Where("starts_at >= ?", time.Now())
	}
	if !isAdmin {
		tx = tx.Where("is_active = ? AND published_at IS NOT NULL", true)
	}

	var events []models.EventModel
	pag, err := pagination.Paginate(tx, q, &events)
	return events, pag, err
}

// GetByIdentifier fetches an event by ID first, then falls back to slug.
func (s *Service) GetByIdentifier(identifier string, isAdmin bool) (*models.EventModel, error) {
	var ev models.EventModel
	tx := s.db.Preload("City").Where("id = ? OR slug = ?", identifier, identifier)
	if !isAdmin {
		tx = tx.Where("is_active = ? AND published_at IS NOT NULL", true)
	}
	if err := tx.First(&ev).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ev, nil
}

// Create inserts a new event draft with a collision-free slug and the next
// display order of its city group.
func (s *Service) Create(ctx context.Context, dto *CreateEventDTO) (*models.EventModel, error) {
	ev := &models.EventModel{
		WriteBase: models.WriteBase{Title: dto.Title, Text: dto.Text},
		Venue:     dto.Venue,
		Cover:     dto.Cover,
		CityID:    dto.CityID,
		StartsAt:  dto.StartsAt,
		EndsAt:    dto.EndsAt,
	}
	ev.IsActive = true

	err := publishing.CreateWithSlug(ctx, s.db, group(dto.CityID), dto.Title, dto.Slug, func(tx *gorm.DB, slug string, order int) error {
		ev.Slug = slug
		ev.DisplayOrder = order
		return tx.Create(ev).Error
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// Update patches an event, enforcing slug immutability once published.
func (s *Service) Update(ctx context.Context, id string, dto *UpdateEventDTO) (*models.EventModel, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ev models.EventModel
		if err := tx.First(&ev, "id = ?", id).Error; err != nil {
			return err
		}
		state := publishing.State{IsActive: ev.IsActive, PublishedAt: ev.PublishedAt}

		updates := map[string]interface{}{}
		if dto.Title != nil {
			updates["title"] = *dto.Title
		}
		if dto.Text != nil {
			updates["text"] = *dto.Text
		}
		if dto.Venue != nil {
			updates["venue"] = *dto.Venue
		}
		if dto.Cover != nil {
			updates["cover"] = *dto.Cover
		}
		// A city change moves the event between sibling groups: append to
		// the destination, renumber the source after the update.
		var regroup *publishing.Regroup
		if dto.CityID != nil && groupChanged(ev.CityID, *dto.CityID) {
			r, err := publishing.PlanRegroup(tx, group(ev.CityID), group(dto.CityID), ev.ID)
			if err != nil {
				return err
			}
			regroup = r
			updates["display_order"] = r.DestOrder
		}
		if dto.CityID != nil {
			updates["city_id"] = *dto.CityID
		}
		if dto.StartsAt != nil {
			updates["starts_at"] = *dto.StartsAt
		}
		if dto.EndsAt != nil {
			updates["ends_at"] = *dto.EndsAt
		}
		if dto.IsActive != nil {
			updates["is_active"] = *dto.IsActive
		}

		newSlug, err := publishing.ResolveSlugChange(tx, "events", ev.Slug, ev.Title, state, dto.Slug, dto.Title)
		if err != nil {
			return err
		}
		oldSlug := ev.Slug
		if newSlug != "" {
			updates["slug"] = newSlug
		}

		if err := tx.Model(&ev).Updates(updates).Error; err != nil {
			if publishing.IsDuplicateEntry(err) {
				return &publishing.SlugConflictError{Slug: newSlug}
			}
			return err
		}

		if newSlug != "" && s.redirects != nil {
			if err := s.redirects.TrackTx(tx, oldSlug, "event", ev.ID); err != nil {
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
// in a single statement.
func (s *Service) TransitionStatus(ctx context.Context, id, target string) (*models.EventModel, error) {
	status, err := publishing.ParseStatus(target)
	if err != nil {
		return nil, err
	}

	var ev models.EventModel
	if err := s.db.WithContext(ctx).First(&ev, "id = ?", id).Error; err != nil {
		return nil, err
	}

	cur := publishing.State{IsActive: ev.IsActive, PublishedAt: ev.PublishedAt}
	next, err := publishing.Transition(cur, status, publishing.Document{Title: ev.Title, Body: ev.Text}, time.Now())
	if err != nil {
		return nil, err
	}
	if next == cur {
		return &ev, nil
	}

	if err := s.db.WithContext(ctx).Model(&ev).Updates(map[string]interface{}{
		"is_active":    next.IsActive,
		"published_at": next.PublishedAt,
	}).Error; err != nil {
		return nil, err
	}
	ev.IsActive = next.IsActive
	ev.PublishedAt = next.PublishedAt

	s.invalidate()
	return &ev, nil
}

// Move swaps the event with its neighbor inside its city group.
func (s *Service) Move(ctx context.Context, id, direction string) error {
	dir, err := publishing.ParseDirection(direction)
	if err != nil {
		return err
	}
	ev, err := s.GetByIdentifier(id, true)
	if err != nil {
		return err
	}
	if ev == nil {
		return gorm.ErrRecordNotFound
	}
	if err := s.orders.MoveAdjacent(ctx, group(ev.CityID), ev.ID, dir); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Reorder applies a full explicit ordering to one city group.
func (s *Service) Reorder(ctx context.Context, cityID *string, orderedIDs []string) error {
	if err := s.orders.ReorderAll(ctx, group(cityID), orderedIDs); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// Delete removes the event and renumbers its city group.
func (s *Service) Delete(ctx context.Context, id string) error {
	ev, err := s.GetByIdentifier(id, true)
	if err != nil {
		return err
	}
	if ev == nil {
		return gorm.ErrRecordNotFound
	}
	if err := s.orders.Remove(ctx, group(ev.CityID), &models.EventModel{}, ev.ID); err != nil {
		return err
	}
	if s.redirects != nil {
		s.redirects.DeleteByTargetID(ev.ID)
	}
	s.invalidate()
	return nil
}

func (s *Service) invalidate() {
	if s.flush != nil {
		s.flush.Invalidate("events")
	}
}

func groupChanged(cur *string, next string) bool {
	return cur == nil || *cur != next
}
