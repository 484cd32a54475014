package event

import (
	"time"

	"github.com/akshayrajput12/chronical-sub004/internal/models"
	"github.com/akshayrajput12/chronical-sub004/internal/publishing"
)

// CreateEventDTO is the request body for creating an event draft.
type CreateEventDTO struct {
	Title    string     `json:"title" binding:"required"`
	Text     string     `json:"text"`
	Venue    string     `json:"venue"`
	Cover    string     `json:"cover"`
	Slug     *string    `json:"slug"`
	CityID   *string    `json:"city_id"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

// UpdateEventDTO is the request body for updating an event.
type UpdateEventDTO struct {
	Title    *string    `json:"title"`
	Text     *string    `json:"text"`
	Venue    *string    `json:"venue"`
	Cover    *string    `json:"cover"`
	Slug     *string    `json:"slug"`
	CityID   *string    `json:"city_id"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
	IsActive *bool      `json:"is_active"`
}

// TransitionDTO requests a lifecycle status change.
type TransitionDTO struct {
	Status string `json:"status" binding:"required"`
}

// MoveDTO requests an adjacent reorder.
type MoveDTO struct {
	Direction string `json:"direction" binding:"required"`
}

// ReorderDTO submits a full explicit ordering for one city's events.
type ReorderDTO struct {
	CityID     *string  `json:"city_id"`
	OrderedIDs []string `json:"ordered_ids" binding:"required"`
}

// ListQuery holds query params for listing events.
type ListQuery struct {
	CityID   *string `form:"city_id"`
	Upcoming *bool   `form:"upcoming"`
}

type eventResponse struct {
	ID           string            `json:"id"`
	Slug         string            `json:"slug"`
	Title        string            `json:"title"`
	Text         string            `json:"text"`
	Venue        string            `json:"venue"`
	Cover        string            `json:"cover"`
	CityID       *string           `json:"city_id"`
	City         interface{}       `json:"city,omitempty"`
	StartsAt     *time.Time        `json:"starts_at"`
	EndsAt       *time.Time        `json:"ends_at"`
	Status       publishing.Status `json:"status"`
	IsActive     bool              `json:"is_active"`
	PublishedAt  *time.Time        `json:"published_at"`
	DisplayOrder int               `json:"display_order"`
	Created      time.Time         `json:"created"`
	Modified     time.Time         `json:"modified"`
}

func toResponse(e *models.EventModel) eventResponse {
	resp := eventResponse{
		ID:           e.ID,
		Slug:         e.Slug,
		Title:        e.Title,
		Text:         e.Text,
		Venue:        e.Venue,
		Cover:        e.Cover,
		CityID:       e.CityID,
		StartsAt:     e.StartsAt,
		EndsAt:       e.EndsAt,
		Status:       publishing.DeriveStatus(e.IsActive, e.PublishedAt),
		IsActive:     e.IsActive,
		PublishedAt:  e.PublishedAt,
		DisplayOrder: e.DisplayOrder,
		Created:      e.CreatedAt,
		Modified:     e.UpdatedAt,
	}
	if e.City != nil {
		resp.City = e.City
	}
	return resp
}
