package post

import (
	"time"

	"github.com/akshayrajput12/chronical-sub004/internal/models"
	"github.com/akshayrajput12/chronical-sub004/internal/publishing"
)

// CreatePostDTO is the request body for creating a blog post draft.
// Slug is an optional manual override; when omitted the title is slugified.
type CreatePostDTO struct {
	Title      string   `json:"title" binding:"required"`
	Text       string   `json:"text"`
	Summary    string   `json:"summary"`
	Cover      string   `json:"cover"`
	Slug       *string  `json:"slug"`
	CategoryID *string  `json:"category_id"`
	Tags       []string `json:"tags"`
}

// UpdatePostDTO is the request body for updating a post (all fields optional).
type UpdatePostDTO struct {
	Title      *string  `json:"title"`
	Text       *string  `json:"text"`
	Summary    *string  `json:"summary"`
	Cover      *string  `json:"cover"`
	Slug       *string  `json:"slug"`
	CategoryID *string  `json:"category_id"`
	Tags       []string `json:"tags"`
	IsActive   *bool    `json:"is_active"`
}

// TransitionDTO requests a lifecycle status change.
type TransitionDTO struct {
	Status string `json:"status" binding:"required"`
}

// MoveDTO requests an adjacent reorder.
type MoveDTO struct {
	Direction string `json:"direction" binding:"required"`
}

// ReorderDTO submits a full explicit ordering for one sibling group.
type ReorderDTO struct {
	CategoryID *string  `json:"category_id"`
	OrderedIDs []string `json:"ordered_ids" binding:"required"`
}

// ListQuery holds query params for listing posts.
type ListQuery struct {
	CategoryID *string `form:"category_id"`
	Tag        *string `form:"tag"`
}

type postResponse struct {
	ID           string             `json:"id"`
	Slug         string             `json:"slug"`
	Title        string             `json:"title"`
	Text         string             `json:"text"`
	HTML         string             `json:"html,omitempty"`
	Summary      string             `json:"summary"`
	Cover        string             `json:"cover"`
	CategoryID   *string            `json:"category_id"`
	Category     interface{}        `json:"category,omitempty"`
	Tags         []string           `json:"tags"`
	Status       publishing.Status  `json:"status"`
	IsActive     bool               `json:"is_active"`
	PublishedAt  *time.Time         `json:"published_at"`
	DisplayOrder int                `json:"display_order"`
	Created      time.Time          `json:"created"`
	Modified     time.Time          `json:"modified"`
}

func toResponse(p *models.PostModel, html string) postResponse {
	tags := []string(p.Tags)
	if tags == nil {
		tags = []string{}
	}
	resp := postResponse{
		ID:           p.ID,
		Slug:         p.Slug,
		Title:        p.Title,
		Text:         p.Text,
		HTML:         html,
		Summary:      p.Summary,
		Cover:        p.Cover,
		CategoryID:   p.CategoryID,
		Tags:         tags,
		Status:       publishing.DeriveStatus(p.IsActive, p.PublishedAt),
		IsActive:     p.IsActive,
		PublishedAt:  p.PublishedAt,
		DisplayOrder: p.DisplayOrder,
		Created:      p.CreatedAt,
		Modified:     p.UpdatedAt,
	}
	if p.Category != nil {
		resp.Category = p.Category
	}
	return resp
}
