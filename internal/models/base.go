package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is the base model for all entities.
type Base struct {
	ID        string         `json:"id"       gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time      `json:"created"`
	UpdatedAt time.Time      `json:"modified"`
	DeletedAt gorm.DeletedAt `json:"-"        gorm:"index"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// Publishing carries the columns shared by every publishable collection:
// a per-table unique slug, the two lifecycle flags, and the dense ordering
// index within the row's sibling group.
type Publishing struct {
	Slug         string     `json:"slug"          gorm:"uniqueIndex;not null"`
	IsActive     bool       `json:"is_active"     gorm:"default:true;index"`
	PublishedAt  *time.Time `json:"published_at"`
	DisplayOrder int        `json:"display_order" gorm:"default:0;index"`
}

// WriteBase adds the authored text fields common to Post, Event, City.
type WriteBase struct {
	Base
	Title string `json:"title" gorm:"not null"`
	Text  string `json:"text"  gorm:"type:longtext"`
}

// StringSlice is a []string that serializes as JSON in MySQL.
type StringSlice []string
