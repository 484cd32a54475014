package models

// GalleryPostModel is a curated Instagram-style post shown on the home page.
// All gallery posts form a single sibling group.
type GalleryPostModel struct {
	Base
	Publishing
	Caption   string `json:"caption" gorm:"not null"`
	MediaURL  string `json:"media_url"`
	Permalink string `json:"permalink"`
}

func (GalleryPostModel) TableName() string { return "gallery_posts" }
