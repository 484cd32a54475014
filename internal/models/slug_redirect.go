package models

// SlugRedirectModel records that an old slug for a content type now points to
// a different item, so stale public URLs can be redirected.
type SlugRedirectModel struct {
	Base
	Slug     string `json:"slug"      gorm:"index:idx_slug_redirect,unique;not null"`
	Type     string `json:"type"      gorm:"index:idx_slug_redirect,unique;not null"`
	TargetID string `json:"target_id" gorm:"index;not null"`
}

func (SlugRedirectModel) TableName() string { return "slug_redirects" }
