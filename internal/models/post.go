package models

// PostModel is a blog post. Its sibling group for ordering is the category.
type PostModel struct {
	WriteBase
	Publishing
	Summary    string         `json:"summary"`
	Cover      string         `json:"cover"`
	CategoryID *string        `json:"category_id" gorm:"index"`
	Category   *CategoryModel `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Tags       StringSlice    `json:"tags" gorm:"type:json;serializer:json"`
}

func (PostModel) TableName() string { return "posts" }
