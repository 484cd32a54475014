package models

// CategoryKind separates blog categories from FAQ sections.
type CategoryKind int

const (
	CategoryKindBlog CategoryKind = iota
	CategoryKindFAQ
)

// CategoryModel groups posts or FAQ items. Categories are the one collection
// where editors may choose the slug by hand; a conflicting manual slug is
// rejected rather than auto-suffixed.
type CategoryModel struct {
	Base
	Publishing
	Name string       `json:"name" gorm:"uniqueIndex;not null"`
	Kind CategoryKind `json:"kind" gorm:"default:0;index"`

	Posts    []PostModel    `json:"posts,omitempty"     gorm:"foreignKey:CategoryID"`
	FAQItems []FAQItemModel `json:"faq_items,omitempty" gorm:"foreignKey:CategoryID"`
}

func (CategoryModel) TableName() string { return "categories" }
