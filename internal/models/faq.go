package models

// FAQItemModel is a question/answer pair. Items of one category form a
// sibling group; the question text is the slug source.
type FAQItemModel struct {
	Base
	Publishing
	Question   string         `json:"question" gorm:"not null"`
	Answer     string         `json:"answer"   gorm:"type:longtext"`
	CategoryID *string        `json:"category_id" gorm:"index"`
	Category   *CategoryModel `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

func (FAQItemModel) TableName() string { return "faq_items" }
