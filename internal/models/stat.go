package models

// StatModel is one entry of a statistic list ("250+ projects delivered").
// Entries sharing a section key form a sibling group.
type StatModel struct {
	Base
	Publishing
	Label   string `json:"label" gorm:"not null"`
	Value   int    `json:"value"`
	Suffix  string `json:"suffix"`
	Section string `json:"section" gorm:"index;not null"`
}

func (StatModel) TableName() string { return "stats" }
