package models

// CityModel is a city landing page. All cities form a single sibling group.
type CityModel struct {
	WriteBase
	Publishing
	Name      string `json:"name"    gorm:"uniqueIndex;not null"`
	Country   string `json:"country"`
	HeroImage string `json:"hero_image"`

	Events []EventModel `json:"events,omitempty" gorm:"foreignKey:CityID"`
}

func (CityModel) TableName() string { return "cities" }
