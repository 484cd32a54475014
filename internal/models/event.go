package models

import "time"

// EventModel is an exhibition or trade-show entry. Events sharing a city form
// one sibling group for ordering.
type EventModel struct {
	WriteBase
	Publishing
	Venue    string     `json:"venue"`
	Cover    string     `json:"cover"`
	CityID   *string    `json:"city_id" gorm:"index"`
	City     *CityModel `json:"city,omitempty" gorm:"foreignKey:CityID"`
	StartsAt *time.Time `json:"starts_at" gorm:"index"`
	EndsAt   *time.Time `json:"ends_at"`
}

func (EventModel) TableName() string { return "events" }
