package models

import "time"

type ServiceUnit string

const (
	ServiceUnitPerStay       ServiceUnit = "PER_STAY"
	ServiceUnitPerNight      ServiceUnit = "PER_NIGHT"
	ServiceUnitPerGuestNight ServiceUnit = "PER_GUEST_NIGHT"
)

// ExtraService is an optional add-on (breakfast, airport pickup...) priced into a quote.
type ExtraService struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	HotelID   uint        `gorm:"column:hotel_id;not null;index" json:"hotel_id"`
	Name      string      `gorm:"size:150" json:"name"`
	Price     int64       `gorm:"column:price" json:"price"`
	Unit      ServiceUnit `gorm:"column:unit;size:20" json:"unit"`
	Active    bool        `gorm:"column:active" json:"active"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
