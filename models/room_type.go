package models

import (
	"time"

	"gorm.io/gorm"
)

type RoomType struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	HotelID uint `gorm:"column:hotel_id;not null;index" json:"hotel_id"`

	TypeName    string `gorm:"size:100" json:"type_name"`
	Description string `gorm:"type:text" json:"description"`
	MaxGuests   int    `gorm:"column:max_guests" json:"max_guests"`
	// nightly rate in whole currency units
	BaseRate int64 `gorm:"column:base_rate" json:"base_rate"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
