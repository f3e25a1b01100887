package models

import (
	"gorm.io/gorm"
)

type Room struct {
	gorm.Model

	HotelID    uint   `json:"hotel_id" gorm:"column:hotel_id;not null;uniqueIndex:idx_rooms_hotel_number,priority:1"`
	RoomTypeID *uint  `json:"room_type_id,omitempty" gorm:"column:room_type_id;index"`
	RoomNumber string `json:"room_number" gorm:"column:room_number;type:varchar(50);uniqueIndex:idx_rooms_hotel_number,priority:2"`

	Floor    string `json:"floor" gorm:"type:varchar(10)"`
	Capacity int    `json:"capacity" gorm:"column:capacity"`
	// 0 means the room type rate applies
	BaseRate int64 `json:"base_rate" gorm:"column:base_rate"`
	Active   bool  `json:"active" gorm:"column:active"`

	RoomType RoomType `gorm:"foreignKey:RoomTypeID" json:"room_type,omitempty"`
}

// NightlyRate resolves the rate used for pricing a stay in this room.
func (r Room) NightlyRate() int64 {
	if r.BaseRate > 0 {
		return r.BaseRate
	}
	return r.RoomType.BaseRate
}

// MaxGuests resolves the occupancy limit, falling back to the room type.
func (r Room) MaxGuests() int {
	if r.Capacity > 0 {
		return r.Capacity
	}
	return r.RoomType.MaxGuests
}
