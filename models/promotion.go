package models

import "time"

type DiscountType string

const (
	DiscountPercent DiscountType = "PERCENT"
	DiscountFixed   DiscountType = "FIXED"
)

type Promotion struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	HotelID uint   `gorm:"column:hotel_id;not null;uniqueIndex:idx_promotions_hotel_code,priority:1" json:"hotel_id"`
	Code    string `gorm:"size:64;not null;uniqueIndex:idx_promotions_hotel_code,priority:2" json:"code"`
	Name    string `gorm:"size:255" json:"name"`

	DiscountType DiscountType `gorm:"column:discount_type;size:20;not null" json:"discount_type"`
	Value        float64      `gorm:"column:value;type:decimal(12,2);not null" json:"value"`
	ValidFrom    time.Time    `gorm:"column:valid_from;not null" json:"valid_from"`
	ValidUntil   time.Time    `gorm:"column:valid_until;not null" json:"valid_until"`

	// nil means the promotion applies to every room type of the hotel
	RoomTypeID *uint  `gorm:"column:room_type_id" json:"room_type_id,omitempty"`
	MinTotal   *int64 `gorm:"column:min_total" json:"min_total,omitempty"`
	Active     bool   `gorm:"column:active" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
