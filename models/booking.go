package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "PENDING"
	BookingStatusConfirmed  BookingStatus = "CONFIRMED"
	BookingStatusCheckedIn  BookingStatus = "CHECKED_IN"
	BookingStatusCheckedOut BookingStatus = "CHECKED_OUT"
	BookingStatusCancelled  BookingStatus = "CANCELLED"
)

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCheckedIn,
		BookingStatusCheckedOut, BookingStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further lifecycle event can leave this status.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCheckedOut || s == BookingStatusCancelled
}

// HoldsRoom reports whether a booking in this status blocks its room for its stay.
func (s BookingStatus) HoldsRoom() bool {
	return s == BookingStatusConfirmed || s == BookingStatusCheckedIn
}

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	HotelID    uint `gorm:"column:hotel_id;not null;index" json:"hotel_id"`
	RoomID     uint `gorm:"column:room_id;not null;index:idx_bookings_room_stay,priority:1" json:"room_id"`
	CustomerID uint `gorm:"column:customer_id;not null;index" json:"customer_id"`

	ReferenceCode  string  `gorm:"column:reference_code;size:64;uniqueIndex" json:"reference_code"`
	IdempotencyKey *string `gorm:"column:idempotency_key;size:191;uniqueIndex" json:"-"`

	Status   BookingStatus `gorm:"column:status;size:32;not null;index:idx_bookings_room_stay,priority:2" json:"status"`
	CheckIn  time.Time     `gorm:"column:check_in;type:date;not null;index:idx_bookings_room_stay,priority:3" json:"check_in"`
	CheckOut time.Time     `gorm:"column:check_out;type:date;not null" json:"check_out"`
	Nights   int           `gorm:"column:nights" json:"nights"`

	GuestName          string         `gorm:"column:guest_name;size:255" json:"guest_name"`
	GuestEmail         string         `gorm:"column:guest_email;size:255" json:"guest_email"`
	GuestPhone         string         `gorm:"column:guest_phone;size:50" json:"guest_phone"`
	Adults             int            `gorm:"column:adults" json:"adults"`
	Children           int            `gorm:"column:children" json:"children"`
	AccompanyingGuests datatypes.JSON `gorm:"column:accompanying_guests" json:"accompanying_guests,omitempty"`

	BaseTotal     int64          `gorm:"column:base_total" json:"base_total"`
	DiscountTotal int64          `gorm:"column:discount_total" json:"discount_total"`
	ServiceTotal  int64          `gorm:"column:service_total" json:"service_total"`
	TotalPrice    int64          `gorm:"column:total_price" json:"total_price"`
	PromotionID   *uint          `gorm:"column:promotion_id" json:"promotion_id,omitempty"`
	ServiceIDs    datatypes.JSON `gorm:"column:service_ids" json:"service_ids,omitempty"`

	PaymentStatus  PaymentStatus `gorm:"column:payment_status;size:32" json:"payment_status"`
	RefundEligible *bool         `gorm:"column:refund_eligible" json:"refund_eligible,omitempty"`
	CancelReason   string        `gorm:"column:cancel_reason;size:255" json:"cancel_reason,omitempty"`
	CancelledAt    *time.Time    `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CheckedInAt    *time.Time    `gorm:"column:checked_in_at" json:"checked_in_at,omitempty"`
	CheckedOutAt   *time.Time    `gorm:"column:checked_out_at" json:"checked_out_at,omitempty"`

	Room    Room     `gorm:"foreignKey:RoomID;references:ID" json:"room,omitempty"`
	Payment *Payment `gorm:"foreignKey:BookingID" json:"payment,omitempty"`
}

// IsOwnedBy reports whether the given customer made this booking.
func (b Booking) IsOwnedBy(customerID uint) bool {
	return customerID != 0 && b.CustomerID == customerID
}
