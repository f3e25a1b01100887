package models

import "time"

// BookingStatusEvent is the audit trail of a booking: one row per status change,
// written in the same transaction as the change.
type BookingStatusEvent struct {
	ID        uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingID uint          `gorm:"not null;index" json:"booking_id"`
	From      BookingStatus `gorm:"column:from_status;size:32" json:"from"`
	To        BookingStatus `gorm:"column:to_status;size:32;not null" json:"to"`
	Event     string        `gorm:"column:event;size:32;not null" json:"event"`
	ActorID   uint          `gorm:"column:actor_id" json:"actor_id"`
	ActorRole string        `gorm:"column:actor_role;size:32" json:"actor_role"`
	Reason    string        `gorm:"column:reason;size:255" json:"reason,omitempty"`
	Override  bool          `gorm:"column:override" json:"override"`
	CreatedAt time.Time     `json:"created_at"`
}

func (BookingStatusEvent) TableName() string {
	return "booking_status_events"
}
