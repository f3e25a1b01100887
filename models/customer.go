package models

import (
	"gorm.io/gorm"
)

// Customer mirrors the identity provider's user so bookings can reference it.
// Rows are created lazily the first time a verified user books.
type Customer struct {
	gorm.Model

	FullName string `json:"full_name" gorm:"size:255"`
	Email    string `json:"email" gorm:"size:255;index"`
	Phone    string `json:"phone" gorm:"size:50"`
}
