package models

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "PENDING"
	PaymentStatusPaid          PaymentStatus = "PAID"
	PaymentStatusFailed        PaymentStatus = "FAILED"
	PaymentStatusRefundPending PaymentStatus = "REFUND_PENDING"
	PaymentStatusForfeited     PaymentStatus = "FORFEITED"
)

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodGateway      PaymentMethod = "GATEWAY"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodGateway:
		return true
	default:
		return false
	}
}

// Payment is the single ledger row of a booking. booking_id is unique: repeated
// confirmations update this row in place.
type Payment struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	BookingID      uint           `gorm:"column:booking_id;not null;uniqueIndex" json:"booking_id"`
	Amount         int64          `gorm:"column:amount" json:"amount"`
	Method         PaymentMethod  `gorm:"column:method;size:32" json:"method"`
	Status         PaymentStatus  `gorm:"column:status;size:32;not null" json:"status"`
	ExternalRef    string         `gorm:"column:external_ref;size:191;index" json:"external_ref,omitempty"`
	GatewayPayload datatypes.JSON `gorm:"column:gateway_payload" json:"-"`
	Attempts       int            `gorm:"column:attempts" json:"attempts"`
	PaidAt         *time.Time     `gorm:"column:paid_at" json:"paid_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
