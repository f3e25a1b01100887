package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	BookingCreated          = "BookingCreated"
	BookingConfirmed        = "BookingConfirmed"
	BookingCancelled        = "BookingCancelled"
	BookingCheckedIn        = "BookingCheckedIn"
	BookingCheckedOut       = "BookingCheckedOut"
	BookingStatusOverridden = "BookingStatusOverridden"
	BookingRescheduled      = "BookingRescheduled"
	PaymentRecorded         = "PaymentRecorded"
)

const envelopeVersion = 1

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// BookingPayload is carried by every Booking* event.
type BookingPayload struct {
	BookingID     uint      `json:"booking_id"`
	HotelID       uint      `json:"hotel_id"`
	RoomID        uint      `json:"room_id"`
	ReferenceCode string    `json:"reference_code"`
	From          string    `json:"from,omitempty"`
	To            string    `json:"to"`
	CheckIn       time.Time `json:"check_in"`
	CheckOut      time.Time `json:"check_out"`
	TotalPrice    int64     `json:"total_price"`
	ActorID       uint      `json:"actor_id,omitempty"`
	ActorRole     string    `json:"actor_role,omitempty"`
	Reason        string    `json:"reason,omitempty"`
}

type PaymentPayload struct {
	BookingID     uint   `json:"booking_id"`
	HotelID       uint   `json:"hotel_id"`
	ReferenceCode string `json:"reference_code"`
	Amount        int64  `json:"amount"`
	Method        string `json:"method"`
	Status        string `json:"status"`
	ExternalRef   string `json:"external_ref,omitempty"`
}

// New wraps payload in an envelope. Events of one booking share the
// correlation id so consumers can order them.
func New(eventType, producer, correlationID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  envelopeVersion,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

// Decode unpacks an envelope payload.
func Decode[T any](e Envelope) (T, error) {
	var t T
	if err := json.Unmarshal(e.Payload, &t); err != nil {
		return t, fmt.Errorf("decode payload: %w", err)
	}
	return t, nil
}
