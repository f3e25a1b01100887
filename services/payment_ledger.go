package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotel-reservation/logger"
	"hotel-reservation/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentSource string

const (
	SourceManual  PaymentSource = "manual"
	SourceGateway PaymentSource = "gateway"
)

type PaymentInput struct {
	HotelID     uint
	BookingID   uint
	Method      models.PaymentMethod
	Amount      int64
	Status      models.PaymentStatus
	ExternalRef string
	Actor       Actor
	Source      PaymentSource
	RawPayload  []byte
}

// PaymentLedger keeps exactly one payment row per booking and advances the
// booking in the same transaction.
type PaymentLedger struct {
	DB       *gorm.DB
	Bookings *BookingService
}

func NewPaymentLedger(bookings *BookingService) *PaymentLedger {
	return &PaymentLedger{DB: bookings.DB, Bookings: bookings}
}

// ledgerOutcome is what one RecordPayment call changed, for logging and events.
type ledgerOutcome struct {
	wrote     bool
	from      models.BookingStatus
	event     Event
	duplicate bool
}

func (in *PaymentInput) normalize() error {
	in.ExternalRef = strings.TrimSpace(in.ExternalRef)
	switch in.Source {
	case SourceManual:
		if in.Method == "" {
			in.Method = models.PaymentMethodCash
		}
		if in.Method == models.PaymentMethodGateway {
			return validationf("gateway payments must come through the gateway callback")
		}
	case SourceGateway:
		in.Method = models.PaymentMethodGateway
		in.Actor = SystemActor()
		if in.ExternalRef == "" {
			return validationf("external reference is required")
		}
	default:
		return validationf("unknown payment source %q", in.Source)
	}
	if !in.Method.IsValid() {
		return validationf("unknown payment method %q", in.Method)
	}
	switch in.Status {
	case "":
		in.Status = models.PaymentStatusPaid
	case models.PaymentStatusPaid, models.PaymentStatusFailed, models.PaymentStatusPending:
	default:
		return validationf("payment status %q cannot be recorded", in.Status)
	}
	if in.Amount < 0 {
		return validationf("amount must not be negative")
	}
	return nil
}

// RecordPayment applies one payment notification. Replays of a notification
// that was already applied succeed without writing anything.
func (l *PaymentLedger) RecordPayment(ctx context.Context, in PaymentInput) (models.Booking, models.Payment, error) {
	if err := in.normalize(); err != nil {
		return models.Booking{}, models.Payment{}, err
	}
	now := l.Bookings.now()

	var booking models.Booking
	var payment models.Payment
	var out ledgerOutcome
	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, _, err := lockBooking(tx, in.HotelID, in.BookingID)
		if err != nil {
			return err
		}
		if err := Authorize(EventConfirmPayment, in.Actor, b); err != nil {
			return err
		}

		var existing models.Payment
		found := true
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("booking_id = ?", b.ID).First(&existing).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to read payment of booking %d: %w", b.ID, err)
			}
			found = false
		}

		out.from = b.Status
		if in.Status == models.PaymentStatusPaid {
			err = l.recordPaid(tx, &b, found, existing, in, now, &out)
		} else {
			err = l.recordAttempt(tx, &b, found, existing, in, now, &out)
		}
		if err != nil {
			return err
		}
		if found {
			payment = existing
		}
		if out.wrote {
			if err := tx.Where("booking_id = ?", b.ID).First(&payment).Error; err != nil {
				return fmt.Errorf("failed to reload payment of booking %d: %w", b.ID, err)
			}
		}
		booking = b
		return nil
	})
	if err != nil {
		logger.WithFields(logger.Fields{
			"booking_id": in.BookingID, "source": string(in.Source), "status": string(in.Status), "external_ref": in.ExternalRef,
		}).WithError(err).Warn("payment not recorded")
		return models.Booking{}, models.Payment{}, err
	}

	fields := logger.Fields{
		"booking": booking.ReferenceCode, "source": string(in.Source), "payment_status": string(payment.Status),
		"booking_status": string(booking.Status), "external_ref": in.ExternalRef,
	}
	if out.duplicate {
		logger.WithFields(fields).Info("duplicate payment notification ignored")
	} else {
		logger.WithFields(fields).Info("payment recorded")
	}

	if out.wrote {
		l.Bookings.events.payment(ctx, booking, payment)
	}
	if out.event != "" {
		l.Bookings.events.booking(ctx, eventTypeFor(out.event), booking, out.from, in.Actor, booking.CancelReason)
	}

	reloaded, err := l.Bookings.reload(ctx, booking.HotelID, booking.ID)
	if err != nil {
		return booking, payment, err
	}
	return reloaded, payment, nil
}

func (l *PaymentLedger) recordPaid(tx *gorm.DB, b *models.Booking, found bool, existing models.Payment, in PaymentInput, now time.Time, out *ledgerOutcome) error {
	amount := in.Amount
	if in.Source == SourceManual && amount == 0 {
		amount = b.TotalPrice
	}
	if amount != b.TotalPrice {
		return paymentMismatchf("amount %d does not match booking total %d", amount, b.TotalPrice)
	}

	if found {
		switch existing.Status {
		case models.PaymentStatusPaid:
			// a paid row is only ever attached to an active or finished stay
			out.duplicate = true
			return nil
		case models.PaymentStatusRefundPending, models.PaymentStatusForfeited:
			if in.Source == SourceGateway {
				out.duplicate = true
				return nil
			}
			return invalidTransitionf("booking %s is %s", b.ReferenceCode, b.Status)
		}
	}

	switch b.Status {
	case models.BookingStatusCancelled:
		if in.Source == SourceManual {
			return invalidTransitionf("cannot pay a cancelled booking")
		}
		// late money for a cancelled booking is held for refund
		eligible := true
		b.RefundEligible = &eligible
		return l.upsert(tx, b, existing, in, amount, models.PaymentStatusRefundPending, now, out)

	case models.BookingStatusPending:
		d, err := l.Bookings.Machine.Decide(TransitionRequest{Event: EventConfirmPayment, Actor: in.Actor, Booking: *b})
		if err != nil {
			return err
		}
		busy, err := hasBlockingOverlap(tx, b.RoomID, b.CheckIn, b.CheckOut, b.ID, true)
		if err != nil {
			return err
		}
		if busy {
			if in.Source == SourceManual {
				return conflictf("room was booked by someone else for these dates")
			}
			eligible := true
			cancel := Decision{Event: EventCancel, From: b.Status, To: models.BookingStatusCancelled, RefundEligible: &eligible}
			if err := l.upsert(tx, b, existing, in, amount, models.PaymentStatusRefundPending, now, out); err != nil {
				return err
			}
			if err := applyDecision(tx, b, cancel, roomUnavailableReason, now); err != nil {
				return err
			}
			if err := saveBooking(tx, b); err != nil {
				return err
			}
			out.event = EventCancel
			return writeStatusEvent(tx, b.ID, cancel.From, cancel.To, EventCancel, in.Actor, roomUnavailableReason, false, now)
		}
		if err := l.upsert(tx, b, existing, in, amount, models.PaymentStatusPaid, now, out); err != nil {
			return err
		}
		if err := applyDecision(tx, b, d, "", now); err != nil {
			return err
		}
		if err := saveBooking(tx, b); err != nil {
			return err
		}
		out.event = EventConfirmPayment
		return writeStatusEvent(tx, b.ID, d.From, d.To, EventConfirmPayment, in.Actor, "", false, now)

	default:
		// confirmed by override without money, settle it in place
		return l.upsert(tx, b, existing, in, amount, models.PaymentStatusPaid, now, out)
	}
}

func (l *PaymentLedger) recordAttempt(tx *gorm.DB, b *models.Booking, found bool, existing models.Payment, in PaymentInput, now time.Time, out *ledgerOutcome) error {
	if found {
		switch existing.Status {
		case models.PaymentStatusPaid, models.PaymentStatusRefundPending, models.PaymentStatusForfeited:
			// late FAILED/PENDING after settlement
			out.duplicate = true
			return nil
		}
	}
	if in.Source == SourceManual && b.Status.IsTerminal() {
		return invalidTransitionf("booking %s is %s", b.ReferenceCode, b.Status)
	}
	amount := in.Amount
	if amount == 0 {
		amount = b.TotalPrice
	}
	return l.upsert(tx, b, existing, in, amount, in.Status, now, out)
}

// upsert writes the single payment row of the booking and mirrors its status
// onto the booking.
func (l *PaymentLedger) upsert(tx *gorm.DB, b *models.Booking, existing models.Payment, in PaymentInput, amount int64, status models.PaymentStatus, now time.Time, out *ledgerOutcome) error {
	p := models.Payment{
		BookingID:   b.ID,
		Amount:      amount,
		Method:      in.Method,
		Status:      status,
		ExternalRef: in.ExternalRef,
		Attempts:    existing.Attempts + 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if len(in.RawPayload) > 0 {
		p.GatewayPayload = datatypes.JSON(in.RawPayload)
	}
	if status == models.PaymentStatusPaid || status == models.PaymentStatusRefundPending {
		p.PaidAt = &now
	}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "booking_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"amount", "method", "status", "external_ref", "gateway_payload", "attempts", "paid_at", "updated_at",
		}),
	}).Create(&p).Error
	if err != nil {
		return translateStorageError(err, "payment already recorded")
	}

	b.PaymentStatus = status
	b.UpdatedAt = now
	if err := tx.Model(&models.Booking{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
		"payment_status":  status,
		"refund_eligible": b.RefundEligible,
		"updated_at":      now,
	}).Error; err != nil {
		return fmt.Errorf("failed to update booking %d: %w", b.ID, err)
	}
	out.wrote = true
	return nil
}
