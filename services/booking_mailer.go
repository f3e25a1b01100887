// services/booking_mailer.go
package services

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"hotel-reservation/events"
	"hotel-reservation/logger"
	"hotel-reservation/models"
	"hotel-reservation/utils"

	"gorm.io/gorm"
)

// BookingMailer emails the guest when a booking is confirmed or cancelled.
// It sits next to the Kafka producer as an events.Publisher and sends from
// its own goroutine.
type BookingMailer struct {
	DB   *gorm.DB
	SMTP utils.SMTPConfig
	Send utils.MailSender

	inbox chan events.Envelope
}

func NewBookingMailer(db *gorm.DB, cfg utils.SMTPConfig, buf int) *BookingMailer {
	if buf <= 0 {
		buf = 1
	}
	return &BookingMailer{
		DB:    db,
		SMTP:  cfg,
		Send:  smtp.SendMail,
		inbox: make(chan events.Envelope, buf),
	}
}

func mailWorthy(eventType string) bool {
	return eventType == events.BookingConfirmed || eventType == events.BookingCancelled
}

// Publish queues confirmations and cancellations. Other events are ignored.
func (m *BookingMailer) Publish(_ context.Context, e events.Envelope) {
	if !mailWorthy(e.EventType) {
		return
	}
	select {
	case m.inbox <- e:
	default:
		logger.WithFields(logger.Fields{"event_type": e.EventType, "booking": e.CorrelationID}).
			Warn("mail queue full, dropping notification")
	}
}

// Run sends queued mail until ctx is cancelled, then drains the queue.
func (m *BookingMailer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case e := <-m.inbox:
					m.deliver(context.Background(), e)
				default:
					return nil
				}
			}
		case e := <-m.inbox:
			m.deliver(ctx, e)
		}
	}
}

func (m *BookingMailer) deliver(ctx context.Context, e events.Envelope) {
	if err := m.Handle(ctx, e); err != nil {
		logger.WithFields(logger.Fields{"event_type": e.EventType, "booking": e.CorrelationID}).
			WithError(err).Error("booking email failed")
	}
}

// Handle renders and sends the email for one event. Without SMTP settings
// the message is only logged (dev mode).
func (m *BookingMailer) Handle(ctx context.Context, e events.Envelope) error {
	if !mailWorthy(e.EventType) {
		return nil
	}
	payload, err := events.Decode[events.BookingPayload](e)
	if err != nil {
		return err
	}

	mail, err := m.compose(ctx, payload, e.EventType == events.BookingCancelled)
	if err != nil {
		return err
	}
	if mail.Recipient == "" {
		logger.Debug("booking " + payload.ReferenceCode + " has no email address, skipping notification")
		return nil
	}

	if !m.SMTP.Enabled() {
		logger.Infof("[MOCK EMAIL] to:%s subject:%q", utils.MaskEmail(mail.Recipient), mail.Subject())
		return nil
	}
	msg := utils.BuildBookingMessage(m.SMTP.From(), mail)
	if err := m.Send(m.SMTP.Addr(), m.SMTP.Auth(), m.SMTP.Username, []string{mail.Recipient}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", utils.MaskEmail(mail.Recipient), err)
	}
	logger.Infof("📨 Email sent to %s (%s)", utils.MaskEmail(mail.Recipient), payload.ReferenceCode)
	return nil
}

func (m *BookingMailer) compose(ctx context.Context, p events.BookingPayload, cancelled bool) (utils.BookingEmail, error) {
	db := m.DB.WithContext(ctx)

	var b models.Booking
	if err := db.Preload("Room.RoomType").First(&b, p.BookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.BookingEmail{}, notFoundf("booking %d not found", p.BookingID)
		}
		return utils.BookingEmail{}, fmt.Errorf("load booking %d: %w", p.BookingID, err)
	}
	var hotel models.Hotel
	if err := db.First(&hotel, b.HotelID).Error; err != nil {
		return utils.BookingEmail{}, fmt.Errorf("load hotel %d: %w", b.HotelID, err)
	}

	recipient, name := strings.TrimSpace(b.GuestEmail), strings.TrimSpace(b.GuestName)
	if recipient == "" || name == "" {
		var c models.Customer
		if err := db.First(&c, b.CustomerID).Error; err == nil {
			if recipient == "" {
				recipient = strings.TrimSpace(c.Email)
			}
			if name == "" {
				name = strings.TrimSpace(c.FullName)
			}
		}
	}

	return utils.BookingEmail{
		Recipient:      recipient,
		GuestName:      name,
		HotelName:      hotel.Name,
		ReferenceCode:  b.ReferenceCode,
		RoomNumber:     b.Room.RoomNumber,
		RoomType:       b.Room.RoomType.TypeName,
		CheckIn:        b.CheckIn.Format("2006-01-02"),
		CheckOut:       b.CheckOut.Format("2006-01-02"),
		Nights:         b.Nights,
		TotalPrice:     b.TotalPrice,
		Cancelled:      cancelled,
		CancelReason:   b.CancelReason,
		RefundEligible: b.RefundEligible,
	}, nil
}
