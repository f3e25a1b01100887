package services

import (
	"context"
	"errors"
	"net/smtp"
	"sync"
	"testing"
	"time"

	"hotel-reservation/events"
	"hotel-reservation/models"
	"hotel-reservation/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

type mailbox struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *mailbox) send(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
	return nil
}

func (m *mailbox) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

var testSMTP = utils.SMTPConfig{Host: "smtp.test", Port: "2525", Username: "bot@hotel.test", Password: "pw", FromName: "Riverside"}

func newTestMailer(f *fixture) (*BookingMailer, *mailbox) {
	box := &mailbox{}
	m := NewBookingMailer(f.db, testSMTP, 8)
	m.Send = box.send
	return m, box
}

// lastEnvelope returns the most recent recorded envelope of the given type.
func (f *fixture) lastEnvelope(t *testing.T, eventType string) events.Envelope {
	t.Helper()
	f.pub.mu.Lock()
	defer f.pub.mu.Unlock()
	for i := len(f.pub.events) - 1; i >= 0; i-- {
		if f.pub.events[i].EventType == eventType {
			return f.pub.events[i]
		}
	}
	t.Fatalf("no %s event recorded", eventType)
	return events.Envelope{}
}

func TestBookingMailer_SendsConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m, box := newTestMailer(f)

	b, err := f.bookings.Create(ctx, f.guest, CreateBookingInput{
		HotelID: f.hotel.ID, RoomID: f.r101.ID,
		CheckIn: date("2025-06-01"), CheckOut: date("2025-06-03"), Adults: 2,
		GuestName: "Somchai", GuestEmail: "somchai@example.com",
	})
	require.NoError(t, err)
	f.pay(t, b)

	require.NoError(t, m.Handle(ctx, f.lastEnvelope(t, events.BookingConfirmed)))

	require.Len(t, box.sent, 1)
	mail := box.sent[0]
	assert.Equal(t, "smtp.test:2525", mail.addr)
	assert.Equal(t, "bot@hotel.test", mail.from)
	assert.Equal(t, []string{"somchai@example.com"}, mail.to)
	assert.Contains(t, mail.msg, "Subject: Booking Confirmation - "+b.ReferenceCode)
	assert.Contains(t, mail.msg, "Room: R101 (Deluxe)")
	assert.Contains(t, mail.msg, "Total: 2,000,000")
}

func TestBookingMailer_CancellationUsesCustomerEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m, box := newTestMailer(f)

	b := f.confirmed(t, f.r101, "2025-06-10", "2025-06-12")
	require.NoError(t, f.db.Model(&models.Customer{}).Where("id = ?", f.guest.UserID).
		Updates(map[string]interface{}{"email": "guest7@example.com", "full_name": "Guest Seven"}).Error)
	_, err := f.bookings.Cancel(ctx, f.guest, f.hotel.ID, b.ID, "plans changed")
	require.NoError(t, err)

	require.NoError(t, m.Handle(ctx, f.lastEnvelope(t, events.BookingCancelled)))

	require.Len(t, box.sent, 1)
	assert.Equal(t, []string{"guest7@example.com"}, box.sent[0].to)
	assert.Contains(t, box.sent[0].msg, "Dear Guest Seven,")
	assert.Contains(t, box.sent[0].msg, "Reason: plans changed")
	assert.Contains(t, box.sent[0].msg, "will be refunded")
}

func TestBookingMailer_SkipsWhatItCannotSend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m, box := newTestMailer(f)

	// no address anywhere
	b := f.confirmed(t, f.r101, "2025-06-01", "2025-06-03")
	assert.NoError(t, m.Handle(ctx, f.lastEnvelope(t, events.BookingConfirmed)))

	// not a mail event
	assert.NoError(t, m.Handle(ctx, f.lastEnvelope(t, events.PaymentRecorded)))
	assert.Empty(t, box.sent)

	// unknown booking
	env, err := events.New(events.BookingConfirmed, "test", "BK-X", events.BookingPayload{BookingID: 9999})
	require.NoError(t, err)
	assert.True(t, errors.Is(m.Handle(ctx, env), ErrNotFound))

	// dev mode logs instead of sending
	require.NoError(t, f.db.Model(&models.Booking{}).Where("id = ?", b.ID).Update("guest_email", "x@example.com").Error)
	m.SMTP = utils.SMTPConfig{}
	assert.NoError(t, m.Handle(ctx, f.lastEnvelope(t, events.BookingConfirmed)))
	assert.Empty(t, box.sent)
}

func TestBookingMailer_SendFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m, box := newTestMailer(f)
	box.err = errors.New("421 service not available")

	b, err := f.bookings.Create(ctx, f.guest, CreateBookingInput{
		HotelID: f.hotel.ID, RoomID: f.r101.ID,
		CheckIn: date("2025-06-01"), CheckOut: date("2025-06-03"), Adults: 1,
		GuestEmail: "somchai@example.com",
	})
	require.NoError(t, err)
	f.pay(t, b)

	err = m.Handle(ctx, f.lastEnvelope(t, events.BookingConfirmed))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s*****i@e******.com")
}

func TestBookingMailer_PublishAndRun(t *testing.T) {
	f := newFixture(t)
	m, box := newTestMailer(f)
	f.bookings.events.pub = events.Fanout{f.pub, m}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	b, err := f.bookings.Create(context.Background(), f.guest, CreateBookingInput{
		HotelID: f.hotel.ID, RoomID: f.r101.ID,
		CheckIn: date("2025-06-01"), CheckOut: date("2025-06-03"), Adults: 2,
		GuestEmail: "somchai@example.com",
	})
	require.NoError(t, err)
	f.pay(t, b)

	assert.Eventually(t, func() bool { return box.count() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, f.pub.Types(), events.BookingConfirmed, "the other publisher still sees everything")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("mailer did not stop")
	}
	assert.Equal(t, 1, box.count(), "BookingCreated is not mailed")
}
