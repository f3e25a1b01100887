package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"hotel-reservation/config"
	"hotel-reservation/events"
	"hotel-reservation/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), config.GormConfig(gormlogger.Silent))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the in-memory database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, config.Migrate(db))
	return db
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Envelope
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Envelope) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType)
	}
	return out
}

type fixture struct {
	db       *gorm.DB
	clock    *testClock
	pub      *recordingPublisher
	bookings *BookingService
	ledger   *PaymentLedger

	hotel     models.Hotel
	otherHtl  models.Hotel
	deluxe    models.RoomType
	suite     models.RoomType
	r101      models.Room
	r102      models.Room
	s201      models.Room
	breakfast models.ExtraService
	transfer  models.ExtraService
	summer10  models.Promotion

	guest    Actor
	stranger Actor
	manager  Actor
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		db:    db,
		clock: &testClock{now: time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC)},
		pub:   &recordingPublisher{},
	}

	f.hotel = models.Hotel{Name: "Riverside", Timezone: "UTC", Active: true}
	f.otherHtl = models.Hotel{Name: "Hilltop", Timezone: "UTC", Active: true}
	require.NoError(t, db.Create(&f.hotel).Error)
	require.NoError(t, db.Create(&f.otherHtl).Error)

	f.deluxe = models.RoomType{HotelID: f.hotel.ID, TypeName: "Deluxe", MaxGuests: 3, BaseRate: 1000000}
	f.suite = models.RoomType{HotelID: f.hotel.ID, TypeName: "Suite", MaxGuests: 4, BaseRate: 2500000}
	require.NoError(t, db.Create(&f.deluxe).Error)
	require.NoError(t, db.Create(&f.suite).Error)

	deluxeID, suiteID := f.deluxe.ID, f.suite.ID
	f.r101 = models.Room{HotelID: f.hotel.ID, RoomTypeID: &deluxeID, RoomNumber: "R101", Active: true}
	f.r102 = models.Room{HotelID: f.hotel.ID, RoomTypeID: &deluxeID, RoomNumber: "R102", BaseRate: 1200000, Capacity: 2, Active: true}
	f.s201 = models.Room{HotelID: f.hotel.ID, RoomTypeID: &suiteID, RoomNumber: "S201", Active: true}
	require.NoError(t, db.Create(&f.r101).Error)
	require.NoError(t, db.Create(&f.r102).Error)
	require.NoError(t, db.Create(&f.s201).Error)

	f.breakfast = models.ExtraService{HotelID: f.hotel.ID, Name: "Breakfast", Price: 100000, Unit: models.ServiceUnitPerGuestNight, Active: true}
	f.transfer = models.ExtraService{HotelID: f.hotel.ID, Name: "Airport transfer", Price: 300000, Unit: models.ServiceUnitPerStay, Active: true}
	require.NoError(t, db.Create(&f.breakfast).Error)
	require.NoError(t, db.Create(&f.transfer).Error)

	f.summer10 = models.Promotion{
		HotelID: f.hotel.ID, Code: "SUMMER10", DiscountType: models.DiscountPercent, Value: 10,
		ValidFrom: date("2025-01-01"), ValidUntil: date("2025-12-31"), Active: true,
	}
	require.NoError(t, db.Create(&f.summer10).Error)

	f.guest = Actor{UserID: 7, Role: RoleCustomer}
	f.stranger = Actor{UserID: 8, Role: RoleCustomer}
	f.manager = Actor{UserID: 100, Role: RoleManager, HotelID: f.hotel.ID}

	f.bookings = NewBookingService(db, BookingOptions{
		GraceWindow:   48 * time.Hour,
		PendingExpiry: 30 * time.Minute,
		Publisher:     f.pub,
		ServiceName:   "test",
	})
	f.bookings.SetClock(f.clock.Now)
	f.ledger = NewPaymentLedger(f.bookings)
	return f
}

// book creates a PENDING booking for the guest.
func (f *fixture) book(t *testing.T, room models.Room, checkIn, checkOut string) models.Booking {
	t.Helper()
	b, err := f.bookings.Create(context.Background(), f.guest, CreateBookingInput{
		HotelID:  f.hotel.ID,
		RoomID:   room.ID,
		CheckIn:  date(checkIn),
		CheckOut: date(checkOut),
		Adults:   2,
	})
	require.NoError(t, err)
	return b
}

// pay settles a booking through the manual path.
func (f *fixture) pay(t *testing.T, b models.Booking) models.Booking {
	t.Helper()
	paid, _, err := f.ledger.RecordPayment(context.Background(), PaymentInput{
		HotelID:   f.hotel.ID,
		BookingID: b.ID,
		Method:    models.PaymentMethodCard,
		Actor:     f.guest,
		Source:    SourceManual,
	})
	require.NoError(t, err)
	return paid
}

// confirmed creates and pays a booking.
func (f *fixture) confirmed(t *testing.T, room models.Room, checkIn, checkOut string) models.Booking {
	t.Helper()
	return f.pay(t, f.book(t, room, checkIn, checkOut))
}

func (f *fixture) paymentRows(t *testing.T, bookingID uint) []models.Payment {
	t.Helper()
	var rows []models.Payment
	require.NoError(t, f.db.Where("booking_id = ?", bookingID).Find(&rows).Error)
	return rows
}
