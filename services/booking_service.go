// services/booking_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotel-reservation/events"
	"hotel-reservation/logger"
	"hotel-reservation/models"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const roomUnavailableReason = "room no longer available"

type BookingOptions struct {
	GraceWindow   time.Duration
	PendingExpiry time.Duration
	Publisher     events.Publisher
	ServiceName   string
}

// BookingService เป็น wrapper รอบ *gorm.DB เพื่อแยก logic ของ booking
type BookingService struct {
	DB      *gorm.DB
	Pricing *PricingService
	Machine *StateMachine
	Now     func() time.Time

	events eventSink
}

func NewBookingService(db *gorm.DB, opts BookingOptions) *BookingService {
	pub := opts.Publisher
	if pub == nil {
		pub = events.NopPublisher{}
	}
	s := &BookingService{
		DB:      db,
		Pricing: NewPricingService(db),
		Machine: NewStateMachine(opts.GraceWindow, opts.PendingExpiry),
		events:  eventSink{pub: pub, producer: opts.ServiceName},
	}
	s.SetClock(time.Now)
	return s
}

// SetClock replaces the clock of the service and the components it drives.
func (s *BookingService) SetClock(now func() time.Time) {
	s.Now = now
	s.Pricing.Now = now
	s.Machine.Now = now
}

func (s *BookingService) now() time.Time {
	return s.Now().UTC()
}

type GuestEntry struct {
	FullName string `json:"full_name"`
	Type     string `json:"type"`
}

type CreateBookingInput struct {
	HotelID    uint
	RoomID     uint
	RoomTypeID uint
	// CustomerID lets a manager book on behalf of a customer. Ignored for customers.
	CustomerID uint

	CheckIn  time.Time
	CheckOut time.Time
	Adults   int
	Children int

	GuestName          string
	GuestEmail         string
	GuestPhone         string
	AccompanyingGuests []GuestEntry

	PromoCode      string
	ServiceIDs     []uint
	IdempotencyKey string
}

// ✅ helper normalize guest list -> keep only named entries
func normalizeGuestList(list []GuestEntry) []GuestEntry {
	out := make([]GuestEntry, 0, len(list))
	for _, g := range list {
		name := strings.TrimSpace(g.FullName)
		if name == "" {
			continue
		}
		typ := strings.TrimSpace(g.Type)
		if typ == "" {
			typ = "Adult"
		}
		out = append(out, GuestEntry{FullName: name, Type: typ})
	}
	return out
}

func newReferenceCode() string {
	return "BK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// Create reserves a room as a PENDING booking with a frozen price. PENDING does
// not hold the room; payment confirmation re-checks availability.
func (s *BookingService) Create(ctx context.Context, actor Actor, in CreateBookingInput) (models.Booking, error) {
	checkIn, checkOut, err := stayRange(in.CheckIn, in.CheckOut)
	if err != nil {
		return models.Booking{}, err
	}
	if in.Adults < 1 {
		return models.Booking{}, validationf("at least one adult is required")
	}
	if in.Children < 0 {
		return models.Booking{}, validationf("children must not be negative")
	}
	if in.RoomID == 0 && in.RoomTypeID == 0 {
		return models.Booking{}, validationf("room_id or room_type_id is required")
	}

	customerID := actor.UserID
	if actor.Role == RoleManager && in.CustomerID != 0 {
		customerID = in.CustomerID
	}
	draft := models.Booking{HotelID: in.HotelID, CustomerID: customerID}
	if _, err := s.Machine.Decide(TransitionRequest{Event: EventCreate, Actor: actor, Booking: draft}); err != nil {
		return models.Booking{}, err
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if existing, ok, err := s.findByIdempotencyKey(ctx, in.HotelID, customerID, key); err != nil || ok {
			return existing, err
		}
	}

	if _, err := s.loadHotel(s.DB.WithContext(ctx), in.HotelID); err != nil {
		return models.Booking{}, err
	}

	guests := in.Adults + in.Children
	accompanying, err := json.Marshal(normalizeGuestList(in.AccompanyingGuests))
	if err != nil {
		return models.Booking{}, fmt.Errorf("encode accompanying guests: %w", err)
	}
	serviceIDs, err := json.Marshal(in.ServiceIDs)
	if err != nil {
		return models.Booking{}, fmt.Errorf("encode service ids: %w", err)
	}

	now := s.now()
	var booking models.Booking
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := s.pickRoom(tx, in.HotelID, in.RoomID, in.RoomTypeID, checkIn, checkOut, guests)
		if err != nil {
			return err
		}

		quote, err := s.Pricing.quote(tx, QuoteRequest{
			HotelID:    in.HotelID,
			RoomID:     room.ID,
			CheckIn:    checkIn,
			CheckOut:   checkOut,
			GuestCount: guests,
			PromoCode:  in.PromoCode,
			ServiceIDs: in.ServiceIDs,
		}, now)
		if err != nil {
			return err
		}

		if err := ensureCustomer(tx, customerID, in.GuestName, in.GuestEmail, in.GuestPhone); err != nil {
			return err
		}

		booking = models.Booking{
			CreatedAt:          now,
			UpdatedAt:          now,
			HotelID:            in.HotelID,
			RoomID:             room.ID,
			CustomerID:         customerID,
			ReferenceCode:      newReferenceCode(),
			Status:             models.BookingStatusPending,
			CheckIn:            checkIn,
			CheckOut:           checkOut,
			Nights:             quote.Nights,
			GuestName:          strings.TrimSpace(in.GuestName),
			GuestEmail:         strings.TrimSpace(in.GuestEmail),
			GuestPhone:         strings.TrimSpace(in.GuestPhone),
			Adults:             in.Adults,
			Children:           in.Children,
			AccompanyingGuests: datatypes.JSON(accompanying),
			BaseTotal:          quote.BaseTotal,
			DiscountTotal:      quote.Discount,
			ServiceTotal:       quote.ServiceTotal,
			TotalPrice:         quote.GrandTotal,
			PromotionID:        quote.PromotionID,
			ServiceIDs:         datatypes.JSON(serviceIDs),
		}
		if key != "" {
			booking.IdempotencyKey = &key
		}
		if err := tx.Omit(clause.Associations).Create(&booking).Error; err != nil {
			return translateStorageError(err, "booking already exists")
		}
		return writeStatusEvent(tx, booking.ID, "", booking.Status, EventCreate, actor, "", false, now)
	})
	if err != nil {
		// a concurrent request with the same key won the insert
		if key != "" && errors.Is(err, ErrConflict) {
			if existing, ok, lookupErr := s.findByIdempotencyKey(ctx, in.HotelID, customerID, key); lookupErr == nil && ok {
				return existing, nil
			}
		}
		return models.Booking{}, err
	}

	logger.WithFields(logger.Fields{
		"booking": booking.ReferenceCode, "hotel_id": booking.HotelID, "room_id": booking.RoomID, "total": booking.TotalPrice,
	}).Info("booking created")
	s.events.booking(ctx, events.BookingCreated, booking, "", actor, "")

	return s.reload(ctx, booking.HotelID, booking.ID)
}

// pickRoom locks the requested room, or the first free room of the requested
// type, and checks it against confirmed stays.
func (s *BookingService) pickRoom(tx *gorm.DB, hotelID, roomID, roomTypeID uint, checkIn, checkOut time.Time, guests int) (models.Room, error) {
	if roomID != 0 {
		room, err := findRoom(tx, hotelID, roomID, true)
		if err != nil {
			return room, err
		}
		if !room.Active {
			return room, validationf("room %s is not bookable", room.RoomNumber)
		}
		busy, err := hasBlockingOverlap(tx, room.ID, checkIn, checkOut, 0, true)
		if err != nil {
			return room, err
		}
		if busy {
			return room, conflictf("room %s is already booked for these dates", room.RoomNumber)
		}
		return room, nil
	}

	var candidates []models.Room
	if err := tx.Where("hotel_id = ? AND room_type_id = ? AND active = ?", hotelID, roomTypeID, true).
		Order("room_number").Find(&candidates).Error; err != nil {
		return models.Room{}, fmt.Errorf("failed to load rooms: %w", err)
	}
	if len(candidates) == 0 {
		return models.Room{}, notFoundf("no rooms of type %d", roomTypeID)
	}
	for _, c := range candidates {
		room, err := findRoom(tx, hotelID, c.ID, true)
		if err != nil {
			return room, err
		}
		if guests > room.MaxGuests() && room.MaxGuests() > 0 {
			continue
		}
		busy, err := hasBlockingOverlap(tx, room.ID, checkIn, checkOut, 0, true)
		if err != nil {
			return room, err
		}
		if !busy {
			return room, nil
		}
	}
	return models.Room{}, conflictf("no room of type %d is available for these dates", roomTypeID)
}

func (s *BookingService) findByIdempotencyKey(ctx context.Context, hotelID, customerID uint, key string) (models.Booking, bool, error) {
	var b models.Booking
	err := s.DB.WithContext(ctx).Preload("Room.RoomType").Preload("Payment").
		Where("idempotency_key = ?", key).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return b, false, nil
	}
	if err != nil {
		return b, false, fmt.Errorf("failed to look up idempotency key: %w", err)
	}
	if b.HotelID != hotelID || b.CustomerID != customerID {
		return models.Booking{}, false, conflictf("idempotency key already used")
	}
	return b, true, nil
}

func (s *BookingService) loadHotel(tx *gorm.DB, hotelID uint) (models.Hotel, error) {
	var h models.Hotel
	if err := tx.First(&h, hotelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return h, notFoundf("hotel %d not found", hotelID)
		}
		return h, fmt.Errorf("failed to load hotel %d: %w", hotelID, err)
	}
	return h, nil
}

func (s *BookingService) reload(ctx context.Context, hotelID, bookingID uint) (models.Booking, error) {
	var b models.Booking
	if err := s.DB.WithContext(ctx).Preload("Room.RoomType").Preload("Payment").
		Where("hotel_id = ?", hotelID).First(&b, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return b, notFoundf("booking %d not found", bookingID)
		}
		return b, fmt.Errorf("failed to retrieve booking details: %w", err)
	}
	return b, nil
}

// canView: owners see their bookings, managers see their hotel's.
func canView(actor Actor, b models.Booking) bool {
	switch actor.Role {
	case RoleManager:
		return actor.ManagesHotel(b.HotelID)
	case RoleCustomer:
		return b.IsOwnedBy(actor.UserID)
	case RoleSystem:
		return true
	}
	return false
}

// Get returns one booking of the hotel if the actor may see it.
func (s *BookingService) Get(ctx context.Context, actor Actor, hotelID, bookingID uint) (models.Booking, error) {
	b, err := s.reload(ctx, hotelID, bookingID)
	if err != nil {
		return b, err
	}
	if !canView(actor, b) {
		return models.Booking{}, forbiddenf("booking %d is not yours", bookingID)
	}
	return b, nil
}

type BookingFilter struct {
	Status models.BookingStatus
	From   time.Time
	To     time.Time
}

// List returns the hotel's bookings for managers and the caller's own for customers.
func (s *BookingService) List(ctx context.Context, actor Actor, hotelID uint, f BookingFilter) ([]models.Booking, error) {
	q := s.DB.WithContext(ctx).Preload("Room.RoomType").Preload("Payment").Where("hotel_id = ?", hotelID)
	switch actor.Role {
	case RoleManager:
		if !actor.ManagesHotel(hotelID) {
			return nil, forbiddenf("hotel %d is not managed by this account", hotelID)
		}
	case RoleCustomer:
		q = q.Where("customer_id = ?", actor.UserID)
	default:
		return nil, forbiddenf("%s may not list bookings", actor.Role)
	}
	if f.Status != "" {
		if !f.Status.IsValid() {
			return nil, validationf("unknown status %q", f.Status)
		}
		q = q.Where("status = ?", f.Status)
	}
	if !f.From.IsZero() {
		q = q.Where("check_out > ?", StayDate(f.From))
	}
	if !f.To.IsZero() {
		q = q.Where("check_in < ?", StayDate(f.To))
	}

	list := []models.Booking{}
	if err := q.Order("created_at DESC").Order("id DESC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings: %w", err)
	}
	return list, nil
}

// History returns the audit trail of a booking, oldest first.
func (s *BookingService) History(ctx context.Context, actor Actor, hotelID, bookingID uint) ([]models.BookingStatusEvent, error) {
	if _, err := s.Get(ctx, actor, hotelID, bookingID); err != nil {
		return nil, err
	}
	list := []models.BookingStatusEvent{}
	if err := s.DB.WithContext(ctx).Where("booking_id = ?", bookingID).Order("id").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve booking history: %w", err)
	}
	return list, nil
}

func (s *BookingService) Cancel(ctx context.Context, actor Actor, hotelID, bookingID uint, reason string) (models.Booking, error) {
	return s.apply(ctx, actor, hotelID, bookingID, EventCancel, "", reason)
}

func (s *BookingService) CheckIn(ctx context.Context, actor Actor, hotelID, bookingID uint) (models.Booking, error) {
	return s.apply(ctx, actor, hotelID, bookingID, EventCheckIn, "", "")
}

func (s *BookingService) CheckOut(ctx context.Context, actor Actor, hotelID, bookingID uint) (models.Booking, error) {
	return s.apply(ctx, actor, hotelID, bookingID, EventCheckOut, "", "")
}

// Expire cancels an unpaid PENDING booking past its expiry window.
func (s *BookingService) Expire(ctx context.Context, hotelID, bookingID uint) (models.Booking, error) {
	return s.apply(ctx, SystemActor(), hotelID, bookingID, EventExpire, "", "payment not received in time")
}

// PatchStatus is the manager override. It skips role and timing guards but
// never breaks the room or payment invariants.
func (s *BookingService) PatchStatus(ctx context.Context, actor Actor, hotelID, bookingID uint, target models.BookingStatus, reason string) (models.Booking, error) {
	if strings.TrimSpace(reason) == "" {
		return models.Booking{}, validationf("reason is required for a status override")
	}
	return s.apply(ctx, actor, hotelID, bookingID, EventOverride, target, reason)
}

// apply runs one state-machine event inside a transaction that holds the room
// and booking row locks.
func (s *BookingService) apply(ctx context.Context, actor Actor, hotelID, bookingID uint, event Event, target models.BookingStatus, reason string) (models.Booking, error) {
	now := s.now()
	reason = strings.TrimSpace(reason)

	var booking models.Booking
	var decision Decision
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, _, err := lockBooking(tx, hotelID, bookingID)
		if err != nil {
			return err
		}
		hotel, err := s.loadHotel(tx, hotelID)
		if err != nil {
			return err
		}

		d, err := s.Machine.Decide(TransitionRequest{
			Event:    event,
			Actor:    actor,
			Booking:  b,
			Target:   target,
			Location: hotel.Location(),
		})
		if err != nil {
			return err
		}
		if d.BlocksRoom() {
			busy, err := hasBlockingOverlap(tx, b.RoomID, b.CheckIn, b.CheckOut, b.ID, true)
			if err != nil {
				return err
			}
			if busy {
				return conflictf("room is already booked for %s to %s", b.CheckIn.Format("2006-01-02"), b.CheckOut.Format("2006-01-02"))
			}
		}

		if err := applyDecision(tx, &b, d, reason, now); err != nil {
			return err
		}
		if err := saveBooking(tx, &b); err != nil {
			return err
		}
		if err := writeStatusEvent(tx, b.ID, d.From, d.To, event, actor, reason, d.Override, now); err != nil {
			return err
		}
		booking, decision = b, d
		return nil
	})
	if err != nil {
		return models.Booking{}, err
	}

	logger.WithFields(logger.Fields{
		"booking": booking.ReferenceCode, "event": string(event), "from": string(decision.From), "to": string(decision.To),
		"actor_role": string(actor.Role), "actor_id": actor.UserID,
	}).Info("booking status changed")
	s.events.booking(ctx, eventTypeFor(event), booking, decision.From, actor, reason)

	return s.reload(ctx, hotelID, bookingID)
}

// applyDecision mutates b for the decided status and keeps the payment row in
// line: a PAID payment never stays attached to a cancelled booking.
func applyDecision(tx *gorm.DB, b *models.Booking, d Decision, reason string, now time.Time) error {
	b.Status = d.To
	b.UpdatedAt = now
	switch d.To {
	case models.BookingStatusCheckedIn:
		if b.CheckedInAt == nil {
			b.CheckedInAt = &now
		}
	case models.BookingStatusCheckedOut:
		if b.CheckedOutAt == nil {
			b.CheckedOutAt = &now
		}
	case models.BookingStatusCancelled:
		b.CancelledAt = &now
		b.CancelReason = reason
		b.RefundEligible = d.RefundEligible
		if b.PaymentStatus == models.PaymentStatusPaid {
			next := models.PaymentStatusForfeited
			if d.RefundEligible != nil && *d.RefundEligible {
				next = models.PaymentStatusRefundPending
			}
			if err := tx.Model(&models.Payment{}).Where("booking_id = ?", b.ID).
				Updates(map[string]interface{}{"status": next, "updated_at": now}).Error; err != nil {
				return fmt.Errorf("failed to update payment of booking %d: %w", b.ID, err)
			}
			b.PaymentStatus = next
		}
	}
	return nil
}

// Reschedule moves a PENDING or CONFIRMED booking to new dates in the same room.
// PENDING bookings are re-priced; confirmed ones keep their paid price and
// must keep the same number of nights.
func (s *BookingService) Reschedule(ctx context.Context, actor Actor, hotelID, bookingID uint, checkIn, checkOut time.Time) (models.Booking, error) {
	checkIn, checkOut, err := stayRange(checkIn, checkOut)
	if err != nil {
		return models.Booking{}, err
	}
	now := s.now()

	var booking models.Booking
	var reason string
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, _, err := lockBooking(tx, hotelID, bookingID)
		if err != nil {
			return err
		}
		d, err := s.Machine.Decide(TransitionRequest{Event: EventReschedule, Actor: actor, Booking: b})
		if err != nil {
			return err
		}
		if b.CheckIn.Equal(checkIn) && b.CheckOut.Equal(checkOut) {
			return validationf("booking %s already has these dates", b.ReferenceCode)
		}

		nights := Nights(checkIn, checkOut)
		if b.Status == models.BookingStatusConfirmed && nights != b.Nights {
			return validationf("a confirmed booking must keep %d nights", b.Nights)
		}
		busy, err := hasBlockingOverlap(tx, b.RoomID, checkIn, checkOut, b.ID, true)
		if err != nil {
			return err
		}
		if busy {
			return conflictf("room is already booked for %s to %s", checkIn.Format("2006-01-02"), checkOut.Format("2006-01-02"))
		}

		if b.Status == models.BookingStatusPending {
			if err := s.reprice(tx, &b, checkIn, checkOut, now); err != nil {
				return err
			}
		}
		reason = fmt.Sprintf("dates %s/%s -> %s/%s",
			b.CheckIn.Format("2006-01-02"), b.CheckOut.Format("2006-01-02"),
			checkIn.Format("2006-01-02"), checkOut.Format("2006-01-02"))
		b.CheckIn, b.CheckOut, b.Nights, b.UpdatedAt = checkIn, checkOut, nights, now

		if err := saveBooking(tx, &b); err != nil {
			return err
		}
		if err := writeStatusEvent(tx, b.ID, d.From, d.To, EventReschedule, actor, reason, false, now); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		return models.Booking{}, err
	}

	logger.WithFields(logger.Fields{"booking": booking.ReferenceCode, "change": reason}).Info("booking rescheduled")
	s.events.booking(ctx, events.BookingRescheduled, booking, booking.Status, actor, reason)

	return s.reload(ctx, hotelID, bookingID)
}

func (s *BookingService) reprice(tx *gorm.DB, b *models.Booking, checkIn, checkOut time.Time, asOf time.Time) error {
	req := QuoteRequest{
		HotelID:    b.HotelID,
		RoomID:     b.RoomID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		GuestCount: b.Adults + b.Children,
	}
	if len(b.ServiceIDs) > 0 {
		if err := json.Unmarshal(b.ServiceIDs, &req.ServiceIDs); err != nil {
			return fmt.Errorf("decode service ids of booking %d: %w", b.ID, err)
		}
	}
	if b.PromotionID != nil {
		var promo models.Promotion
		if err := tx.First(&promo, *b.PromotionID).Error; err != nil {
			return fmt.Errorf("failed to load promotion %d: %w", *b.PromotionID, err)
		}
		req.PromoCode = promo.Code
	}
	q, err := s.Pricing.quote(tx, req, asOf)
	if err != nil {
		return err
	}
	b.BaseTotal, b.DiscountTotal, b.ServiceTotal, b.TotalPrice = q.BaseTotal, q.Discount, q.ServiceTotal, q.GrandTotal
	b.PromotionID = q.PromotionID
	return nil
}

// lockBooking takes the room lock, then the booking lock. Every writer uses this
// order. A booking never changes room, so the room_id lookup needs no lock.
func lockBooking(tx *gorm.DB, hotelID, bookingID uint) (models.Booking, models.Room, error) {
	var ref models.Booking
	if err := tx.Select("id", "room_id").Where("hotel_id = ?", hotelID).First(&ref, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ref, models.Room{}, notFoundf("booking %d not found", bookingID)
		}
		return ref, models.Room{}, fmt.Errorf("failed to find booking %d: %w", bookingID, err)
	}
	room, err := findRoom(tx, hotelID, ref.RoomID, true)
	if err != nil {
		return models.Booking{}, room, err
	}
	var b models.Booking
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, bookingID).Error; err != nil {
		return b, room, fmt.Errorf("failed to lock booking %d: %w", bookingID, err)
	}
	return b, room, nil
}

func saveBooking(tx *gorm.DB, b *models.Booking) error {
	if err := tx.Omit(clause.Associations).Save(b).Error; err != nil {
		return translateStorageError(err, "room is already booked for these dates")
	}
	return nil
}

func writeStatusEvent(tx *gorm.DB, bookingID uint, from, to models.BookingStatus, event Event, actor Actor, reason string, override bool, now time.Time) error {
	row := models.BookingStatusEvent{
		BookingID: bookingID,
		From:      from,
		To:        to,
		Event:     string(event),
		ActorID:   actor.UserID,
		ActorRole: string(actor.Role),
		Reason:    reason,
		Override:  override,
		CreatedAt: now,
	}
	if err := tx.Create(&row).Error; err != nil {
		return fmt.Errorf("failed to write booking history: %w", err)
	}
	return nil
}

func eventTypeFor(e Event) string {
	switch e {
	case EventCreate:
		return events.BookingCreated
	case EventConfirmPayment:
		return events.BookingConfirmed
	case EventCheckIn:
		return events.BookingCheckedIn
	case EventCheckOut:
		return events.BookingCheckedOut
	case EventCancel, EventExpire:
		return events.BookingCancelled
	case EventOverride:
		return events.BookingStatusOverridden
	case EventReschedule:
		return events.BookingRescheduled
	}
	return string(e)
}

// eventSink publishes after commit. Publishing failures are logged only.
type eventSink struct {
	pub      events.Publisher
	producer string
}

func (s eventSink) booking(ctx context.Context, eventType string, b models.Booking, from models.BookingStatus, actor Actor, reason string) {
	env, err := events.New(eventType, s.producer, b.ReferenceCode, events.BookingPayload{
		BookingID:     b.ID,
		HotelID:       b.HotelID,
		RoomID:        b.RoomID,
		ReferenceCode: b.ReferenceCode,
		From:          string(from),
		To:            string(b.Status),
		CheckIn:       b.CheckIn,
		CheckOut:      b.CheckOut,
		TotalPrice:    b.TotalPrice,
		ActorID:       actor.UserID,
		ActorRole:     string(actor.Role),
		Reason:        reason,
	})
	if err != nil {
		logger.Error("build booking event", err)
		return
	}
	s.pub.Publish(ctx, env)
}

func (s eventSink) payment(ctx context.Context, b models.Booking, p models.Payment) {
	env, err := events.New(events.PaymentRecorded, s.producer, b.ReferenceCode, events.PaymentPayload{
		BookingID:     b.ID,
		HotelID:       b.HotelID,
		ReferenceCode: b.ReferenceCode,
		Amount:        p.Amount,
		Method:        string(p.Method),
		Status:        string(p.Status),
		ExternalRef:   p.ExternalRef,
	})
	if err != nil {
		logger.Error("build payment event", err)
		return
	}
	s.pub.Publish(ctx, env)
}
