package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"hotel-reservation/models"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlockingStatuses are the booking statuses that hold a room for their stay.
// PENDING (unpaid) bookings never block.
var BlockingStatuses = []models.BookingStatus{
	models.BookingStatusConfirmed,
	models.BookingStatusCheckedIn,
}

// Overlaps reports whether [aIn, aOut) and [bIn, bOut) intersect.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && bIn.Before(aOut)
}

// IsFree is the in-memory form of the oracle, used for read-only search only.
func IsFree(existing []models.Booking, checkIn, checkOut time.Time, excludeBookingID uint) bool {
	for _, b := range existing {
		if excludeBookingID != 0 && b.ID == excludeBookingID {
			continue
		}
		if !b.Status.HoldsRoom() {
			continue
		}
		if Overlaps(b.CheckIn, b.CheckOut, checkIn, checkOut) {
			return false
		}
	}
	return true
}

// StayDate truncates t to its calendar date in UTC, the form stay dates are stored in.
func StayDate(t time.Time) time.Time {
	d := now.With(t).BeginningOfDay()
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// stayRange turns a requested stay into UTC dates. Stays are whole calendar
// dates, so an input carrying a time of day is rejected.
func stayRange(checkIn, checkOut time.Time) (time.Time, time.Time, error) {
	for _, t := range []time.Time{checkIn, checkOut} {
		if !t.IsZero() && !t.Equal(now.With(t).BeginningOfDay()) {
			return time.Time{}, time.Time{}, validationf("check_in and check_out must be dates without a time of day")
		}
	}
	in, out := StayDate(checkIn), StayDate(checkOut)
	if err := validateRange(in, out); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return in, out, nil
}

func validateRange(checkIn, checkOut time.Time) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return validationf("check_in and check_out are required")
	}
	if !checkOut.After(checkIn) {
		return validationf("check_out must be after check_in")
	}
	return nil
}

type AvailabilityService struct {
	DB *gorm.DB
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{DB: db}
}

// IsAvailable decides whether the room is free for [checkIn, checkOut).
func (s *AvailabilityService) IsAvailable(ctx context.Context, hotelID, roomID uint, checkIn, checkOut time.Time, excludeBookingID uint) (bool, error) {
	checkIn, checkOut, err := stayRange(checkIn, checkOut)
	if err != nil {
		return false, err
	}
	if _, err := findRoom(s.DB.WithContext(ctx), hotelID, roomID, false); err != nil {
		return false, err
	}
	busy, err := hasBlockingOverlap(s.DB.WithContext(ctx), roomID, checkIn, checkOut, excludeBookingID, false)
	if err != nil {
		return false, err
	}
	return !busy, nil
}

// hasBlockingOverlap pushes the interval predicate into the query. Writers
// hold the room row lock and pass lock=true so the read sees the latest
// committed bookings, not the REPEATABLE READ snapshot.
func hasBlockingOverlap(tx *gorm.DB, roomID uint, checkIn, checkOut time.Time, excludeBookingID uint, lock bool) (bool, error) {
	q := tx.Model(&models.Booking{}).
		Where("room_id = ?", roomID).
		Where("status IN ?", BlockingStatuses).
		Where("check_in < ? AND check_out > ?", checkOut, checkIn)
	if excludeBookingID != 0 {
		q = q.Where("id <> ?", excludeBookingID)
	}
	if lock {
		q = q.Clauses(clause.Locking{Strength: "SHARE"})
	}
	// no COUNT: postgres rejects FOR SHARE on aggregates
	var hits []uint
	if err := q.Limit(1).Pluck("id", &hits).Error; err != nil {
		return false, fmt.Errorf("failed to check room overlap: %w", err)
	}
	return len(hits) > 0, nil
}

func findRoom(tx *gorm.DB, hotelID, roomID uint, lock bool) (models.Room, error) {
	var room models.Room
	q := tx.Preload("RoomType").Where("hotel_id = ?", hotelID)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&room, roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return room, notFoundf("room %d not found", roomID)
		}
		return room, fmt.Errorf("failed to load room %d: %w", roomID, err)
	}
	return room, nil
}

type RoomSearch struct {
	CheckIn    time.Time
	CheckOut   time.Time
	RoomTypeID uint
	Guests     int
}

// SearchAvailableRooms lists active rooms of the hotel that fit the guests and
// are free for the whole range.
func (s *AvailabilityService) SearchAvailableRooms(ctx context.Context, hotelID uint, q RoomSearch) ([]models.Room, error) {
	checkIn, checkOut, err := stayRange(q.CheckIn, q.CheckOut)
	if err != nil {
		return nil, err
	}
	if q.Guests < 0 {
		return nil, validationf("guests must not be negative")
	}

	db := s.DB.WithContext(ctx)
	roomQuery := db.Preload("RoomType").Where("hotel_id = ? AND active = ?", hotelID, true)
	if q.RoomTypeID != 0 {
		roomQuery = roomQuery.Where("room_type_id = ?", q.RoomTypeID)
	}
	var rooms []models.Room
	if err := roomQuery.Order("room_number").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}
	if len(rooms) == 0 {
		return []models.Room{}, nil
	}

	roomIDs := make([]uint, 0, len(rooms))
	for _, r := range rooms {
		roomIDs = append(roomIDs, r.ID)
	}
	var existing []models.Booking
	if err := db.
		Where("room_id IN ?", roomIDs).
		Where("status IN ?", BlockingStatuses).
		Where("check_in < ? AND check_out > ?", checkOut, checkIn).
		Find(&existing).Error; err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	byRoom := map[uint][]models.Booking{}
	for _, b := range existing {
		byRoom[b.RoomID] = append(byRoom[b.RoomID], b)
	}

	out := make([]models.Room, 0, len(rooms))
	for _, r := range rooms {
		if q.Guests > 0 && r.MaxGuests() < q.Guests {
			continue
		}
		if IsFree(byRoom[r.ID], checkIn, checkOut, 0) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].NightlyRate() < out[j].NightlyRate() })
	return out, nil
}
