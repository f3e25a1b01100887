package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"hotel-reservation/models"

	"gorm.io/gorm"
)

type QuoteRequest struct {
	HotelID    uint
	RoomTypeID uint
	RoomID     uint
	CheckIn    time.Time
	CheckOut   time.Time
	GuestCount int
	PromoCode  string
	ServiceIDs []uint
}

type Quote struct {
	Nights       int    `json:"nights"`
	NightlyRate  int64  `json:"nightly_rate"`
	BaseTotal    int64  `json:"base_total"`
	Discount     int64  `json:"discount"`
	ServiceTotal int64  `json:"service_total"`
	GrandTotal   int64  `json:"grand_total"`
	PromotionID  *uint  `json:"promotion_id,omitempty"`
	PromoCode    string `json:"promo_code,omitempty"`
}

// Nights counts billable nights: partial days round up, minimum one.
func Nights(checkIn, checkOut time.Time) int {
	hours := checkOut.Sub(checkIn).Hours()
	n := int(math.Ceil(hours / 24))
	if n < 1 {
		return 1
	}
	return n
}

// PromotionDiscount computes the discount a promotion grants on baseTotal.
// The result is never negative and never exceeds baseTotal.
func PromotionDiscount(p models.Promotion, baseTotal int64) int64 {
	if baseTotal <= 0 {
		return 0
	}
	var d int64
	switch p.DiscountType {
	case models.DiscountPercent:
		d = int64(math.Round(float64(baseTotal) * p.Value / 100))
	case models.DiscountFixed:
		d = int64(math.Round(p.Value))
	}
	if d < 0 {
		return 0
	}
	if d > baseTotal {
		return baseTotal
	}
	return d
}

// CheckPromotion verifies the validity window, scope and threshold of p.
func CheckPromotion(p models.Promotion, roomTypeID uint, baseTotal int64, asOf time.Time) error {
	if !p.Active {
		return promotionInvalidf("promotion %s is not active", p.Code)
	}
	if asOf.Before(p.ValidFrom) || asOf.After(p.ValidUntil) {
		return promotionInvalidf("promotion %s is not valid at %s", p.Code, asOf.Format(time.RFC3339))
	}
	if p.RoomTypeID != nil && *p.RoomTypeID != roomTypeID {
		return promotionInvalidf("promotion %s does not apply to this room type", p.Code)
	}
	if p.MinTotal != nil && baseTotal < *p.MinTotal {
		return promotionInvalidf("promotion %s requires a minimum total of %d", p.Code, *p.MinTotal)
	}
	switch p.DiscountType {
	case models.DiscountPercent, models.DiscountFixed:
	default:
		return promotionInvalidf("promotion %s has unknown discount type %q", p.Code, p.DiscountType)
	}
	return nil
}

// ServiceCharge prices one extra service for a stay.
func ServiceCharge(svc models.ExtraService, nights, guests int) int64 {
	switch svc.Unit {
	case models.ServiceUnitPerNight:
		return svc.Price * int64(nights)
	case models.ServiceUnitPerGuestNight:
		return svc.Price * int64(nights) * int64(guests)
	default:
		return svc.Price
	}
}

type PricingService struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewPricingService(db *gorm.DB) *PricingService {
	return &PricingService{DB: db, Now: time.Now}
}

// Quote computes a price without persisting anything.
func (s *PricingService) Quote(ctx context.Context, req QuoteRequest) (Quote, error) {
	return s.quote(s.DB.WithContext(ctx), req, s.Now().UTC())
}

// quote runs on tx so booking creation prices inside its own transaction.
func (s *PricingService) quote(tx *gorm.DB, req QuoteRequest, asOf time.Time) (Quote, error) {
	checkIn, checkOut, err := stayRange(req.CheckIn, req.CheckOut)
	if err != nil {
		return Quote{}, err
	}
	if req.GuestCount < 1 {
		return Quote{}, validationf("guest count must be at least 1")
	}

	rate, roomTypeID, maxGuests, err := s.resolveRate(tx, req)
	if err != nil {
		return Quote{}, err
	}
	if maxGuests > 0 && req.GuestCount > maxGuests {
		return Quote{}, validationf("guest count %d exceeds capacity %d", req.GuestCount, maxGuests)
	}

	q := Quote{
		Nights:      Nights(checkIn, checkOut),
		NightlyRate: rate,
	}
	q.BaseTotal = int64(q.Nights) * rate

	if code := strings.TrimSpace(req.PromoCode); code != "" {
		promo, err := s.findPromotion(tx, req.HotelID, code)
		if err != nil {
			return Quote{}, err
		}
		if err := CheckPromotion(promo, roomTypeID, q.BaseTotal, asOf); err != nil {
			return Quote{}, err
		}
		q.Discount = PromotionDiscount(promo, q.BaseTotal)
		q.PromotionID = &promo.ID
		q.PromoCode = promo.Code
	}

	if len(req.ServiceIDs) > 0 {
		total, err := s.serviceTotal(tx, req.HotelID, req.ServiceIDs, q.Nights, req.GuestCount)
		if err != nil {
			return Quote{}, err
		}
		q.ServiceTotal = total
	}

	q.GrandTotal = q.BaseTotal - q.Discount + q.ServiceTotal
	if q.GrandTotal < 0 {
		q.GrandTotal = 0
	}
	return q, nil
}

func (s *PricingService) resolveRate(tx *gorm.DB, req QuoteRequest) (rate int64, roomTypeID uint, maxGuests int, err error) {
	if req.RoomID != 0 {
		room, err := findRoom(tx, req.HotelID, req.RoomID, false)
		if err != nil {
			return 0, 0, 0, err
		}
		if room.RoomTypeID != nil {
			roomTypeID = *room.RoomTypeID
		}
		return room.NightlyRate(), roomTypeID, room.MaxGuests(), nil
	}
	if req.RoomTypeID == 0 {
		return 0, 0, 0, validationf("room_type_id or room_id is required")
	}
	var rt models.RoomType
	if err := tx.Where("hotel_id = ?", req.HotelID).First(&rt, req.RoomTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, 0, notFoundf("room type %d not found", req.RoomTypeID)
		}
		return 0, 0, 0, fmt.Errorf("failed to load room type %d: %w", req.RoomTypeID, err)
	}
	return rt.BaseRate, rt.ID, rt.MaxGuests, nil
}

func (s *PricingService) findPromotion(tx *gorm.DB, hotelID uint, code string) (models.Promotion, error) {
	var p models.Promotion
	err := tx.Where("hotel_id = ? AND UPPER(code) = ?", hotelID, strings.ToUpper(code)).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return p, promotionInvalidf("promotion code %s does not exist", code)
		}
		return p, fmt.Errorf("failed to load promotion: %w", err)
	}
	return p, nil
}

func (s *PricingService) serviceTotal(tx *gorm.DB, hotelID uint, ids []uint, nights, guests int) (int64, error) {
	unique := map[uint]struct{}{}
	deduped := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := unique[id]; !ok {
			unique[id] = struct{}{}
			deduped = append(deduped, id)
		}
	}
	var svcs []models.ExtraService
	if err := tx.Where("hotel_id = ? AND active = ? AND id IN ?", hotelID, true, deduped).Find(&svcs).Error; err != nil {
		return 0, fmt.Errorf("failed to load services: %w", err)
	}
	if len(svcs) != len(deduped) {
		return 0, validationf("one or more services are unknown or unavailable")
	}
	var total int64
	for _, svc := range svcs {
		total += ServiceCharge(svc, nights, guests)
	}
	return total, nil
}
