package services

import (
	"context"
	"fmt"
	"time"

	"hotel-reservation/logger"
	"hotel-reservation/models"
)

// ExpirySweeper cancels PENDING bookings that were never paid.
type ExpirySweeper struct {
	Bookings *BookingService
	Interval time.Duration
	Batch    int
}

func NewExpirySweeper(bookings *BookingService, interval time.Duration) *ExpirySweeper {
	return &ExpirySweeper{Bookings: bookings, Interval: interval, Batch: 100}
}

// Run sweeps every Interval until ctx is cancelled.
func (s *ExpirySweeper) Run(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	logger.Infof("expiry sweeper started (every %s, expiry %s)", interval, s.Bookings.Machine.PendingExpiry)
	for {
		select {
		case <-ctx.Done():
			logger.Info("expiry sweeper stopped")
			return nil
		case <-t.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				logger.Error("expiry sweep failed", err)
			}
		}
	}
}

// SweepOnce expires one batch and returns how many bookings were cancelled.
// Each candidate is decided again under its row lock, so a payment landing
// between the scan and the update wins.
func (s *ExpirySweeper) SweepOnce(ctx context.Context) (int, error) {
	cutoff := s.Bookings.now().Add(-s.Bookings.Machine.PendingExpiry)

	var candidates []models.Booking
	err := s.Bookings.DB.WithContext(ctx).Select("id", "hotel_id").
		Where("status = ? AND created_at <= ?", models.BookingStatusPending, cutoff).
		Where("payment_status IS NULL OR payment_status <> ?", models.PaymentStatusPaid).
		Order("id").Limit(s.batch()).Find(&candidates).Error
	if err != nil {
		return 0, fmt.Errorf("failed to scan pending bookings: %w", err)
	}

	expired := 0
	for _, c := range candidates {
		if ctx.Err() != nil {
			return expired, ctx.Err()
		}
		if _, err := s.Bookings.Expire(ctx, c.HotelID, c.ID); err != nil {
			if IsDomainError(err) {
				logger.WithFields(logger.Fields{"booking_id": c.ID}).Debug("skip expiry: " + err.Error())
				continue
			}
			return expired, err
		}
		expired++
	}
	if expired > 0 {
		logger.Infof("expired %d pending bookings", expired)
	}
	return expired, nil
}

func (s *ExpirySweeper) batch() int {
	if s.Batch <= 0 {
		return 100
	}
	return s.Batch
}
