package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"hotel-reservation/cache"
	"hotel-reservation/logger"
	"hotel-reservation/models"

	"gorm.io/gorm"
)

const dedupScopeGateway = "gateway"

// GatewayNotification is the provider's callback body.
type GatewayNotification struct {
	OrderRef    string `json:"orderRef"`
	ExternalRef string `json:"externalRef"`
	Amount      int64  `json:"amount"`
	Status      string `json:"status"`
	Method      string `json:"method,omitempty"`
	Signature   string `json:"signature"`
}

func (n GatewayNotification) signedString() string {
	return strings.Join([]string{n.OrderRef, n.ExternalRef, strconv.FormatInt(n.Amount, 10), n.Status}, "|")
}

// SignGatewayNotification returns the hex HMAC-SHA256 the provider attaches to n.
func SignGatewayNotification(secret string, n GatewayNotification) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(n.signedString()))
	return hex.EncodeToString(mac.Sum(nil))
}

// NormalizeGatewayStatus maps provider vocabularies onto payment statuses.
func NormalizeGatewayStatus(s string) (models.PaymentStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUCCESS", "PAID", "SETTLED":
		return models.PaymentStatusPaid, true
	case "FAILED", "DECLINED", "EXPIRED":
		return models.PaymentStatusFailed, true
	case "PENDING":
		return models.PaymentStatusPending, true
	}
	return "", false
}

type AckOutcome string

const (
	AckProcessed AckOutcome = "processed"
	AckDuplicate AckOutcome = "duplicate"
	AckRejected  AckOutcome = "rejected"
	AckRetry     AckOutcome = "retry"
)

// Ack is what the provider gets back. Only AckRetry asks for redelivery; the
// other outcomes look the same from outside.
type Ack struct {
	Outcome AckOutcome
}

func (a Ack) Retry() bool { return a.Outcome == AckRetry }

type GatewayAdapter struct {
	Ledger   *PaymentLedger
	Dedup    cache.Deduper
	Secret   string
	Attempts int
	Backoff  time.Duration
}

func NewGatewayAdapter(ledger *PaymentLedger, dedup cache.Deduper, secret string) *GatewayAdapter {
	if dedup == nil {
		dedup = cache.NopDeduper{}
	}
	return &GatewayAdapter{Ledger: ledger, Dedup: dedup, Secret: secret, Attempts: 3, Backoff: 200 * time.Millisecond}
}

// HandleCallback verifies and applies one provider notification.
func (g *GatewayAdapter) HandleCallback(ctx context.Context, hotelID uint, raw []byte) Ack {
	var n GatewayNotification
	if err := json.Unmarshal(raw, &n); err != nil {
		logger.Error("gateway callback: malformed body", err)
		return Ack{Outcome: AckRejected}
	}
	log := logger.WithFields(logger.Fields{
		"hotel_id": hotelID, "order_ref": n.OrderRef, "external_ref": n.ExternalRef, "status": n.Status,
	})

	if !g.verify(n) {
		log.Warn("gateway callback: invalid signature")
		return Ack{Outcome: AckRejected}
	}
	status, ok := NormalizeGatewayStatus(n.Status)
	if !ok {
		log.Warn("gateway callback: unknown status")
		return Ack{Outcome: AckRejected}
	}
	if n.ExternalRef == "" || n.OrderRef == "" {
		log.Warn("gateway callback: missing references")
		return Ack{Outcome: AckRejected}
	}

	dedupID := n.ExternalRef + ":" + string(status)
	if seen, err := g.Dedup.Seen(ctx, dedupScopeGateway, dedupID); err != nil {
		log.WithError(err).Warn("gateway callback: dedup lookup failed, continuing")
	} else if seen {
		log.Info("gateway callback: duplicate delivery")
		return Ack{Outcome: AckDuplicate}
	}

	in := PaymentInput{
		HotelID:     hotelID,
		Amount:      n.Amount,
		Status:      status,
		ExternalRef: n.ExternalRef,
		Source:      SourceGateway,
		RawPayload:  raw,
	}

	attempts := g.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for i := 1; i <= attempts; i++ {
		lastErr = g.apply(ctx, n.OrderRef, in)
		if lastErr == nil {
			if err := g.Dedup.Mark(ctx, dedupScopeGateway, dedupID); err != nil {
				log.WithError(err).Warn("gateway callback: dedup mark failed")
			}
			return Ack{Outcome: AckProcessed}
		}
		if IsDomainError(lastErr) {
			log.WithError(lastErr).Warn("gateway callback: rejected")
			return Ack{Outcome: AckRejected}
		}
		log.WithError(lastErr).WithField("attempt", i).Warn("gateway callback: transient failure")
		if i < attempts {
			select {
			case <-ctx.Done():
				return Ack{Outcome: AckRetry}
			case <-time.After(time.Duration(i) * g.Backoff):
			}
		}
	}
	log.WithError(lastErr).Error("gateway callback: giving up, provider will redeliver")
	return Ack{Outcome: AckRetry}
}

func (g *GatewayAdapter) apply(ctx context.Context, orderRef string, in PaymentInput) error {
	var b models.Booking
	err := g.Ledger.DB.WithContext(ctx).Select("id").
		Where("hotel_id = ? AND reference_code = ?", in.HotelID, orderRef).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFoundf("booking %s not found", orderRef)
		}
		return fmt.Errorf("failed to find booking %s: %w", orderRef, err)
	}
	in.BookingID = b.ID
	_, _, err = g.Ledger.RecordPayment(ctx, in)
	return err
}

func (g *GatewayAdapter) verify(n GatewayNotification) bool {
	if g.Secret == "" || n.Signature == "" {
		return false
	}
	got, err := hex.DecodeString(strings.TrimSpace(n.Signature))
	if err != nil {
		return false
	}
	want, _ := hex.DecodeString(SignGatewayNotification(g.Secret, n))
	return hmac.Equal(got, want)
}
