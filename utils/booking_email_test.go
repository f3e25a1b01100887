package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	for in, want := range map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		1800000:  "1,800,000",
		-250000:  "-250,000",
		12345678: "12,345,678",
	} {
		assert.Equal(t, want, FormatAmount(in), in)
	}
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "s*****i@e******.com", MaskEmail("somchai@example.com"))
	assert.Equal(t, "a*@m***.co.th", MaskEmail("ab@mail.co.th"))
	assert.Equal(t, "not-an-email", MaskEmail("not-an-email"))
}

func TestSMTPConfig(t *testing.T) {
	assert.False(t, SMTPConfig{Host: "smtp.local", Port: "587"}.Enabled())

	cfg := SMTPConfig{Host: "smtp.local", Port: "587", Username: "bot@hotel.local", Password: "pw", FromName: "Front Desk"}
	assert.True(t, cfg.Enabled())
	assert.Equal(t, "smtp.local:587", cfg.Addr())
	assert.Equal(t, "Front Desk <bot@hotel.local>", cfg.From())
	assert.Equal(t, "bot@hotel.local", SMTPConfig{Username: "bot@hotel.local"}.From())
}

func TestBuildBookingMessage_Confirmation(t *testing.T) {
	msg := string(BuildBookingMessage("Front Desk <bot@hotel.local>", BookingEmail{
		Recipient:     "somchai@example.com",
		GuestName:     "Somchai <b>",
		HotelName:     "Riverside",
		ReferenceCode: "BK-1234",
		RoomNumber:    "R101",
		RoomType:      "Deluxe",
		CheckIn:       "2025-06-01",
		CheckOut:      "2025-06-03",
		Nights:        2,
		TotalPrice:    1800000,
	}))

	assert.Contains(t, msg, "Subject: Booking Confirmation - BK-1234\r\n")
	assert.Contains(t, msg, "To: somchai@example.com\r\n")
	assert.Contains(t, msg, "Room: R101 (Deluxe)")
	assert.Contains(t, msg, "Check-Out: 2025-06-03 (2 night(s))")
	assert.Contains(t, msg, "Total: 1,800,000")
	assert.Contains(t, msg, "Dear Somchai &lt;b&gt;,", "html part is escaped")
	assert.Equal(t, 3, strings.Count(msg, "--"+mailBoundary))
}

func TestBuildBookingMessage_Cancellation(t *testing.T) {
	refund, forfeit := true, false

	msg := string(BuildBookingMessage("bot@hotel.local", BookingEmail{
		Recipient: "a@b.co", ReferenceCode: "BK-9", Cancelled: true,
		CancelReason: "plans changed", RefundEligible: &refund,
	}))
	assert.Contains(t, msg, "Subject: Booking Cancelled - BK-9")
	assert.Contains(t, msg, "Reason: plans changed")
	assert.Contains(t, msg, "will be refunded")
	assert.Contains(t, msg, "Dear Guest,")

	msg = string(BuildBookingMessage("bot@hotel.local", BookingEmail{
		Recipient: "a@b.co", ReferenceCode: "BK-9", Cancelled: true, RefundEligible: &forfeit,
	}))
	assert.Contains(t, msg, "not refundable")
}

func TestBuildBookingMessage_StripsHeaderInjection(t *testing.T) {
	msg := string(BuildBookingMessage("bot@hotel.local", BookingEmail{
		Recipient:     "victim@example.com\r\nBcc: everyone@example.com",
		ReferenceCode: "BK-1",
	}))
	assert.NotContains(t, msg, "\r\nBcc:")
}
