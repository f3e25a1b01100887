// utils/booking_email.go
package utils

import (
	"fmt"
	"net/smtp"
	"strconv"
	"strings"
)

// SMTPConfig is read from SMTP_* env. An incomplete config means mock send.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Port != "" && c.Username != "" && c.Password != ""
}

func (c SMTPConfig) Addr() string { return c.Host + ":" + c.Port }

func (c SMTPConfig) From() string {
	if c.FromName == "" {
		return c.Username
	}
	return fmt.Sprintf("%s <%s>", safeHeader(c.FromName), c.Username)
}

func (c SMTPConfig) Auth() smtp.Auth {
	return smtp.PlainAuth("", c.Username, c.Password, c.Host)
}

// MailSender matches smtp.SendMail so tests can capture messages.
type MailSender func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// BookingEmail holds what a guest sees about one booking.
type BookingEmail struct {
	Recipient     string
	GuestName     string
	HotelName     string
	ReferenceCode string
	RoomNumber    string
	RoomType      string
	CheckIn       string
	CheckOut      string
	Nights        int
	TotalPrice    int64

	// Cancelled switches the template to a cancellation notice.
	Cancelled      bool
	CancelReason   string
	RefundEligible *bool
}

func (e BookingEmail) Subject() string {
	if e.Cancelled {
		return fmt.Sprintf("Booking Cancelled - %s", safeHeader(e.ReferenceCode))
	}
	return fmt.Sprintf("Booking Confirmation - %s", safeHeader(e.ReferenceCode))
}

const mailBoundary = "----=_HOTEL_BOOKING_BOUNDARY"

// BuildBookingMessage renders a multipart/alternative message (plain + html).
func BuildBookingMessage(from string, e BookingEmail) []byte {
	guest := safeHeader(e.GuestName)
	if guest == "" {
		guest = "Guest"
	}
	room := safeHeader(e.RoomNumber)
	if t := safeHeader(e.RoomType); t != "" {
		room = fmt.Sprintf("%s (%s)", room, t)
	}

	var lead, extra string
	if e.Cancelled {
		lead = "Your booking has been cancelled."
		if e.CancelReason != "" {
			extra += "Reason: " + safeHeader(e.CancelReason) + "\n"
		}
		if e.RefundEligible != nil {
			if *e.RefundEligible {
				extra += "Your payment will be refunded.\n"
			} else {
				extra += "This cancellation is inside the cancellation window and is not refundable.\n"
			}
		}
	} else {
		lead = "Thank you for booking with us! Your payment was received and your stay is confirmed."
	}

	plain := fmt.Sprintf(
		"Dear %s,\n\n%s\n\n"+
			"Hotel: %s\n"+
			"Booking Reference: %s\n"+
			"Room: %s\n"+
			"Check-In: %s\n"+
			"Check-Out: %s (%d night(s))\n"+
			"Total: %s\n\n%s"+
			"Best regards,\n%s",
		guest, lead,
		safeHeader(e.HotelName),
		safeHeader(e.ReferenceCode),
		room,
		safeHeader(e.CheckIn),
		safeHeader(e.CheckOut), e.Nights,
		FormatAmount(e.TotalPrice),
		extra,
		safeHeader(e.HotelName),
	)

	html := fmt.Sprintf(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>%s</title></head>
<body style="background:#f5f7fb;font-family:Arial,Helvetica,sans-serif;color:#222;">
<div style="max-width:700px;margin:20px auto;background:#fff;border:1px solid #e6eef6;padding:24px;border-radius:8px;">
  <p>Dear %s,</p>
  <p>%s</p>
  <p><b>Hotel:</b> %s</p>
  <p><b>Booking Reference:</b> %s</p>
  <p><b>Room:</b> %s</p>
  <p><b>Check-In:</b> %s</p>
  <p><b>Check-Out:</b> %s (%d night(s))</p>
  <p><b>Total:</b> %s</p>
  <p>%s</p>
  <p>Best regards,<br>%s</p>
</div>
</body>
</html>`,
		htmlEscape(e.Subject()),
		htmlEscape(guest),
		htmlEscape(lead),
		htmlEscape(safeHeader(e.HotelName)),
		htmlEscape(safeHeader(e.ReferenceCode)),
		htmlEscape(room),
		htmlEscape(safeHeader(e.CheckIn)),
		htmlEscape(safeHeader(e.CheckOut)), e.Nights,
		htmlEscape(FormatAmount(e.TotalPrice)),
		strings.ReplaceAll(htmlEscape(strings.TrimSpace(extra)), "\n", "<br>"),
		htmlEscape(safeHeader(e.HotelName)),
	)

	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s\r\n", from)
	fmt.Fprintf(&sb, "To: %s\r\n", safeHeader(e.Recipient))
	fmt.Fprintf(&sb, "Subject: %s\r\n", e.Subject())
	sb.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&sb, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", mailBoundary)

	fmt.Fprintf(&sb, "--%s\r\n", mailBoundary)
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(plain + "\r\n")

	fmt.Fprintf(&sb, "--%s\r\n", mailBoundary)
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(html + "\r\n")

	fmt.Fprintf(&sb, "--%s--\r\n", mailBoundary)
	return []byte(sb.String())
}

// FormatAmount groups thousands: 1800000 -> "1,800,000".
func FormatAmount(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// MaskEmail returns masked email for safe display (logs)
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}
	local, domain := parts[0], parts[1]

	maskedLocal := local
	if len(local) > 2 {
		maskedLocal = local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:]
	} else if len(local) == 2 {
		maskedLocal = local[:1] + "*"
	}

	domainParts := strings.Split(domain, ".")
	if len(domainParts) >= 2 && len(domainParts[0]) > 1 {
		domainParts[0] = domainParts[0][:1] + strings.Repeat("*", len(domainParts[0])-1)
	}
	return maskedLocal + "@" + strings.Join(domainParts, ".")
}

// header injection: collapse line breaks
func safeHeader(s string) string {
	return strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(strings.TrimSpace(s))
}

func htmlEscape(s string) string {
	return strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	).Replace(s)
}
