// controllers/booking_controller.go
package controllers

import (
	"net/http"
	"strings"
	"time"

	"hotel-reservation/models"
	"hotel-reservation/services"
	"hotel-reservation/utils"

	"github.com/gin-gonic/gin"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

// CreateBookingRequest: ส่ง room_id หรือ room_type_id อย่างใดอย่างหนึ่ง
type CreateBookingRequest struct {
	RoomID     uint   `json:"room_id"`
	RoomTypeID uint   `json:"room_type_id"`
	CustomerID uint   `json:"customer_id"`
	CheckIn    string `json:"check_in" binding:"required"`
	CheckOut   string `json:"check_out" binding:"required"`

	// ✅ รองรับจำนวนแขก
	Adults   int `json:"adults"`
	Children int `json:"children"`

	GuestName  string                `json:"guest_name"`
	GuestEmail string                `json:"guest_email"`
	GuestPhone string                `json:"guest_phone"`
	GuestList  []services.GuestEntry `json:"guest_list,omitempty"`

	PromoCode  string `json:"promo_code"`
	ServiceIDs []uint `json:"service_ids"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

type PatchStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

type RescheduleRequest struct {
	CheckIn  string `json:"check_in" binding:"required"`
	CheckOut string `json:"check_out" binding:"required"`
}

// ---------------------------
// Controller
// ---------------------------

type BookingController struct {
	BookingSvc *services.BookingService
}

func NewBookingController(svc *services.BookingService) *BookingController {
	return &BookingController{BookingSvc: svc}
}

// bookingTarget resolves the actor and the :hotelID / :id path params.
func bookingTarget(c *gin.Context) (services.Actor, uint, uint, bool) {
	actor, ok := requireActor(c)
	if !ok {
		return actor, 0, 0, false
	}
	hotelID, ok := uintParam(c, "hotelID")
	if !ok {
		return actor, 0, 0, false
	}
	bookingID, ok := uintParam(c, "id")
	if !ok {
		return actor, 0, 0, false
	}
	return actor, hotelID, bookingID, true
}

// POST /api/hotels/:hotelID/bookings
func (bc *BookingController) CreateBooking(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	hotelID, ok := uintParam(c, "hotelID")
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	checkIn, checkOut, err := parseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if req.Adults <= 0 {
		req.Adults = 1
	}

	booking, err := bc.BookingSvc.Create(c.Request.Context(), actor, services.CreateBookingInput{
		HotelID:            hotelID,
		RoomID:             req.RoomID,
		RoomTypeID:         req.RoomTypeID,
		CustomerID:         req.CustomerID,
		CheckIn:            checkIn,
		CheckOut:           checkOut,
		Adults:             req.Adults,
		Children:           req.Children,
		GuestName:          req.GuestName,
		GuestEmail:         req.GuestEmail,
		GuestPhone:         req.GuestPhone,
		AccompanyingGuests: req.GuestList,
		PromoCode:          req.PromoCode,
		ServiceIDs:         req.ServiceIDs,
		IdempotencyKey:     c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, booking)
}

// GET /api/hotels/:hotelID/bookings?status=&from=&to=
func (bc *BookingController) ListBookings(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	hotelID, ok := uintParam(c, "hotelID")
	if !ok {
		return
	}

	filter := services.BookingFilter{Status: models.BookingStatus(strings.ToUpper(strings.TrimSpace(c.Query("status"))))}
	for _, p := range []struct {
		key string
		dst *time.Time
	}{{"from", &filter.From}, {"to", &filter.To}} {
		if raw := c.Query(p.key); raw != "" {
			t, err := parseDate(p.key, raw)
			if err != nil {
				respondBadRequest(c, err.Error())
				return
			}
			*p.dst = t
		}
	}

	list, err := bc.BookingSvc.List(c.Request.Context(), actor, hotelID, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// GET /api/hotels/:hotelID/bookings/:id
func (bc *BookingController) GetBooking(c *gin.Context) {
	actor, hotelID, bookingID, ok := bookingTarget(c)
	if !ok {
		return
	}
	booking, err := bc.BookingSvc.Get(c.Request.Context(), actor, hotelID, bookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// GET /api/hotels/:hotelID/bookings/:id/history
func (bc *BookingController) GetHistory(c *gin.Context) {
	actor, hotelID, bookingID, ok := bookingTarget(c)
	if !ok {
		return
	}
	history, err := bc.BookingSvc.History(c.Request.Context(), actor, hotelID, bookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, history)
}

// POST /api/hotels/:hotelID/bookings/:id/cancel
func (bc *BookingController) CancelBooking(c *gin.Context) {
	actor, hotelID, bookingID, ok := bookingTarget(c)
	if !ok {
		return
	}
	var req CancelBookingRequest
	// body เป็น optional
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, err.Error())
			return
		}
	}
	booking, err := bc.BookingSvc.Cancel(c.Request.Context(), actor, hotelID, bookingID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// POST /api/hotels/:hotelID/bookings/:id/check-in
func (bc *BookingController) CheckIn(c *gin.Context) {
	actor, hotelID, bookingID, ok := bookingTarget(c)
	if !ok {
		return
	}
	booking, err := bc.BookingSvc.CheckIn(c.Request.Context(), actor, hotelID, bookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// POST /api/hotels/:hotelID/bookings/:id/check-out
func (bc *BookingController) CheckOut(c *gin.Context) {
	actor, hotelID, bookingID, ok := bookingTarget(c)
	if !ok {
		return
	}
	booking, err := bc.BookingSvc.CheckOut(c.Request.Context(), actor, hotelID, bookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// PATCH /api/hotels/:hotelID/bookings/:id/status
func (bc *BookingController) PatchStatus(c *gin.Context) {
	actor, hotelID, bookingID, ok := bookingTarget(c)
	if !ok {
		return
	}
	var req PatchStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	target := models.BookingStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	booking, err := bc.BookingSvc.PatchStatus(c.Request.Context(), actor, hotelID, bookingID, target, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// PATCH /api/hotels/:hotelID/bookings/:id/dates
func (bc *BookingController) Reschedule(c *gin.Context) {
	actor, hotelID, bookingID, ok := bookingTarget(c)
	if !ok {
		return
	}
	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	checkIn, checkOut, err := parseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	booking, err := bc.BookingSvc.Reschedule(c.Request.Context(), actor, hotelID, bookingID, checkIn, checkOut)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}
