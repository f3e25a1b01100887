package controllers

import (
	"net/http"
	"strconv"

	"hotel-reservation/services"
	"hotel-reservation/utils"

	"github.com/gin-gonic/gin"
)

type QuoteRequest struct {
	RoomTypeID uint   `json:"room_type_id"`
	RoomID     uint   `json:"room_id"`
	CheckIn    string `json:"check_in" binding:"required"`
	CheckOut   string `json:"check_out" binding:"required"`
	Guests     int    `json:"guests"`
	PromoCode  string `json:"promo_code"`
	ServiceIDs []uint `json:"service_ids"`
}

type QuoteController struct {
	Pricing      *services.PricingService
	Availability *services.AvailabilityService
}

func NewQuoteController(pricing *services.PricingService, availability *services.AvailabilityService) *QuoteController {
	return &QuoteController{Pricing: pricing, Availability: availability}
}

// POST /api/hotels/:hotelID/quote
func (qc *QuoteController) Quote(c *gin.Context) {
	hotelID, ok := uintParam(c, "hotelID")
	if !ok {
		return
	}
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	checkIn, checkOut, err := parseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if req.Guests == 0 {
		req.Guests = 1
	}

	quote, err := qc.Pricing.Quote(c.Request.Context(), services.QuoteRequest{
		HotelID:    hotelID,
		RoomTypeID: req.RoomTypeID,
		RoomID:     req.RoomID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		GuestCount: req.Guests,
		PromoCode:  req.PromoCode,
		ServiceIDs: req.ServiceIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, quote)
}

func queryUint(c *gin.Context, key string) (uint, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		respondBadRequest(c, "invalid "+key)
		return 0, false
	}
	return uint(v), true
}

// GET /api/hotels/:hotelID/availability?check_in=&check_out=&room_type_id=&guests=
func (qc *QuoteController) SearchAvailability(c *gin.Context) {
	hotelID, ok := uintParam(c, "hotelID")
	if !ok {
		return
	}
	checkIn, checkOut, err := parseStay(c.Query("check_in"), c.Query("check_out"))
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	roomTypeID, ok := queryUint(c, "room_type_id")
	if !ok {
		return
	}
	guests, ok := queryUint(c, "guests")
	if !ok {
		return
	}

	rooms, err := qc.Availability.SearchAvailableRooms(c.Request.Context(), hotelID, services.RoomSearch{
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		RoomTypeID: roomTypeID,
		Guests:     int(guests),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

// GET /api/hotels/:hotelID/rooms/:roomID/availability?check_in=&check_out=&exclude_booking_id=
func (qc *QuoteController) RoomAvailability(c *gin.Context) {
	hotelID, ok := uintParam(c, "hotelID")
	if !ok {
		return
	}
	roomID, ok := uintParam(c, "roomID")
	if !ok {
		return
	}
	checkIn, checkOut, err := parseStay(c.Query("check_in"), c.Query("check_out"))
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	exclude, ok := queryUint(c, "exclude_booking_id")
	if !ok {
		return
	}

	available, err := qc.Availability.IsAvailable(c.Request.Context(), hotelID, roomID, checkIn, checkOut, exclude)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"room_id":   roomID,
		"check_in":  checkIn.Format("2006-01-02"),
		"check_out": checkOut.Format("2006-01-02"),
		"available": available,
	})
}
