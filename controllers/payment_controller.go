package controllers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"hotel-reservation/logger"
	"hotel-reservation/models"
	"hotel-reservation/services"
	"hotel-reservation/utils"

	"github.com/gin-gonic/gin"
)

const maxCallbackBody = 64 << 10

type ManualPaymentRequest struct {
	Method      string `json:"method"`
	Amount      int64  `json:"amount"`
	Status      string `json:"status"`
	ExternalRef string `json:"external_ref"`
}

type PaymentController struct {
	Ledger  *services.PaymentLedger
	Gateway *services.GatewayAdapter
}

func NewPaymentController(ledger *services.PaymentLedger, gateway *services.GatewayAdapter) *PaymentController {
	return &PaymentController{Ledger: ledger, Gateway: gateway}
}

// POST /api/hotels/:hotelID/bookings/:id/pay
func (pc *PaymentController) PayBooking(c *gin.Context) {
	actor, hotelID, bookingID, ok := bookingTarget(c)
	if !ok {
		return
	}
	var req ManualPaymentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, err.Error())
			return
		}
	}

	booking, payment, err := pc.Ledger.RecordPayment(c.Request.Context(), services.PaymentInput{
		HotelID:     hotelID,
		BookingID:   bookingID,
		Method:      models.PaymentMethod(strings.ToUpper(strings.TrimSpace(req.Method))),
		Amount:      req.Amount,
		Status:      models.PaymentStatus(strings.ToUpper(strings.TrimSpace(req.Status))),
		ExternalRef: req.ExternalRef,
		Actor:       actor,
		Source:      services.SourceManual,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"booking": booking, "payment": payment})
}

// POST /api/hotels/:hotelID/payments/gateway/callback
// The provider only ever sees "received" or "retry".
func (pc *PaymentController) GatewayCallback(c *gin.Context) {
	hotelID, err := strconv.ParseUint(strings.TrimSpace(c.Param("hotelID")), 10, 64)
	if err != nil || hotelID == 0 {
		logger.WithFields(logger.Fields{"hotel_id": c.Param("hotelID")}).Warn("gateway callback: invalid hotel id")
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCallbackBody))
	if err != nil {
		logger.Error("gateway callback: read body", err)
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return
	}

	ack := pc.Gateway.HandleCallback(c.Request.Context(), uint(hotelID), raw)
	if ack.Retry() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "retry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
