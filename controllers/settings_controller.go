package controllers

import (
	"net/http"

	"hotel-reservation/utils"

	"github.com/gin-gonic/gin"
)

// GET /api/hotels/:hotelID
func (cc *CatalogController) GetHotel(c *gin.Context) {
	hotelID, ok := uintParam(c, "hotelID")
	if !ok {
		return
	}
	hotel, err := cc.Catalog.Hotel(c.Request.Context(), hotelID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"hotel": hotel, "timezone": hotel.Location().String()})
}
