package controllers

import (
	"net/http"

	"hotel-reservation/services"
	"hotel-reservation/utils"

	"github.com/gin-gonic/gin"
)

type CatalogController struct {
	Catalog *services.CatalogService
}

func NewCatalogController(catalog *services.CatalogService) *CatalogController {
	return &CatalogController{Catalog: catalog}
}

// ----------------------------------------------------
// GET /api/hotels/:hotelID/rooms?room_type_id=
// ----------------------------------------------------

func (cc *CatalogController) GetRooms(c *gin.Context) {
	hotelID, ok := uintParam(c, "hotelID")
	if !ok {
		return
	}
	roomTypeID, ok := queryUint(c, "room_type_id")
	if !ok {
		return
	}
	rooms, err := cc.Catalog.Rooms(c.Request.Context(), hotelID, roomTypeID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

// ----------------------------------------------------
// GET /api/hotels/:hotelID/rooms/:roomID
// ----------------------------------------------------

func (cc *CatalogController) GetRoom(c *gin.Context) {
	hotelID, ok := uintParam(c, "hotelID")
	if !ok {
		return
	}
	roomID, ok := uintParam(c, "roomID")
	if !ok {
		return
	}
	room, err := cc.Catalog.Room(c.Request.Context(), hotelID, roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// ----------------------------------------------------
// GET /api/hotels/:hotelID/room-types
// ----------------------------------------------------

func (cc *CatalogController) GetRoomTypes(c *gin.Context) {
	hotelID, ok := uintParam(c, "hotelID")
	if !ok {
		return
	}
	types, err := cc.Catalog.RoomTypes(c.Request.Context(), hotelID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, types)
}

// ----------------------------------------------------
// GET /api/hotels/:hotelID/services
// ----------------------------------------------------

func (cc *CatalogController) GetExtraServices(c *gin.Context) {
	hotelID, ok := uintParam(c, "hotelID")
	if !ok {
		return
	}
	list, err := cc.Catalog.ExtraServices(c.Request.Context(), hotelID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}
