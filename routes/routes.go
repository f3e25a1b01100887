package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"hotel-reservation/controllers"
	"hotel-reservation/middleware"
)

type Controllers struct {
	Bookings  *controllers.BookingController
	Payments  *controllers.PaymentController
	Quotes    *controllers.QuoteController
	Catalog   *controllers.CatalogController
	Customers *controllers.CustomerController
}

func corsConfig(origins []string) cors.Config {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", "Idempotency-Key"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}
}

// SetupRouter รับ Controller Instances เข้ามาเพื่อกำหนด Route
func SetupRouter(ctl Controllers, auth *middleware.Authenticator, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())
	r.Use(cors.New(corsConfig(corsOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/customers/me", auth.RequireAuth(), ctl.Customers.GetMe)

		hotel := api.Group("/hotels/:hotelID")
		{
			// anonymous
			hotel.GET("", ctl.Catalog.GetHotel)
			hotel.GET("/rooms", ctl.Catalog.GetRooms)
			hotel.GET("/rooms/:roomID", ctl.Catalog.GetRoom)
			hotel.GET("/rooms/:roomID/availability", ctl.Quotes.RoomAvailability)
			hotel.GET("/room-types", ctl.Catalog.GetRoomTypes)
			hotel.GET("/services", ctl.Catalog.GetExtraServices)
			hotel.GET("/availability", ctl.Quotes.SearchAvailability)
			hotel.POST("/quote", ctl.Quotes.Quote)

			// authenticated by the gateway signature, not a bearer token
			hotel.POST("/payments/gateway/callback", ctl.Payments.GatewayCallback)

			bookings := hotel.Group("/bookings", auth.RequireAuth())
			{
				bookings.GET("", ctl.Bookings.ListBookings)
				bookings.POST("", ctl.Bookings.CreateBooking)
				bookings.GET("/:id", ctl.Bookings.GetBooking)
				bookings.GET("/:id/history", ctl.Bookings.GetHistory)
				bookings.POST("/:id/pay", ctl.Payments.PayBooking)
				bookings.POST("/:id/cancel", ctl.Bookings.CancelBooking)
				bookings.POST("/:id/check-in", ctl.Bookings.CheckIn)
				bookings.POST("/:id/check-out", ctl.Bookings.CheckOut)
				bookings.PATCH("/:id/status", ctl.Bookings.PatchStatus)
				bookings.PATCH("/:id/dates", ctl.Bookings.Reschedule)
			}
		}
	}

	return r
}
