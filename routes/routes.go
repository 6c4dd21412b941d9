package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"hotel-booking-engine/controllers"
	"hotel-booking-engine/middleware"
	"hotel-booking-engine/utils"
)

// Controllers groups the handlers mounted by SetupRouter.
type Controllers struct {
	Rooms        *controllers.RoomController
	Availability *controllers.AvailabilityController
	Pricing      *controllers.PricingController
	Bookings     *controllers.BookingController
	Customers    *controllers.CustomerController
	GridSessions *controllers.GridSessionController
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
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}
}

func SetupRouter(ctl Controllers, corsOrigins []string) *gin.Engine {
	controllers.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger())
	r.Use(cors.New(corsConfig(corsOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.NoRoute(func(c *gin.Context) {
		utils.JSONErrorCode(c, http.StatusNotFound, "error.routeNotFound", "Route not found", nil)
	})

	api := r.Group("/api")
	{
		hotel := api.Group("/hotels/:hotelId")
		{
			hotel.GET("/rooms", ctl.Rooms.GetRooms)
			hotel.GET("/room-bookings", ctl.Rooms.GetRoomBookings)
			hotel.GET("/extra-charges", ctl.Rooms.GetExtraCharges)

			hotel.GET("/availability", ctl.Availability.GetAvailability)
			hotel.PUT("/availability", ctl.Availability.UpsertAvailability)

			hotel.POST("/pricing/preview", ctl.Pricing.Preview)
			hotel.POST("/pricing/groups", ctl.Pricing.Groups)

			hotel.POST("/customers", ctl.Customers.CreateCustomer)

			hotel.POST("/bookings", ctl.Bookings.CreateBooking)
			hotel.PUT("/bookings/:id", ctl.Bookings.UpdateBooking)

			hotel.POST("/grid-sessions", ctl.GridSessions.CreateSession)
		}

		api.GET("/customers/:id", ctl.Customers.GetCustomer)

		bookings := api.Group("/bookings/:id")
		{
			bookings.GET("/summary", ctl.Bookings.GetSummary)
			bookings.GET("/invoice", ctl.Bookings.GetInvoice)
			bookings.POST("/cancel", ctl.Bookings.CancelBooking)
		}

		sessions := api.Group("/grid-sessions/:sessionId")
		{
			sessions.GET("", ctl.GridSessions.GetSession)
			sessions.DELETE("", ctl.GridSessions.DeleteSession)
			sessions.POST("/events", ctl.GridSessions.ApplyEvent)
			sessions.PUT("/range", ctl.GridSessions.SetRange)
			sessions.PUT("/charges", ctl.GridSessions.SetCharges)
			sessions.POST("/submit", ctl.GridSessions.SubmitSession)
		}
	}

	return r
}
