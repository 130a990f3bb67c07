package routes

import (
	"strings"
	"time"

	"hotelbook/config"
	"hotelbook/handlers"
	"hotelbook/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterHotelRoutes registers public listing endpoints.
func RegisterHotelRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/hotels")
	{
		api.GET("", hb.ListHotelsHandler)
		api.GET("/:hotelId", hb.GetHotelHandler)
		api.GET("/:hotelId/rooms/:roomTypeId/availability", hb.AvailabilityHandler)
	}
}

// RegisterBookingRoutes registers the booking pipeline endpoints. All of them
// act for the verified user.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	hotelBookings := r.Group("/api/hotels/:hotelId/bookings")
	{
		hotelBookings.Use(middleware.JWTAuthUserMiddleware())
		hotelBookings.POST("/payment-intent", hb.CreatePaymentIntentHandler)
		hotelBookings.POST("", hb.CommitBookingHandler)
	}

	mine := r.Group("/api")
	{
		mine.Use(middleware.JWTAuthUserMiddleware())
		mine.GET("/my-bookings", hb.MyBookingsHandler)
		mine.GET("/bookings/:bookingId", hb.GetBookingHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

func corsOrigins() []string {
	raw := config.AppConfig.CORSOrigins
	if raw == "" {
		return []string{"*"}
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	origins := corsOrigins()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: !(len(origins) == 1 && origins[0] == "*"),
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	RegisterHealthRoute(r, hb)
	RegisterHotelRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
}
