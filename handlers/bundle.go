package handlers

import (
	"net/http"
	"time"

	"hotelbook/services/booking"
	"hotelbook/services/inventory"
	"hotelbook/utils"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Booking endpoints
	CreatePaymentIntentHandler gin.HandlerFunc
	CommitBookingHandler       gin.HandlerFunc
	GetBookingHandler          gin.HandlerFunc

	// Hotel endpoints
	ListHotelsHandler   gin.HandlerFunc
	GetHotelHandler     gin.HandlerFunc
	AvailabilityHandler gin.HandlerFunc
	MyBookingsHandler   gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires handlers to their services.
func NewHandlerBundle(bookings booking.Service, listings ListingReader, ledger inventory.Ledger) *HandlerBundle {
	bh := &BookingHandler{Bookings: bookings}
	hh := &HotelHandler{Listings: listings, Inventory: ledger}
	return &HandlerBundle{
		CreatePaymentIntentHandler: bh.CreatePaymentIntent,
		CommitBookingHandler:       bh.CommitBooking,
		GetBookingHandler:          bh.GetBooking,
		ListHotelsHandler:          hh.ListHotels,
		GetHotelHandler:            hh.GetHotel,
		AvailabilityHandler:        hh.Availability,
		MyBookingsHandler:          hh.MyBookings,
		HealthHandler:              Health,
	}
}

func Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    status.Label(),
		"mongo":     status.Mongo,
		"redis":     status.Redis,
		"checkedAt": status.CheckedAt.Format(time.RFC3339),
	})
}
