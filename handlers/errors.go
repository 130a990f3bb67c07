package handlers

import (
	"errors"
	"net/http"

	"hotelbook/database"
	"hotelbook/services/booking"
	"hotelbook/services/hotel"
	"hotelbook/services/inventory"
	"hotelbook/services/payment"
)

// errorStatus maps pipeline errors to an HTTP status and a client-facing message.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, booking.ErrInvalidRequest),
		errors.Is(err, inventory.ErrInvalidRange),
		errors.Is(err, inventory.ErrUnknownRoomType),
		errors.Is(err, payment.ErrInvalidAmount),
		errors.Is(err, payment.ErrGatewayRejected):
		return http.StatusBadRequest, "Invalid booking request"
	case errors.Is(err, booking.ErrPaymentMismatch):
		return http.StatusBadRequest, "Payment does not match this booking"
	case errors.Is(err, booking.ErrPaymentNotSucceeded):
		return http.StatusBadRequest, "Payment has not been completed"
	case errors.Is(err, booking.ErrIntentNotFound):
		return http.StatusBadRequest, "Payment not found"
	case errors.Is(err, hotel.ErrHotelNotBookable):
		return http.StatusBadRequest, "Hotel is not accepting bookings"
	case errors.Is(err, hotel.ErrHotelNotFound), errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, booking.ErrInsufficientAvailability):
		return http.StatusConflict, "Rooms are no longer available for these dates"
	case errors.Is(err, booking.ErrCommitInProgress):
		return http.StatusConflict, "This payment is already being processed"
	case errors.Is(err, booking.ErrPersistenceFailure):
		return http.StatusServiceUnavailable, "Booking could not be saved, please retry"
	case errors.Is(err, booking.ErrGatewayUnavailable):
		return http.StatusServiceUnavailable, "Payment provider unavailable, please retry"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}
