package bookingRepo

import (
	"context"
	"errors"

	"hotelbook/models"
)

var (
	// ErrDuplicateTicket means the ticket number is already taken.
	ErrDuplicateTicket = errors.New("ticket number already in use")
	// ErrDuplicateBooking means a booking already exists for the idempotency key.
	ErrDuplicateBooking = errors.New("booking already exists for idempotency key")
)

// BookingRepository is the canonical store of committed bookings.
type BookingRepository interface {
	// Create inserts a booking. It fails with ErrDuplicateTicket or
	// ErrDuplicateBooking when a unique constraint is violated.
	Create(ctx context.Context, booking *models.BookingRecord) error
	// GetByID retrieves a booking by its unique ID.
	GetByID(ctx context.Context, id string) (*models.BookingRecord, error)
	// GetByIdempotencyKey retrieves the booking committed under the key.
	GetByIdempotencyKey(ctx context.Context, key string) (*models.BookingRecord, error)
	// ListByUser returns the user's bookings, newest first.
	ListByUser(ctx context.Context, userID string) ([]models.BookingRecord, error)
}
