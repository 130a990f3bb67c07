package hotelRepo

import (
	"context"

	"hotelbook/models"
)

// HotelRepository defines methods for hotel listing data access.
type HotelRepository interface {
	// GetByID retrieves a listing by its unique ID.
	GetByID(ctx context.Context, id string) (*models.HotelListing, error)
	// GetAll retrieves all listings, most recently updated first.
	GetAll(ctx context.Context) ([]models.HotelListing, error)
	// Create inserts a new listing.
	Create(ctx context.Context, hotel *models.HotelListing) error
	// FindRoomType locates a room type across all listings.
	FindRoomType(ctx context.Context, roomTypeID string) (string, *models.RoomTypeInventory, error)
	// AppendBooking projects a booking onto its listing. Appending the same
	// booking twice leaves a single copy.
	AppendBooking(ctx context.Context, hotelID string, summary models.BookingSummary) error
}
