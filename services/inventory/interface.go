package inventory

import (
	"context"
	"errors"

	"hotelbook/models"
)

var (
	// ErrInsufficientAvailability means at least one night of the stay lacks free units.
	ErrInsufficientAvailability = errors.New("insufficient availability")
	// ErrInvalidRange covers a bad quantity or a stay that does not span at least one night.
	ErrInvalidRange = errors.New("invalid reservation request")
	// ErrUnknownRoomType means no listing offers the room type.
	ErrUnknownRoomType = errors.New("unknown room type")
)

// ReservationToken identifies one granted reservation. Release needs nothing else.
type ReservationToken string

// RoomCatalog resolves the sellable units of a room type.
type RoomCatalog interface {
	FindRoomType(ctx context.Context, roomTypeID string) (string, *models.RoomTypeInventory, error)
}

// Ledger is the availability authority for room nights.
type Ledger interface {
	// CheckAndReserve decrements availability for every night in [checkIn, checkOut)
	// or for none of them.
	CheckAndReserve(ctx context.Context, roomTypeID string, quantity int, checkIn, checkOut string) (ReservationToken, error)
	// Release restores a reservation. Unknown or already released tokens are a no-op.
	Release(ctx context.Context, token ReservationToken) error
	// Availability returns free units per night of [checkIn, checkOut).
	Availability(ctx context.Context, roomTypeID, checkIn, checkOut string) (map[string]int, error)
}
