package inventoryRepo

import (
	"context"
	"errors"

	"hotelbook/models"
)

// ErrInsufficientCapacity means at least one night cannot take the requested units.
var ErrInsufficientCapacity = errors.New("insufficient capacity for requested nights")

// InventoryStore persists per-night occupancy and the reservations applied to it.
type InventoryStore interface {
	// Reserve applies res.Quantity to every night in res.Nights, or to none of
	// them. Nights not tracked yet start with res.Total sellable units.
	Reserve(ctx context.Context, res *models.Reservation) error
	// Release reverses a held reservation. It reports false when the token is
	// unknown or was already released.
	Release(ctx context.Context, token string) (bool, error)
	// Nights returns the tracked nights of a room type among the given ones.
	Nights(ctx context.Context, roomTypeID string, nights []string) ([]models.RoomNight, error)
}
