package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotelbook/database"
	inventoryRepo "hotelbook/database/repository/inventory"
	"hotelbook/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLedger implements Ledger on top of an InventoryStore.
type DefaultLedger struct {
	store   inventoryRepo.InventoryStore
	catalog RoomCatalog
	logger  *zap.Logger
}

// NewLedger wires a ledger to its store and room catalog.
func NewLedger(store inventoryRepo.InventoryStore, catalog RoomCatalog, logger *zap.Logger) *DefaultLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultLedger{store: store, catalog: catalog, logger: logger}
}

func (l *DefaultLedger) CheckAndReserve(ctx context.Context, roomTypeID string, quantity int, checkIn, checkOut string) (ReservationToken, error) {
	if roomTypeID == "" {
		return "", fmt.Errorf("%w: room type is required", ErrInvalidRange)
	}
	if quantity <= 0 {
		return "", fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidRange, quantity)
	}
	nights, err := ExpandNights(checkIn, checkOut)
	if err != nil {
		return "", err
	}
	roomType, err := l.roomType(ctx, roomTypeID)
	if err != nil {
		return "", err
	}
	if quantity > roomType.TotalUnits {
		return "", fmt.Errorf("%w: %d units requested, room type %s has %d", ErrInsufficientAvailability, quantity, roomTypeID, roomType.TotalUnits)
	}

	res := &models.Reservation{
		Token:      uuid.New().String(),
		RoomTypeID: roomTypeID,
		Nights:     nights,
		Quantity:   quantity,
		Total:      roomType.TotalUnits,
		Status:     models.ReservationHeld,
		CreatedAt:  time.Now().UTC(),
	}
	if err := l.store.Reserve(ctx, res); err != nil {
		if errors.Is(err, inventoryRepo.ErrInsufficientCapacity) {
			return "", fmt.Errorf("%w: %v", ErrInsufficientAvailability, err)
		}
		// The write may have landed even though the store reported an error.
		l.releaseAbandoned(res.Token)
		return "", fmt.Errorf("reserve %s: %w", roomTypeID, err)
	}

	l.logger.Debug("Reserved room nights",
		zap.String("token", res.Token),
		zap.String("roomTypeId", roomTypeID),
		zap.Int("quantity", quantity),
		zap.Int("nights", len(nights)))
	return ReservationToken(res.Token), nil
}

func (l *DefaultLedger) Release(ctx context.Context, token ReservationToken) error {
	if token == "" {
		return nil
	}
	released, err := l.store.Release(ctx, string(token))
	if err != nil {
		return fmt.Errorf("release %s: %w", token, err)
	}
	if !released {
		l.logger.Debug("Release skipped, reservation unknown or already released", zap.String("token", string(token)))
	}
	return nil
}

// releaseAbandoned returns a reservation whose outcome is unknown to the
// caller. Releasing a token that was never stored is a no-op.
func (l *DefaultLedger) releaseAbandoned(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	released, err := l.store.Release(ctx, token)
	if err != nil {
		l.logger.Error("Failed to release reservation after store error", zap.String("token", token), zap.Error(err))
		return
	}
	if released {
		l.logger.Warn("Released reservation applied despite store error", zap.String("token", token))
	}
}

func (l *DefaultLedger) Availability(ctx context.Context, roomTypeID, checkIn, checkOut string) (map[string]int, error) {
	nights, err := ExpandNights(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	roomType, err := l.roomType(ctx, roomTypeID)
	if err != nil {
		return nil, err
	}
	tracked, err := l.store.Nights(ctx, roomTypeID, nights)
	if err != nil {
		return nil, fmt.Errorf("load nights for %s: %w", roomTypeID, err)
	}

	out := make(map[string]int, len(nights))
	for _, night := range nights {
		out[night] = roomType.TotalUnits
	}
	for _, n := range tracked {
		out[n.Night] = n.Available()
	}
	return out, nil
}

func (l *DefaultLedger) roomType(ctx context.Context, roomTypeID string) (*models.RoomTypeInventory, error) {
	_, roomType, err := l.catalog.FindRoomType(ctx, roomTypeID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRoomType, roomTypeID)
		}
		return nil, fmt.Errorf("look up room type %s: %w", roomTypeID, err)
	}
	return roomType, nil
}
