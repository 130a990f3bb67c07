package inventoryRepo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hotelbook/models"
)

type roomNights struct {
	mu     sync.Mutex
	nights map[string]*models.RoomNight
}

// MemoryInventoryRepo is an InventoryStore kept in process memory. Each room
// type has its own mutex, so reservations on one room type serialize while
// different room types proceed in parallel.
type MemoryInventoryRepo struct {
	mu           sync.Mutex
	rooms        map[string]*roomNights
	reservations map[string]*models.Reservation
}

// NewMemoryInventoryRepo returns an empty in-memory store.
func NewMemoryInventoryRepo() *MemoryInventoryRepo {
	return &MemoryInventoryRepo{
		rooms:        make(map[string]*roomNights),
		reservations: make(map[string]*models.Reservation),
	}
}

func (m *MemoryInventoryRepo) room(roomTypeID string) *roomNights {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[roomTypeID]
	if !ok {
		r = &roomNights{nights: make(map[string]*models.RoomNight)}
		m.rooms[roomTypeID] = r
	}
	return r
}

func (m *MemoryInventoryRepo) Reserve(ctx context.Context, res *models.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r := m.room(res.RoomTypeID)
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, night := range res.Nights {
		n, ok := r.nights[night]
		if !ok {
			n = &models.RoomNight{RoomTypeID: res.RoomTypeID, Night: night, Total: res.Total}
			r.nights[night] = n
		}
		if n.Reserved+res.Quantity > n.Total {
			return fmt.Errorf("%w: room type %s night %s", ErrInsufficientCapacity, res.RoomTypeID, night)
		}
	}
	for _, night := range res.Nights {
		r.nights[night].Reserved += res.Quantity
	}

	stored := *res
	stored.Nights = append([]string(nil), res.Nights...)
	m.mu.Lock()
	m.reservations[res.Token] = &stored
	m.mu.Unlock()
	return nil
}

func (m *MemoryInventoryRepo) Release(ctx context.Context, token string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	res, ok := m.reservations[token]
	if !ok || res.Status != models.ReservationHeld {
		m.mu.Unlock()
		return false, nil
	}
	now := time.Now().UTC()
	res.Status = models.ReservationReleased
	res.ReleasedAt = &now
	m.mu.Unlock()

	r := m.room(res.RoomTypeID)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, night := range res.Nights {
		r.nights[night].Reserved -= res.Quantity
	}
	return true, nil
}

func (m *MemoryInventoryRepo) Nights(ctx context.Context, roomTypeID string, nights []string) ([]models.RoomNight, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := m.room(roomTypeID)
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.RoomNight
	for _, night := range nights {
		if n, ok := r.nights[night]; ok {
			out = append(out, *n)
		}
	}
	return out, nil
}
