package models

import "time"

// Reservation states.
const (
	ReservationHeld     = "held"
	ReservationReleased = "released"
)

// RoomNight tracks one room type's occupancy for a single night.
type RoomNight struct {
	RoomTypeID string `bson:"roomTypeId" json:"roomTypeId"`
	Night      string `bson:"night" json:"night"`       // "YYYY-MM-DD"
	Total      int    `bson:"total" json:"total"`       // units sellable that night
	Reserved   int    `bson:"reserved" json:"reserved"` // never exceeds Total
}

// Available returns the units still sellable.
func (n RoomNight) Available() int {
	return n.Total - n.Reserved
}

// Reservation is a granted decrement across every night of a stay.
type Reservation struct {
	Token      string     `bson:"token" json:"token"`
	RoomTypeID string     `bson:"roomTypeId" json:"roomTypeId"`
	Nights     []string   `bson:"nights" json:"nights"`
	Quantity   int        `bson:"quantity" json:"quantity"`
	Total      int        `bson:"-" json:"-"` // seeds nights not tracked yet
	Status     string     `bson:"status" json:"status"`
	CreatedAt  time.Time  `bson:"createdAt" json:"createdAt"`
	ReleasedAt *time.Time `bson:"releasedAt,omitempty" json:"releasedAt,omitempty"`
}
