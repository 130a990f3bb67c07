package models

import "time"

// Listing moderation states.
const (
	HotelStatusPending  = "Pending"
	HotelStatusApproved = "Approved"
	HotelStatusRejected = "Rejected"
)

// RoomTypeInventory is a bookable category within a hotel.
type RoomTypeInventory struct {
	ID            string `bson:"id" json:"id"`
	Name          string `bson:"name" json:"name"`                   // e.g., "King Suite"
	TotalUnits    int    `bson:"totalUnits" json:"totalUnits"`       // physical rooms of this type
	Capacity      int    `bson:"capacity" json:"capacity"`           // guests per room
	PricePerNight int64  `bson:"pricePerNight" json:"pricePerNight"` // minor units
}

// BookingSummary is the denormalized copy of a booking kept on the listing for display.
// The canonical record lives in the bookings collection.
type BookingSummary struct {
	BookingID    string     `bson:"bookingId" json:"bookingId"`
	UserID       string     `bson:"userId" json:"userId"`
	Rooms        []RoomLine `bson:"rooms" json:"rooms"`
	CheckIn      string     `bson:"checkIn" json:"checkIn"`
	CheckOut     string     `bson:"checkOut" json:"checkOut"`
	AdultCount   int        `bson:"adultCount" json:"adultCount"`
	ChildCount   int        `bson:"childCount" json:"childCount"`
	TotalCost    int64      `bson:"totalCost" json:"totalCost"`
	TicketNumber string     `bson:"ticketNumber" json:"ticketNumber"`
	Status       string     `bson:"status" json:"status"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
}

// HotelListing is a hotel as shown to guests.
type HotelListing struct {
	ID          string              `bson:"id" json:"id"`
	OwnerID     string              `bson:"ownerId" json:"ownerId"`
	Name        string              `bson:"name" json:"name"`
	City        string              `bson:"city" json:"city"`
	Country     string              `bson:"country" json:"country"`
	Status      string              `bson:"status" json:"status"` // Pending, Approved or Rejected
	RoomTypes   []RoomTypeInventory `bson:"roomTypes" json:"roomTypes"`
	Bookings    []BookingSummary    `bson:"bookings,omitempty" json:"bookings,omitempty"`
	LastUpdated time.Time           `bson:"lastUpdated" json:"lastUpdated"`
}

// RoomType returns the room type with the given id, if the hotel offers it.
func (h *HotelListing) RoomType(id string) (RoomTypeInventory, bool) {
	for _, rt := range h.RoomTypes {
		if rt.ID == id {
			return rt, true
		}
	}
	return RoomTypeInventory{}, false
}

// Bookable reports whether guests may book the hotel.
func (h *HotelListing) Bookable() bool {
	return h.Status == HotelStatusApproved
}
