package models

import "time"

// Booking lifecycle states.
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCanceled  = "canceled"
	BookingStatusCompleted = "completed"
)

// RoomLine is one line item of a booking.
type RoomLine struct {
	RoomTypeID string `bson:"roomTypeId" json:"roomTypeId"`
	Quantity   int    `bson:"quantity" json:"quantity"`
}

// BookingRecord is the canonical record of a committed booking.
type BookingRecord struct {
	ID                string     `bson:"id" json:"id"`
	IdempotencyKey    string     `bson:"idempotencyKey" json:"-"` // derived from the payment intent id, unique
	PaymentIntentID   string     `bson:"paymentIntentId" json:"paymentIntentId"`
	HotelID           string     `bson:"hotelId" json:"hotelId"`
	UserID            string     `bson:"userId" json:"userId"`
	Rooms             []RoomLine `bson:"rooms" json:"rooms"`
	CheckIn           string     `bson:"checkIn" json:"checkIn"`   // "YYYY-MM-DD", first night
	CheckOut          string     `bson:"checkOut" json:"checkOut"` // "YYYY-MM-DD", exclusive
	AdultCount        int        `bson:"adultCount" json:"adultCount"`
	ChildCount        int        `bson:"childCount" json:"childCount"`
	TotalCost         int64      `bson:"totalCost" json:"totalCost"` // minor units
	Currency          string     `bson:"currency" json:"currency"`
	TicketNumber      string     `bson:"ticketNumber" json:"ticketNumber"`
	Status            string     `bson:"status" json:"status"`
	ReservationTokens []string   `bson:"reservationTokens" json:"-"`
	CreatedAt         time.Time  `bson:"createdAt" json:"createdAt"`
}

// Summary builds the listing projection of the booking.
func (b *BookingRecord) Summary() BookingSummary {
	return BookingSummary{
		BookingID:    b.ID,
		UserID:       b.UserID,
		Rooms:        b.Rooms,
		CheckIn:      b.CheckIn,
		CheckOut:     b.CheckOut,
		AdultCount:   b.AdultCount,
		ChildCount:   b.ChildCount,
		TotalCost:    b.TotalCost,
		TicketNumber: b.TicketNumber,
		Status:       b.Status,
		CreatedAt:    b.CreatedAt,
	}
}
