// File: models/records.go
package models

import "time"

// Ledger entry kinds.
const (
	TransactionPayment = "payment"
	TransactionRefund  = "refund"
	TransactionPayout  = "payout"
)

// TransactionRecord is an immutable financial ledger entry.
// CommissionAmount + HotelOwnerAmount always equals Amount.
type TransactionRecord struct {
	ID               string    `bson:"id" json:"id"`
	BookingID        string    `bson:"bookingId" json:"bookingId"`
	PaymentIntentID  string    `bson:"paymentIntentId" json:"paymentIntentId"`
	UserID           string    `bson:"userId" json:"userId"`
	HotelID          string    `bson:"hotelId" json:"hotelId"`
	TicketNumber     string    `bson:"ticketNumber" json:"ticketNumber"`
	Amount           int64     `bson:"amount" json:"amount"` // minor units
	CommissionAmount int64     `bson:"commissionAmount" json:"commissionAmount"`
	HotelOwnerAmount int64     `bson:"hotelOwnerAmount" json:"hotelOwnerAmount"`
	Currency         string    `bson:"currency" json:"currency"`
	TransactionType  string    `bson:"transactionType" json:"transactionType"`
	CreatedAt        time.Time `bson:"createdAt" json:"createdAt"`
}
