package models

// Normalized payment intent states.
const (
	IntentRequiresPayment = "requires_payment"
	IntentSucceeded       = "succeeded"
	IntentFailed          = "failed"
	IntentCanceled        = "canceled"
)

// Metadata keys every intent created for a booking carries.
const (
	MetaHotelID   = "hotelId"
	MetaUserID    = "userId"
	MetaTotalCost = "totalCost"
)

// PaymentIntent is the gateway's view of a payment, read but never owned by us.
type PaymentIntent struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	Amount       int64             `json:"amount"` // minor units
	Currency     string            `json:"currency"`
	ClientSecret string            `json:"-"`
	Metadata     map[string]string `json:"metadata"`
}

// Succeeded reports whether the intent reached a successful terminal state.
func (p *PaymentIntent) Succeeded() bool {
	return p.Status == IntentSucceeded
}
