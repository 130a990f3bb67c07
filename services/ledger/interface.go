package ledger

import (
	"context"
	"errors"

	"hotelbook/models"
)

// CommissionBasisPoints is the platform's share of every payment (8%).
const CommissionBasisPoints int64 = 800

var (
	// ErrInvalidAmount means a non-positive amount was passed.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrPaymentNotRecorded means a refund was requested for a booking without a payment entry.
	ErrPaymentNotRecorded = errors.New("no payment recorded for booking")
	// ErrRefundExceedsPayment means cumulative refunds would exceed the amount paid.
	ErrRefundExceedsPayment = errors.New("refund exceeds payment")
)

// Recorder writes the financial ledger of committed bookings.
type Recorder interface {
	// RecordPayment writes the payment entry of a booking. Recording the same
	// booking again returns the entry already stored.
	RecordPayment(ctx context.Context, booking *models.BookingRecord, intentID string) (*models.TransactionRecord, error)
	// RecordRefund writes a refund entry against a booking's payment.
	RecordRefund(ctx context.Context, bookingID string, amount int64) (*models.TransactionRecord, error)
	// Entries lists every ledger entry of a booking, oldest first.
	Entries(ctx context.Context, bookingID string) ([]models.TransactionRecord, error)
}

// Split divides an amount into the platform commission and the hotel owner's share.
// Commission rounds down; the owner receives the remainder, so the parts always sum to amount.
func Split(amount int64) (commission, owner int64) {
	// Same as amount*800/10000, without overflowing int64.
	commission = amount/10000*CommissionBasisPoints + amount%10000*CommissionBasisPoints/10000
	return commission, amount - commission
}
