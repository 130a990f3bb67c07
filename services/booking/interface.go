package booking

import (
	"context"

	"hotelbook/models"
)

// CommitRequest is a guest's booking submission. UserID comes from the
// verified session, never from the request body.
type CommitRequest struct {
	HotelID         string
	UserID          string
	PaymentIntentID string
	Rooms           []models.RoomLine
	CheckIn         string
	CheckOut        string
	AdultCount      int
	ChildCount      int
	TotalCost       int64
}

// CommitResult describes a committed booking. Transaction is nil while the
// ledger entry is pending.
type CommitResult struct {
	State         State
	Booking       *models.BookingRecord
	Transaction   *models.TransactionRecord
	LedgerPending bool
	// Replayed is set when the booking had already been committed for the intent.
	Replayed bool
}

// Listings is the part of the listing service the pipeline needs.
type Listings interface {
	BookableListing(ctx context.Context, hotelID string) (*models.HotelListing, error)
	ProjectBooking(ctx context.Context, booking *models.BookingRecord) error
}

// CommitLock guards against two commits of the same payment running at once.
type CommitLock interface {
	// Acquire returns ok=false when another holder owns key.
	Acquire(ctx context.Context, key string) (release func(), ok bool, err error)
}

// ReconcileQueue schedules recovery of a missing ledger entry.
type ReconcileQueue interface {
	EnqueueReconcile(ctx context.Context, bookingID string) error
}

// Service is the booking pipeline exposed to handlers and workers.
type Service interface {
	CreatePaymentIntent(ctx context.Context, hotelID, userID string, totalCost int64) (*models.PaymentIntent, error)
	Commit(ctx context.Context, req CommitRequest) (*CommitResult, error)
	GetBooking(ctx context.Context, bookingID string) (*models.BookingRecord, error)
	LedgerEntries(ctx context.Context, bookingID string) ([]models.TransactionRecord, error)
	Reconcile(ctx context.Context, bookingID string) (*models.TransactionRecord, error)
}
