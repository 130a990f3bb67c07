package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotelbook/database"
	recordsRepo "hotelbook/database/repository/records"
	"hotelbook/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRecorder implements Recorder over a TransactionRepository.
type DefaultRecorder struct {
	repo   recordsRepo.TransactionRepository
	logger *zap.Logger
}

func NewRecorder(repo recordsRepo.TransactionRepository, logger *zap.Logger) *DefaultRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultRecorder{repo: repo, logger: logger}
}

func (r *DefaultRecorder) RecordPayment(ctx context.Context, booking *models.BookingRecord, intentID string) (*models.TransactionRecord, error) {
	if booking == nil || booking.ID == "" {
		return nil, errors.New("booking is required")
	}
	if booking.TotalCost <= 0 {
		return nil, fmt.Errorf("%w: booking %s has total %d", ErrInvalidAmount, booking.ID, booking.TotalCost)
	}

	if existing, err := r.repo.GetPaymentByBookingID(ctx, booking.ID); err == nil {
		return existing, nil
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("look up payment for booking %s: %w", booking.ID, err)
	}

	commission, owner := Split(booking.TotalCost)
	record := &models.TransactionRecord{
		ID:               uuid.New().String(),
		BookingID:        booking.ID,
		PaymentIntentID:  intentID,
		UserID:           booking.UserID,
		HotelID:          booking.HotelID,
		TicketNumber:     booking.TicketNumber,
		Amount:           booking.TotalCost,
		CommissionAmount: commission,
		HotelOwnerAmount: owner,
		Currency:         booking.Currency,
		TransactionType:  models.TransactionPayment,
		CreatedAt:        time.Now().UTC(),
	}
	if err := r.repo.Create(ctx, record); err != nil {
		if errors.Is(err, database.ErrDuplicateKey) {
			// Lost a race with another recorder of the same booking.
			return r.repo.GetPaymentByBookingID(ctx, booking.ID)
		}
		return nil, fmt.Errorf("record payment for booking %s: %w", booking.ID, err)
	}

	r.logger.Info("Payment recorded",
		zap.String("bookingId", booking.ID),
		zap.String("transactionId", record.ID),
		zap.Int64("amount", record.Amount),
		zap.Int64("commission", commission))
	return record, nil
}

func (r *DefaultRecorder) RecordRefund(ctx context.Context, bookingID string, amount int64) (*models.TransactionRecord, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: refund of %d", ErrInvalidAmount, amount)
	}

	entries, err := r.repo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("load ledger for booking %s: %w", bookingID, err)
	}
	var payment *models.TransactionRecord
	var refunded int64
	for i := range entries {
		switch entries[i].TransactionType {
		case models.TransactionPayment:
			payment = &entries[i]
		case models.TransactionRefund:
			refunded += entries[i].Amount
		}
	}
	if payment == nil {
		return nil, fmt.Errorf("%w: %s", ErrPaymentNotRecorded, bookingID)
	}
	if refunded+amount > payment.Amount {
		return nil, fmt.Errorf("%w: paid %d, refunded %d, requested %d", ErrRefundExceedsPayment, payment.Amount, refunded, amount)
	}

	commission, owner := Split(amount)
	record := &models.TransactionRecord{
		ID:               uuid.New().String(),
		BookingID:        bookingID,
		PaymentIntentID:  payment.PaymentIntentID,
		UserID:           payment.UserID,
		HotelID:          payment.HotelID,
		TicketNumber:     payment.TicketNumber,
		Amount:           amount,
		CommissionAmount: commission,
		HotelOwnerAmount: owner,
		Currency:         payment.Currency,
		TransactionType:  models.TransactionRefund,
		CreatedAt:        time.Now().UTC(),
	}
	if err := r.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("record refund for booking %s: %w", bookingID, err)
	}

	r.logger.Info("Refund recorded",
		zap.String("bookingId", bookingID),
		zap.String("transactionId", record.ID),
		zap.Int64("amount", amount))
	return record, nil
}

func (r *DefaultRecorder) Entries(ctx context.Context, bookingID string) ([]models.TransactionRecord, error) {
	return r.repo.GetByBookingID(ctx, bookingID)
}
