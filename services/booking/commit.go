package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"hotelbook/database"
	bookingRepo "hotelbook/database/repository/booking"
	"hotelbook/models"
	"hotelbook/services/hotel"
	"hotelbook/services/inventory"
	"hotelbook/services/ledger"
	"hotelbook/services/payment"
	"hotelbook/services/ticket"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxTicketAttempts bounds regeneration after a ticket number collision.
const maxTicketAttempts = 5

// releaseTimeout bounds a rollback, which must finish even if the caller went away.
const releaseTimeout = 10 * time.Second

var _ Service = (*Orchestrator)(nil)

// Orchestrator runs the booking commit pipeline.
type Orchestrator struct {
	Gateway   payment.Gateway
	Inventory inventory.Ledger
	Bookings  bookingRepo.BookingRepository
	Recorder  ledger.Recorder
	Listings  Listings
	Tickets   ticket.Generator
	// Lock and Reconciler are optional.
	Lock       CommitLock
	Reconciler ReconcileQueue
	Currency   string
	Logger     *zap.Logger
	Now        func() time.Time
}

func (o *Orchestrator) log() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o *Orchestrator) now() time.Time {
	if o.Now == nil {
		return time.Now().UTC()
	}
	return o.Now()
}

// IdempotencyKey is the unique key a booking is committed under.
func IdempotencyKey(intentID string) string {
	return "pi:" + intentID
}

// CreatePaymentIntent opens a payment for a stay at a bookable hotel. The
// intent's metadata ties it to the hotel and guest so Commit can verify it.
func (o *Orchestrator) CreatePaymentIntent(ctx context.Context, hotelID, userID string, totalCost int64) (*models.PaymentIntent, error) {
	if hotelID == "" || userID == "" {
		return nil, fmt.Errorf("%w: hotel and user are required", ErrInvalidRequest)
	}
	if totalCost <= 0 {
		return nil, fmt.Errorf("%w: total cost must be positive", ErrInvalidRequest)
	}
	if _, err := o.Listings.BookableListing(ctx, hotelID); err != nil {
		return nil, err
	}

	intent, err := o.Gateway.CreateIntent(ctx, totalCost, o.Currency, map[string]string{
		models.MetaHotelID:   hotelID,
		models.MetaUserID:    userID,
		models.MetaTotalCost: strconv.FormatInt(totalCost, 10),
	})
	if err != nil {
		o.log().Warn("Failed to create payment intent", zap.String("hotelId", hotelID), zap.Error(err))
		return nil, err
	}
	o.log().Info("Payment intent created",
		zap.String("intentId", intent.ID),
		zap.String("hotelId", hotelID),
		zap.String("userId", userID),
		zap.Int64("amount", totalCost))
	return intent, nil
}

// Commit turns a succeeded payment into a booking. Resubmitting the same
// payment intent returns the booking already committed for it.
func (o *Orchestrator) Commit(ctx context.Context, req CommitRequest) (*CommitResult, error) {
	logger := o.log().With(
		zap.String("intentId", req.PaymentIntentID),
		zap.String("hotelId", req.HotelID),
		zap.String("userId", req.UserID))

	// Received
	if err := validateRequest(req); err != nil {
		logger.Warn("Booking request rejected", zap.Error(err))
		return nil, failAt(StateReceived, err)
	}
	lines := normalizeLines(req.Rooms)
	key := IdempotencyKey(req.PaymentIntentID)

	if existing, err := o.findExisting(ctx, key); err != nil {
		return nil, failAt(StateReceived, err)
	} else if existing != nil {
		return o.replay(ctx, logger, existing, req)
	}

	if o.Lock != nil {
		release, ok, err := o.Lock.Acquire(ctx, "commit:"+key)
		switch {
		case err != nil:
			// The unique idempotency index still guards the insert.
			logger.Warn("Commit lock unavailable, continuing without it", zap.Error(err))
		case !ok:
			return nil, failAt(StateReceived, ErrCommitInProgress)
		default:
			defer release()
			if existing, err := o.findExisting(ctx, key); err != nil {
				return nil, failAt(StateReceived, err)
			} else if existing != nil {
				return o.replay(ctx, logger, existing, req)
			}
		}
	}

	listing, err := o.Listings.BookableListing(ctx, req.HotelID)
	if err != nil {
		if errors.Is(err, hotel.ErrHotelNotFound) || errors.Is(err, hotel.ErrHotelNotBookable) {
			return nil, failAt(StateReceived, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
		}
		return nil, failAt(StateReceived, fmt.Errorf("%w: %v", ErrPersistenceFailure, err))
	}
	for _, line := range lines {
		if _, ok := listing.RoomType(line.RoomTypeID); !ok {
			return nil, failAt(StateReceived, fmt.Errorf("%w: hotel %s has no room type %s", ErrInvalidRequest, req.HotelID, line.RoomTypeID))
		}
	}

	// Verifying
	intent, err := o.verify(ctx, req)
	if err != nil {
		logger.Warn("Payment verification failed", zap.Error(err))
		return nil, failAt(StateVerifying, err)
	}

	// Reserving
	tokens, err := o.reserve(ctx, req, lines)
	if err != nil {
		if errors.Is(err, ErrInsufficientAvailability) {
			// A concurrent commit of this intent may have taken the last units.
			if existing, _ := o.findExisting(ctx, key); existing != nil {
				return o.replay(ctx, logger, existing, req)
			}
		}
		logger.Warn("Reservation failed, rolled back", zap.Error(err))
		return nil, failAt(StateReserving, err)
	}

	// Persisting
	booking, replayed, err := o.persist(ctx, logger, req, lines, intent, tokens)
	if err != nil {
		logger.Error("Booking persistence failed, rolled back", zap.Error(err))
		return nil, failAt(StatePersisting, err)
	}
	o.project(ctx, logger, booking)

	// Recording
	result := &CommitResult{Booking: booking, Replayed: replayed}
	return o.record(ctx, logger, result)
}

func validateRequest(req CommitRequest) error {
	switch {
	case req.HotelID == "":
		return fmt.Errorf("%w: hotel is required", ErrInvalidRequest)
	case req.UserID == "":
		return fmt.Errorf("%w: user is required", ErrInvalidRequest)
	case req.PaymentIntentID == "":
		return fmt.Errorf("%w: payment intent is required", ErrInvalidRequest)
	case len(req.Rooms) == 0:
		return fmt.Errorf("%w: at least one room is required", ErrInvalidRequest)
	case req.TotalCost <= 0:
		return fmt.Errorf("%w: total cost must be positive", ErrInvalidRequest)
	case req.AdultCount < 1:
		return fmt.Errorf("%w: at least one adult is required", ErrInvalidRequest)
	case req.ChildCount < 0:
		return fmt.Errorf("%w: child count cannot be negative", ErrInvalidRequest)
	}
	for _, line := range req.Rooms {
		if line.RoomTypeID == "" {
			return fmt.Errorf("%w: room type is required", ErrInvalidRequest)
		}
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: quantity for %s must be positive", ErrInvalidRequest, line.RoomTypeID)
		}
	}
	if _, err := inventory.ExpandNights(req.CheckIn, req.CheckOut); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return nil
}

// normalizeLines merges repeated room types and orders lines by room type id,
// so concurrent commits always reserve in the same order.
func normalizeLines(rooms []models.RoomLine) []models.RoomLine {
	qty := make(map[string]int, len(rooms))
	for _, line := range rooms {
		qty[line.RoomTypeID] += line.Quantity
	}
	lines := make([]models.RoomLine, 0, len(qty))
	for id, q := range qty {
		lines = append(lines, models.RoomLine{RoomTypeID: id, Quantity: q})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].RoomTypeID < lines[j].RoomTypeID })
	return lines
}

func (o *Orchestrator) findExisting(ctx context.Context, key string) (*models.BookingRecord, error) {
	existing, err := o.Bookings.GetByIdempotencyKey(ctx, key)
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
	}
	return existing, nil
}

// replay answers a resubmission of an already committed payment.
func (o *Orchestrator) replay(ctx context.Context, logger *zap.Logger, existing *models.BookingRecord, req CommitRequest) (*CommitResult, error) {
	if existing.UserID != req.UserID || existing.HotelID != req.HotelID {
		return nil, failAt(StateVerifying, fmt.Errorf("%w: intent already used for another booking", ErrPaymentMismatch))
	}
	logger.Info("Booking already committed for intent", zap.String("bookingId", existing.ID))
	o.project(ctx, logger, existing)
	return o.record(ctx, logger, &CommitResult{Booking: existing, Replayed: true})
}

// project copies the booking onto its listing. The copy is keyed on the
// booking id, so repeating it after an earlier failure is harmless.
func (o *Orchestrator) project(ctx context.Context, logger *zap.Logger, booking *models.BookingRecord) {
	if err := o.Listings.ProjectBooking(ctx, booking); err != nil {
		logger.Warn("Listing projection failed", zap.String("bookingId", booking.ID), zap.Error(err))
	}
}

func (o *Orchestrator) verify(ctx context.Context, req CommitRequest) (*models.PaymentIntent, error) {
	intent, err := o.Gateway.RetrieveIntent(ctx, req.PaymentIntentID)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrIntentNotFound), errors.Is(err, payment.ErrGatewayUnavailable):
			return nil, err
		case errors.Is(err, payment.ErrGatewayRejected):
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		}
	}

	if intent.Metadata[models.MetaHotelID] != req.HotelID {
		return nil, fmt.Errorf("%w: intent issued for hotel %q", ErrPaymentMismatch, intent.Metadata[models.MetaHotelID])
	}
	if intent.Metadata[models.MetaUserID] != req.UserID {
		return nil, fmt.Errorf("%w: intent issued for another user", ErrPaymentMismatch)
	}
	if !intent.Succeeded() {
		return nil, fmt.Errorf("%w: intent status is %s", ErrPaymentNotSucceeded, intent.Status)
	}
	if intent.Amount != req.TotalCost {
		return nil, fmt.Errorf("%w: paid %d, booking total %d", ErrPaymentMismatch, intent.Amount, req.TotalCost)
	}
	return intent, nil
}

func (o *Orchestrator) reserve(ctx context.Context, req CommitRequest, lines []models.RoomLine) ([]inventory.ReservationToken, error) {
	tokens := make([]inventory.ReservationToken, 0, len(lines))
	for _, line := range lines {
		token, err := o.Inventory.CheckAndReserve(ctx, line.RoomTypeID, line.Quantity, req.CheckIn, req.CheckOut)
		if err != nil {
			o.releaseAll(tokens)
			switch {
			case errors.Is(err, inventory.ErrInsufficientAvailability):
				return nil, err
			case errors.Is(err, inventory.ErrInvalidRange), errors.Is(err, inventory.ErrUnknownRoomType):
				return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
			default:
				return nil, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
			}
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

// persist stores the booking. When another commit of the same intent won the
// race, our reservations are released and its booking is returned instead.
func (o *Orchestrator) persist(ctx context.Context, logger *zap.Logger, req CommitRequest, lines []models.RoomLine, intent *models.PaymentIntent, tokens []inventory.ReservationToken) (*models.BookingRecord, bool, error) {
	currency := strings.ToLower(intent.Currency)
	if currency == "" {
		currency = o.Currency
	}
	booking := &models.BookingRecord{
		ID:              uuid.New().String(),
		IdempotencyKey:  IdempotencyKey(req.PaymentIntentID),
		PaymentIntentID: req.PaymentIntentID,
		HotelID:         req.HotelID,
		UserID:          req.UserID,
		Rooms:           lines,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		AdultCount:      req.AdultCount,
		ChildCount:      req.ChildCount,
		TotalCost:       req.TotalCost,
		Currency:        currency,
		Status:          models.BookingStatusConfirmed,
		CreatedAt:       o.now(),
	}
	for _, t := range tokens {
		booking.ReservationTokens = append(booking.ReservationTokens, string(t))
	}

	var err error
	for attempt := 1; attempt <= maxTicketAttempts; attempt++ {
		booking.TicketNumber = o.Tickets.Generate()
		err = o.Bookings.Create(ctx, booking)
		if err == nil {
			logger.Info("Booking persisted",
				zap.String("bookingId", booking.ID),
				zap.String("ticket", booking.TicketNumber))
			return booking, false, nil
		}
		if !errors.Is(err, bookingRepo.ErrDuplicateTicket) {
			break
		}
		logger.Warn("Ticket number collision, regenerating", zap.Int("attempt", attempt))
	}

	o.releaseAll(tokens)
	if errors.Is(err, bookingRepo.ErrDuplicateBooking) {
		existing, lookupErr := o.Bookings.GetByIdempotencyKey(ctx, booking.IdempotencyKey)
		if lookupErr != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrPersistenceFailure, lookupErr)
		}
		logger.Info("Concurrent commit won, using its booking", zap.String("bookingId", existing.ID))
		return existing, true, nil
	}
	return nil, false, fmt.Errorf("%w: %v", ErrPersistenceFailure, err)
}

// record writes the payment ledger entry. A failure leaves the booking
// committed and schedules reconciliation.
func (o *Orchestrator) record(ctx context.Context, logger *zap.Logger, result *CommitResult) (*CommitResult, error) {
	booking := result.Booking
	txn, err := o.Recorder.RecordPayment(ctx, booking, booking.PaymentIntentID)
	if err != nil {
		logger.Error("Ledger entry missing for committed booking",
			zap.String("bookingId", booking.ID),
			zap.Int64("amount", booking.TotalCost),
			zap.Error(err))
		if o.Reconciler != nil {
			if qErr := o.Reconciler.EnqueueReconcile(context.WithoutCancel(ctx), booking.ID); qErr != nil {
				logger.Error("Failed to schedule ledger reconciliation", zap.String("bookingId", booking.ID), zap.Error(qErr))
			}
		}
		result.State = StateRecording
		result.LedgerPending = true
		return result, failAt(StateRecording, fmt.Errorf("%w: %v", ErrRecordingIncomplete, err))
	}
	result.State = StateCommitted
	result.Transaction = txn
	return result, nil
}

func (o *Orchestrator) releaseAll(tokens []inventory.ReservationToken) {
	if len(tokens) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	for _, t := range tokens {
		if err := o.Inventory.Release(ctx, t); err != nil {
			o.log().Error("Failed to release reservation", zap.String("token", string(t)), zap.Error(err))
		}
	}
}

// ReleaseBooking returns every reservation held by a booking to inventory.
// Cancellation flows call it; the commit pipeline never does.
func (o *Orchestrator) ReleaseBooking(ctx context.Context, booking *models.BookingRecord) error {
	var errs []error
	for _, t := range booking.ReservationTokens {
		if err := o.Inventory.Release(ctx, inventory.ReservationToken(t)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetBooking returns a committed booking by id.
func (o *Orchestrator) GetBooking(ctx context.Context, bookingID string) (*models.BookingRecord, error) {
	return o.Bookings.GetByID(ctx, bookingID)
}

// LedgerEntries lists the financial entries of a booking.
func (o *Orchestrator) LedgerEntries(ctx context.Context, bookingID string) ([]models.TransactionRecord, error) {
	return o.Recorder.Entries(ctx, bookingID)
}

// Reconcile repairs a committed booking: it re-projects the booking onto its
// listing and records the payment entry if one is missing.
func (o *Orchestrator) Reconcile(ctx context.Context, bookingID string) (*models.TransactionRecord, error) {
	booking, err := o.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking %s: %w", bookingID, err)
	}
	o.project(ctx, o.log().With(zap.String("intentId", booking.PaymentIntentID)), booking)
	txn, err := o.Recorder.RecordPayment(ctx, booking, booking.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	o.log().Info("Ledger reconciled", zap.String("bookingId", bookingID), zap.String("transactionId", txn.ID))
	return txn, nil
}
