package booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"hotelbook/models"
	"hotelbook/services/payment"
	"hotelbook/services/ticket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	king = func(q int) models.RoomLine { return models.RoomLine{RoomTypeID: "rt-king", Quantity: q} }
	twin = func(q int) models.RoomLine { return models.RoomLine{RoomTypeID: "rt-twin", Quantity: q} }
	dorm = func(q int) models.RoomLine { return models.RoomLine{RoomTypeID: "rt-dorm", Quantity: q} }
)

func TestCommit_HappyPath(t *testing.T) {
	h := newHarness()
	h.paidIntent("pi_ok", 1000)

	res, err := h.orch.Commit(context.Background(), request("pi_ok", 1000, king(1)))
	require.NoError(t, err)

	assert.Equal(t, StateCommitted, res.State)
	assert.False(t, res.LedgerPending)
	assert.False(t, res.Replayed)
	require.NotNil(t, res.Booking)
	assert.Equal(t, "pi:pi_ok", res.Booking.IdempotencyKey)
	assert.Equal(t, models.BookingStatusConfirmed, res.Booking.Status)
	assert.Equal(t, "etb", res.Booking.Currency)
	assert.Regexp(t, `^HB-[0-9A-Z]{4}-[0-9A-Z]{4}-[0-9A-Z]{4}$`, res.Booking.TicketNumber)
	assert.Len(t, res.Booking.ReservationTokens, 1)

	require.NotNil(t, res.Transaction)
	assert.Equal(t, int64(1000), res.Transaction.Amount)
	assert.Equal(t, int64(80), res.Transaction.CommissionAmount)
	assert.Equal(t, int64(920), res.Transaction.HotelOwnerAmount)
	assert.Equal(t, res.Booking.TicketNumber, res.Transaction.TicketNumber)

	assert.Equal(t, map[string]int{"2025-03-01": 1, "2025-03-02": 1}, h.free("rt-king", "2025-03-01", "2025-03-03"))
	assert.Equal(t, []string{res.Booking.ID}, h.listings.projected)
}

func TestCommit_MultipleRoomTypes(t *testing.T) {
	h := newHarness()
	h.paidIntent("pi_multi", 2500)

	res, err := h.orch.Commit(context.Background(), request("pi_multi", 2500, twin(2), king(1), twin(1)))
	require.NoError(t, err)

	assert.Equal(t, []models.RoomLine{king(1), twin(3)}, res.Booking.Rooms)
	assert.Len(t, res.Booking.ReservationTokens, 2)
	assert.Equal(t, 1, h.free("rt-king", "2025-03-01", "2025-03-02")["2025-03-01"])
	assert.Equal(t, 0, h.free("rt-twin", "2025-03-01", "2025-03-02")["2025-03-01"])
}

func TestCommit_PaymentNotSucceeded(t *testing.T) {
	h := newHarness()
	h.gateway.put(&models.PaymentIntent{
		ID:       "pi_pending",
		Status:   models.IntentRequiresPayment,
		Amount:   1000,
		Metadata: map[string]string{models.MetaHotelID: "h-1", models.MetaUserID: "u-1"},
	})

	res, err := h.orch.Commit(context.Background(), request("pi_pending", 1000, king(1)))

	assert.Nil(t, res)
	require.ErrorIs(t, err, ErrPaymentNotSucceeded)
	assert.Equal(t, StateVerifying, StateOf(err))
	var ce *CommitError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, StateRejected, ce.Outcome())

	assert.Zero(t, h.bookings.count())
	assert.Equal(t, 2, h.free("rt-king", "2025-03-01", "2025-03-02")["2025-03-01"])
}

func TestCommit_PaymentMismatch(t *testing.T) {
	cases := []struct {
		name   string
		intent *models.PaymentIntent
	}{
		{"other user", &models.PaymentIntent{
			ID: "pi_x", Status: models.IntentSucceeded, Amount: 1000,
			Metadata: map[string]string{models.MetaHotelID: "h-1", models.MetaUserID: "u-2"},
		}},
		{"other hotel", &models.PaymentIntent{
			ID: "pi_x", Status: models.IntentSucceeded, Amount: 1000,
			Metadata: map[string]string{models.MetaHotelID: "h-2", models.MetaUserID: "u-1"},
		}},
		{"amount differs", &models.PaymentIntent{
			ID: "pi_x", Status: models.IntentSucceeded, Amount: 10,
			Metadata: map[string]string{models.MetaHotelID: "h-1", models.MetaUserID: "u-1"},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness()
			h.gateway.put(tc.intent)

			_, err := h.orch.Commit(context.Background(), request("pi_x", 1000, king(1)))

			require.ErrorIs(t, err, ErrPaymentMismatch)
			assert.Zero(t, h.bookings.count())
		})
	}
}

func TestCommit_GatewayErrors(t *testing.T) {
	h := newHarness()

	_, err := h.orch.Commit(context.Background(), request("pi_missing", 1000, king(1)))
	assert.ErrorIs(t, err, ErrIntentNotFound)

	h.gateway.err = payment.ErrGatewayUnavailable
	_, err = h.orch.Commit(context.Background(), request("pi_missing", 1000, king(1)))
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
	assert.Equal(t, StateVerifying, StateOf(err))
}

func TestCommit_InsufficientAvailabilityReleasesEarlierLines(t *testing.T) {
	h := newHarness()
	h.paidIntent("pi_first", 1000)
	h.paidIntent("pi_second", 1000)
	ctx := context.Background()

	_, err := h.orch.Commit(ctx, request("pi_first", 1000, twin(3)))
	require.NoError(t, err)

	// King is reserved first and must be handed back when twin fails.
	_, err = h.orch.Commit(ctx, request("pi_second", 1000, king(1), twin(1)))
	require.ErrorIs(t, err, ErrInsufficientAvailability)
	var ce *CommitError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, StateReserving, ce.State)
	assert.Equal(t, StateRolledBack, ce.Outcome())

	assert.Equal(t, map[string]int{"2025-03-01": 2, "2025-03-02": 2}, h.free("rt-king", "2025-03-01", "2025-03-03"))
	assert.Equal(t, 1, h.bookings.count())
}

func TestCommit_PersistenceFailureRollsBack(t *testing.T) {
	h := newHarness()
	h.paidIntent("pi_ok", 1000)
	h.bookings.createErr = errors.New("no reachable servers")

	_, err := h.orch.Commit(context.Background(), request("pi_ok", 1000, king(2)))

	require.ErrorIs(t, err, ErrPersistenceFailure)
	assert.Equal(t, StatePersisting, StateOf(err))
	assert.Equal(t, map[string]int{"2025-03-01": 2, "2025-03-02": 2}, h.free("rt-king", "2025-03-01", "2025-03-03"))
	assert.Empty(t, h.listings.projected)

	// The failure is retryable: once storage recovers the same intent commits.
	h.bookings.createErr = nil
	res, err := h.orch.Commit(context.Background(), request("pi_ok", 1000, king(2)))
	require.NoError(t, err)
	assert.Equal(t, StateCommitted, res.State)
}

func TestCommit_RecordingFailureKeepsBooking(t *testing.T) {
	h := newHarness()
	h.paidIntent("pi_ok", 1000)
	h.records.setFail(errors.New("write concern error"))

	res, err := h.orch.Commit(context.Background(), request("pi_ok", 1000, king(1)))

	require.ErrorIs(t, err, ErrRecordingIncomplete)
	require.NotNil(t, res)
	assert.True(t, res.LedgerPending)
	assert.Equal(t, StateRecording, res.State)
	assert.Nil(t, res.Transaction)
	assert.Equal(t, 1, h.bookings.count())
	assert.Equal(t, 1, h.free("rt-king", "2025-03-01", "2025-03-02")["2025-03-01"])
	assert.Equal(t, []string{res.Booking.ID}, h.queue.enqueued)

	h.records.setFail(nil)
	txn, err := h.orch.Reconcile(context.Background(), res.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(80), txn.CommissionAmount)

	// A resubmission now finds the ledger complete.
	again, err := h.orch.Commit(context.Background(), request("pi_ok", 1000, king(1)))
	require.NoError(t, err)
	assert.Equal(t, txn.ID, again.Transaction.ID)
}

func TestCommit_ResubmissionReturnsSameBooking(t *testing.T) {
	h := newHarness()
	h.paidIntent("pi_ok", 1000)
	ctx := context.Background()

	first, err := h.orch.Commit(ctx, request("pi_ok", 1000, king(1)))
	require.NoError(t, err)
	second, err := h.orch.Commit(ctx, request("pi_ok", 1000, king(1)))
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.Booking.ID, second.Booking.ID)
	assert.Equal(t, first.Transaction.ID, second.Transaction.ID)
	assert.Equal(t, 1, h.bookings.count())
	assert.Equal(t, 1, h.free("rt-king", "2025-03-01", "2025-03-02")["2025-03-01"])
	assert.Equal(t, int32(1), h.gateway.retrieve.Load())
}

func TestCommit_ResubmissionByAnotherUser(t *testing.T) {
	h := newHarness()
	h.paidIntent("pi_ok", 1000)
	ctx := context.Background()

	_, err := h.orch.Commit(ctx, request("pi_ok", 1000, king(1)))
	require.NoError(t, err)

	req := request("pi_ok", 1000, king(1))
	req.UserID = "u-2"
	_, err = h.orch.Commit(ctx, req)
	assert.ErrorIs(t, err, ErrPaymentMismatch)
}

func TestCommit_ConcurrentSameIntent(t *testing.T) {
	h := newHarness()
	h.paidIntent("pi_race", 1000)

	const n = 10
	results := make([]*CommitResult, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = h.orch.Commit(context.Background(), request("pi_race", 1000, dorm(1)))
		}(i)
	}
	wg.Wait()

	var bookingID string
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		if bookingID == "" {
			bookingID = results[i].Booking.ID
		}
		assert.Equal(t, bookingID, results[i].Booking.ID)
	}
	assert.Equal(t, 1, h.bookings.count())
	assert.Equal(t, 19, h.free("rt-dorm", "2025-03-01", "2025-03-02")["2025-03-01"])
	entries, _ := h.records.GetByBookingID(context.Background(), bookingID)
	assert.Len(t, entries, 1)
}

func TestCommit_ConcurrentDifferentIntentsNeverOversell(t *testing.T) {
	h := newHarness()
	const n = 8
	for i := 0; i < n; i++ {
		h.paidIntent(intentName(i), 500)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	committed, rejected := 0, 0
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := h.orch.Commit(context.Background(), request(intentName(i), 500, king(1)))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				committed++
				return
			}
			assert.ErrorIs(t, err, ErrInsufficientAvailability)
			rejected++
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 2, committed)
	assert.Equal(t, n-2, rejected)
	assert.Equal(t, 0, h.free("rt-king", "2025-03-01", "2025-03-02")["2025-03-01"])
}

func intentName(i int) string {
	return "pi_" + string(rune('a'+i))
}

func TestCommit_LockHeldReportsInProgress(t *testing.T) {
	h := newHarness()
	h.paidIntent("pi_ok", 1000)
	h.orch.Lock = heldLock{}

	_, err := h.orch.Commit(context.Background(), request("pi_ok", 1000, king(1)))

	assert.ErrorIs(t, err, ErrCommitInProgress)
	assert.Zero(t, h.bookings.count())
}

func TestCommit_LockFailureDoesNotBlockCommit(t *testing.T) {
	h := newHarness()
	h.paidIntent("pi_ok", 1000)
	h.orch.Lock = brokenLock{}

	res, err := h.orch.Commit(context.Background(), request("pi_ok", 1000, king(1)))

	require.NoError(t, err)
	assert.Equal(t, StateCommitted, res.State)
}

func TestCommit_TicketCollisionRegenerates(t *testing.T) {
	h := newHarness()
	h.paidIntent("pi_a", 1000)
	h.paidIntent("pi_b", 1000)
	ctx := context.Background()

	tickets := []string{"HB-AAAA-AAAA-AAAA", "HB-AAAA-AAAA-AAAA", "HB-BBBB-BBBB-BBBB"}
	var i int
	h.orch.Tickets = ticket.Func(func() string {
		next := tickets[i]
		i++
		return next
	})

	first, err := h.orch.Commit(ctx, request("pi_a", 1000, king(1)))
	require.NoError(t, err)
	second, err := h.orch.Commit(ctx, request("pi_b", 1000, king(1)))
	require.NoError(t, err)

	assert.Equal(t, "HB-AAAA-AAAA-AAAA", first.Booking.TicketNumber)
	assert.Equal(t, "HB-BBBB-BBBB-BBBB", second.Booking.TicketNumber)
}

func TestCommit_TicketCollisionExhausted(t *testing.T) {
	h := newHarness()
	h.paidIntent("pi_a", 1000)
	h.paidIntent("pi_b", 1000)
	ctx := context.Background()
	h.orch.Tickets = ticket.Func(func() string { return "HB-AAAA-AAAA-AAAA" })

	_, err := h.orch.Commit(ctx, request("pi_a", 1000, king(1)))
	require.NoError(t, err)
	_, err = h.orch.Commit(ctx, request("pi_b", 1000, king(1)))

	require.ErrorIs(t, err, ErrPersistenceFailure)
	assert.Equal(t, 1, h.free("rt-king", "2025-03-01", "2025-03-02")["2025-03-01"])
}

func TestCommit_ProjectionFailureDoesNotFailCommit(t *testing.T) {
	h := newHarness()
	h.paidIntent("pi_ok", 1000)
	h.listings.setFailProjection(true)

	res, err := h.orch.Commit(context.Background(), request("pi_ok", 1000, king(1)))

	require.NoError(t, err)
	assert.Equal(t, StateCommitted, res.State)
	assert.Empty(t, h.listings.projectedIDs())
}

func TestCommit_ResubmissionRepairsMissingProjection(t *testing.T) {
	h := newHarness()
	h.paidIntent("pi_ok", 1000)
	ctx := context.Background()

	h.listings.setFailProjection(true)
	first, err := h.orch.Commit(ctx, request("pi_ok", 1000, king(1)))
	require.NoError(t, err)
	require.Empty(t, h.listings.projectedIDs())

	h.listings.setFailProjection(false)
	second, err := h.orch.Commit(ctx, request("pi_ok", 1000, king(1)))
	require.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, []string{first.Booking.ID}, h.listings.projectedIDs())

	// Further resubmissions keep a single copy.
	_, err = h.orch.Commit(ctx, request("pi_ok", 1000, king(1)))
	require.NoError(t, err)
	assert.Equal(t, []string{first.Booking.ID}, h.listings.projectedIDs())
}

func TestReconcile_RepairsMissingProjection(t *testing.T) {
	h := newHarness()
	h.paidIntent("pi_ok", 1000)
	ctx := context.Background()

	h.listings.setFailProjection(true)
	res, err := h.orch.Commit(ctx, request("pi_ok", 1000, king(1)))
	require.NoError(t, err)

	h.listings.setFailProjection(false)
	txn, err := h.orch.Reconcile(ctx, res.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Transaction.ID, txn.ID)
	assert.Equal(t, []string{res.Booking.ID}, h.listings.projectedIDs())
}

func TestCommit_InvalidRequests(t *testing.T) {
	mutate := map[string]func(*CommitRequest){
		"no rooms":          func(r *CommitRequest) { r.Rooms = nil },
		"zero quantity":     func(r *CommitRequest) { r.Rooms = []models.RoomLine{king(0)} },
		"negative quantity": func(r *CommitRequest) { r.Rooms = []models.RoomLine{king(-1)} },
		"check-out first":   func(r *CommitRequest) { r.CheckIn, r.CheckOut = "2025-03-03", "2025-03-01" },
		"same day":          func(r *CommitRequest) { r.CheckOut = r.CheckIn },
		"zero total":        func(r *CommitRequest) { r.TotalCost = 0 },
		"no intent":         func(r *CommitRequest) { r.PaymentIntentID = "" },
		"no adults":         func(r *CommitRequest) { r.AdultCount = 0 },
		"unknown room type": func(r *CommitRequest) { r.Rooms = []models.RoomLine{{RoomTypeID: "rt-other", Quantity: 1}} },
		"unknown hotel":     func(r *CommitRequest) { r.HotelID = "h-404" },
		"pending hotel":     func(r *CommitRequest) { r.HotelID = "h-pending" },
	}
	for name, fn := range mutate {
		t.Run(name, func(t *testing.T) {
			h := newHarness()
			h.paidIntent("pi_ok", 1000)
			req := request("pi_ok", 1000, king(1))
			fn(&req)

			_, err := h.orch.Commit(context.Background(), req)

			require.ErrorIs(t, err, ErrInvalidRequest)
			assert.Equal(t, StateReceived, StateOf(err))
			assert.Zero(t, h.gateway.retrieve.Load())
		})
	}
}

func TestCreatePaymentIntent(t *testing.T) {
	h := newHarness()

	pi, err := h.orch.CreatePaymentIntent(context.Background(), "h-1", "u-1", 1500)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), pi.Amount)
	assert.Equal(t, "etb", pi.Currency)
	assert.Equal(t, map[string]string{
		models.MetaHotelID:   "h-1",
		models.MetaUserID:    "u-1",
		models.MetaTotalCost: "1500",
	}, h.gateway.created[0])

	_, err = h.orch.CreatePaymentIntent(context.Background(), "h-1", "u-1", 0)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = h.orch.CreatePaymentIntent(context.Background(), "h-pending", "u-1", 100)
	assert.Error(t, err)
	assert.Len(t, h.gateway.created, 1)
}

func TestReleaseBooking(t *testing.T) {
	h := newHarness()
	h.paidIntent("pi_ok", 1000)
	ctx := context.Background()

	res, err := h.orch.Commit(ctx, request("pi_ok", 1000, king(2), twin(1)))
	require.NoError(t, err)

	require.NoError(t, h.orch.ReleaseBooking(ctx, res.Booking))
	require.NoError(t, h.orch.ReleaseBooking(ctx, res.Booking))

	assert.Equal(t, 2, h.free("rt-king", "2025-03-01", "2025-03-02")["2025-03-01"])
	assert.Equal(t, 3, h.free("rt-twin", "2025-03-01", "2025-03-02")["2025-03-01"])
}
