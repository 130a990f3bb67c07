package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"hotelbook/database"
	bookingRepo "hotelbook/database/repository/booking"
	inventoryRepo "hotelbook/database/repository/inventory"
	"hotelbook/models"
	"hotelbook/services/hotel"
	"hotelbook/services/inventory"
	"hotelbook/services/ledger"
	"hotelbook/services/payment"
	"hotelbook/services/ticket"
)

type fakeGateway struct {
	mu       sync.Mutex
	intents  map[string]*models.PaymentIntent
	err      error
	created  []map[string]string
	retrieve atomic.Int32
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{intents: make(map[string]*models.PaymentIntent)}
}

func (g *fakeGateway) put(pi *models.PaymentIntent) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.intents[pi.ID] = pi
}

func (g *fakeGateway) CreateIntent(_ context.Context, amount int64, currency string, metadata map[string]string) (*models.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if amount <= 0 {
		return nil, payment.ErrInvalidAmount
	}
	g.created = append(g.created, metadata)
	pi := &models.PaymentIntent{
		ID:           fmt.Sprintf("pi_%d", len(g.created)),
		Status:       models.IntentRequiresPayment,
		Amount:       amount,
		Currency:     currency,
		ClientSecret: "secret",
		Metadata:     metadata,
	}
	g.intents[pi.ID] = pi
	return pi, nil
}

func (g *fakeGateway) RetrieveIntent(_ context.Context, id string) (*models.PaymentIntent, error) {
	g.retrieve.Add(1)
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	pi, ok := g.intents[id]
	if !ok {
		return nil, payment.ErrIntentNotFound
	}
	cp := *pi
	return &cp, nil
}

type memBookings struct {
	mu        sync.Mutex
	byID      map[string]models.BookingRecord
	createErr error
}

func newMemBookings() *memBookings {
	return &memBookings{byID: make(map[string]models.BookingRecord)}
}

func (m *memBookings) Create(_ context.Context, b *models.BookingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.byID {
		if existing.IdempotencyKey == b.IdempotencyKey {
			return fmt.Errorf("%w: %s", bookingRepo.ErrDuplicateBooking, b.IdempotencyKey)
		}
		if existing.TicketNumber == b.TicketNumber {
			return fmt.Errorf("%w: %s", bookingRepo.ErrDuplicateTicket, b.TicketNumber)
		}
	}
	m.byID[b.ID] = *b
	return nil
}

func (m *memBookings) GetByID(_ context.Context, id string) (*models.BookingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.byID[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &b, nil
}

func (m *memBookings) GetByIdempotencyKey(_ context.Context, key string) (*models.BookingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.byID {
		if b.IdempotencyKey == key {
			return &b, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memBookings) ListByUser(_ context.Context, userID string) ([]models.BookingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.BookingRecord
	for _, b := range m.byID {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memBookings) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

type memRecords struct {
	mu      sync.Mutex
	entries []models.TransactionRecord
	failErr error
}

func (m *memRecords) Create(_ context.Context, r *models.TransactionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	for _, e := range m.entries {
		if e.BookingID == r.BookingID && e.TransactionType == models.TransactionPayment && r.TransactionType == models.TransactionPayment {
			return errors.Join(database.ErrDuplicateKey, errors.New("E11000"))
		}
	}
	m.entries = append(m.entries, *r)
	return nil
}

func (m *memRecords) GetPaymentByBookingID(_ context.Context, bookingID string) (*models.TransactionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.BookingID == bookingID && e.TransactionType == models.TransactionPayment {
			found := e
			return &found, nil
		}
	}
	return nil, database.ErrNotFound
}

func (m *memRecords) GetByBookingID(_ context.Context, bookingID string) ([]models.TransactionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TransactionRecord
	for _, e := range m.entries {
		if e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memRecords) setFail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failErr = err
}

type fakeListings struct {
	mu        sync.Mutex
	hotels    map[string]*models.HotelListing
	projected []string
	failProj  bool
}

func (f *fakeListings) BookableListing(_ context.Context, hotelID string) (*models.HotelListing, error) {
	h, ok := f.hotels[hotelID]
	if !ok {
		return nil, hotel.ErrHotelNotFound
	}
	if !h.Bookable() {
		return nil, hotel.ErrHotelNotBookable
	}
	return h, nil
}

func (f *fakeListings) ProjectBooking(_ context.Context, b *models.BookingRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failProj {
		return errors.New("projection write failed")
	}
	for _, id := range f.projected {
		if id == b.ID {
			return nil
		}
	}
	f.projected = append(f.projected, b.ID)
	return nil
}

func (f *fakeListings) setFailProjection(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failProj = fail
}

func (f *fakeListings) projectedIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.projected...)
}

// FindRoomType lets the listings double as the inventory ledger's catalog.
func (f *fakeListings) FindRoomType(_ context.Context, roomTypeID string) (string, *models.RoomTypeInventory, error) {
	for _, h := range f.hotels {
		if rt, ok := h.RoomType(roomTypeID); ok {
			return h.ID, &rt, nil
		}
	}
	return "", nil, database.ErrNotFound
}

type fakeQueue struct {
	mu       sync.Mutex
	enqueued []string
}

func (q *fakeQueue) EnqueueReconcile(_ context.Context, bookingID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueued = append(q.enqueued, bookingID)
	return nil
}

type heldLock struct{}

func (heldLock) Acquire(context.Context, string) (func(), bool, error) {
	return func() {}, false, nil
}

type brokenLock struct{}

func (brokenLock) Acquire(context.Context, string) (func(), bool, error) {
	return func() {}, false, errors.New("redis: connection refused")
}

type harness struct {
	orch      *Orchestrator
	gateway   *fakeGateway
	store     *inventoryRepo.MemoryInventoryRepo
	inventory *inventory.DefaultLedger
	bookings  *memBookings
	records   *memRecords
	listings  *fakeListings
	queue     *fakeQueue
}

func newHarness() *harness {
	listings := &fakeListings{hotels: map[string]*models.HotelListing{
		"h-1": {
			ID:     "h-1",
			Name:   "Blue Nile Lodge",
			Status: models.HotelStatusApproved,
			RoomTypes: []models.RoomTypeInventory{
				{ID: "rt-king", Name: "King", TotalUnits: 2, PricePerNight: 500},
				{ID: "rt-twin", Name: "Twin", TotalUnits: 3, PricePerNight: 300},
				{ID: "rt-dorm", Name: "Dorm bed", TotalUnits: 20, PricePerNight: 100},
			},
		},
		"h-pending": {ID: "h-pending", Status: models.HotelStatusPending},
	}}
	store := inventoryRepo.NewMemoryInventoryRepo()
	inv := inventory.NewLedger(store, listings, nil)
	records := &memRecords{}
	h := &harness{
		gateway:   newFakeGateway(),
		store:     store,
		inventory: inv,
		bookings:  newMemBookings(),
		records:   records,
		listings:  listings,
		queue:     &fakeQueue{},
	}
	h.orch = &Orchestrator{
		Gateway:    h.gateway,
		Inventory:  inv,
		Bookings:   h.bookings,
		Recorder:   ledger.NewRecorder(records, nil),
		Listings:   listings,
		Tickets:    ticket.NewGenerator(),
		Reconciler: h.queue,
		Currency:   "etb",
	}
	return h
}

// paidIntent registers a succeeded intent for user u-1 at hotel h-1.
func (h *harness) paidIntent(id string, amount int64) {
	h.gateway.put(&models.PaymentIntent{
		ID:       id,
		Status:   models.IntentSucceeded,
		Amount:   amount,
		Currency: "etb",
		Metadata: map[string]string{models.MetaHotelID: "h-1", models.MetaUserID: "u-1"},
	})
}

func (h *harness) free(roomTypeID, checkIn, checkOut string) map[string]int {
	avail, err := h.inventory.Availability(context.Background(), roomTypeID, checkIn, checkOut)
	if err != nil {
		panic(err)
	}
	return avail
}

func request(intentID string, total int64, rooms ...models.RoomLine) CommitRequest {
	return CommitRequest{
		HotelID:         "h-1",
		UserID:          "u-1",
		PaymentIntentID: intentID,
		Rooms:           rooms,
		CheckIn:         "2025-03-01",
		CheckOut:        "2025-03-03",
		AdultCount:      2,
		TotalCost:       total,
	}
}
