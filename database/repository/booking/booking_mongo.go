package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotelbook/database"
	"hotelbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ticketIndex      = "uniq_ticket_number"
	idempotencyIndex = "uniq_idempotency_key"
)

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a new instance of BookingRepository using MongoDB.
func NewMongoBookingRepo(db *mongo.Database) BookingRepository {
	repo := &MongoBookingRepo{coll: db.Collection("bookings")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create booking indexes: %v\n", err)
	}
	return repo
}

func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "ticketNumber", Value: 1}}, Options: options.Index().SetUnique(true).SetName(ticketIndex)},
		{Keys: bson.D{{Key: "idempotencyKey", Value: 1}}, Options: options.Index().SetUnique(true).SetName(idempotencyIndex)},
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts the booking. The insert is a single attempt; callers decide
// whether a failure may be retried.
func (r *MongoBookingRepo) Create(ctx context.Context, booking *models.BookingRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, booking)
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		switch msg := err.Error(); {
		case strings.Contains(msg, idempotencyIndex):
			return fmt.Errorf("%w: %s", ErrDuplicateBooking, booking.IdempotencyKey)
		case strings.Contains(msg, ticketIndex):
			return fmt.Errorf("%w: %s", ErrDuplicateTicket, booking.TicketNumber)
		}
	}
	return fmt.Errorf("insert booking failed: %w", database.Translate(err))
}

func (r *MongoBookingRepo) findOne(ctx context.Context, filter bson.M) (*models.BookingRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var booking models.BookingRecord
	if err := r.coll.FindOne(ctx, filter).Decode(&booking); err != nil {
		return nil, database.Translate(err)
	}
	return &booking, nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.BookingRecord, error) {
	b, err := r.findOne(ctx, bson.M{"id": id})
	if err != nil {
		return nil, fmt.Errorf("error fetching booking %s: %w", id, err)
	}
	return b, nil
}

func (r *MongoBookingRepo) GetByIdempotencyKey(ctx context.Context, key string) (*models.BookingRecord, error) {
	b, err := r.findOne(ctx, bson.M{"idempotencyKey": key})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error fetching booking by key: %w", err)
	}
	return b, nil
}

func (r *MongoBookingRepo) ListByUser(ctx context.Context, userID string) ([]models.BookingRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var bookings []models.BookingRecord
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}
