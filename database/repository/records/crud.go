package recordsRepo

import (
	"context"
	"fmt"
	"time"

	"hotelbook/database"
	"hotelbook/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create inserts a new ledger entry.
func (r *mongoRecordRepo) Create(ctx context.Context, record *models.TransactionRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("insert transaction failed: %w", database.Translate(err))
	}
	return nil
}

// GetPaymentByBookingID returns the payment entry recorded for a booking.
func (r *mongoRecordRepo) GetPaymentByBookingID(ctx context.Context, bookingID string) (*models.TransactionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var record models.TransactionRecord
	filter := bson.M{"bookingId": bookingID, "transactionType": models.TransactionPayment}
	if err := r.coll.FindOne(ctx, filter).Decode(&record); err != nil {
		return nil, database.Translate(err)
	}
	return &record, nil
}

// GetByBookingID fetches all entries associated with a booking.
func (r *mongoRecordRepo) GetByBookingID(ctx context.Context, bookingID string) ([]models.TransactionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"bookingId": bookingID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []models.TransactionRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
