package recordsRepo

import (
	"context"
	"fmt"
	"time"

	"hotelbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TransactionRepository stores immutable ledger entries.
type TransactionRepository interface {
	// Create inserts a ledger entry. A second payment entry for the same
	// booking fails with database.ErrDuplicateKey.
	Create(ctx context.Context, record *models.TransactionRecord) error
	// GetPaymentByBookingID returns the payment entry of a booking.
	GetPaymentByBookingID(ctx context.Context, bookingID string) (*models.TransactionRecord, error)
	// GetByBookingID returns every entry of a booking, oldest first.
	GetByBookingID(ctx context.Context, bookingID string) ([]models.TransactionRecord, error)
}

type mongoRecordRepo struct {
	coll *mongo.Collection
}

// NewMongoRecordRepo returns a new TransactionRepository instance using MongoDB.
func NewMongoRecordRepo(db *mongo.Database) TransactionRepository {
	repo := &mongoRecordRepo{coll: db.Collection("transactions")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create transaction indexes: %v\n", err)
	}
	return repo
}

func (r *mongoRecordRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	onePaymentPerBooking := options.Index().
		SetUnique(true).
		SetName("uniq_payment_per_booking").
		SetPartialFilterExpression(bson.M{"transactionType": models.TransactionPayment})

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "bookingId", Value: 1}, {Key: "transactionType", Value: 1}}, Options: onePaymentPerBooking},
		{Keys: bson.D{{Key: "hotelId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
