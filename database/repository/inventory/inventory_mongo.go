package inventoryRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotelbook/database"
	"hotelbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// maxTxnAttempts bounds retries of transactions the server aborted before
// applying anything (write conflicts between overlapping reservations).
const maxTxnAttempts = 3

// MongoInventoryRepo implements InventoryStore with one document per
// (room type, night) and a conditional $inc inside a multi-document transaction.
type MongoInventoryRepo struct {
	nightsColl       *mongo.Collection
	reservationsColl *mongo.Collection
}

// NewMongoInventoryRepo constructs a new instance of MongoInventoryRepo.
// Transactions require MongoDB to run as a replica set.
func NewMongoInventoryRepo(db *mongo.Database) InventoryStore {
	repo := &MongoInventoryRepo{
		nightsColl:       db.Collection("room_nights"),
		reservationsColl: db.Collection("reservations"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create inventory indexes: %v\n", err)
	}
	return repo
}

func (repo *MongoInventoryRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := repo.nightsColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "roomTypeId", Value: 1}, {Key: "night", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create room night index: %w", err)
	}
	if _, err := repo.reservationsColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "token", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create reservation index: %w", err)
	}
	return nil
}

// seedNights makes sure every night has a document so the conditional
// update below has something to match.
func (repo *MongoInventoryRepo) seedNights(ctx context.Context, res *models.Reservation) error {
	writes := make([]mongo.WriteModel, 0, len(res.Nights))
	for _, night := range res.Nights {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"roomTypeId": res.RoomTypeID, "night": night}).
			SetUpdate(bson.M{"$setOnInsert": bson.M{"total": res.Total, "reserved": 0}}).
			SetUpsert(true))
	}
	_, err := repo.nightsColl.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		// A concurrent seed of the same night is fine; the document exists either way.
		return fmt.Errorf("failed to seed room nights: %w", err)
	}
	return nil
}

func (repo *MongoInventoryRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	client := repo.nightsColl.Database().Client()

	var err error
	for attempt := 1; attempt <= maxTxnAttempts; attempt++ {
		err = func() error {
			sess, err := client.StartSession()
			if err != nil {
				return fmt.Errorf("could not start mongo session: %w", err)
			}
			defer sess.EndSession(ctx)

			return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
				if err := sc.StartTransaction(); err != nil {
					return err
				}
				if err := fn(sc); err != nil {
					_ = sc.AbortTransaction(sc)
					return err
				}
				return commitWithRetry(sc)
			})
		}()
		if err == nil || !database.IsTransient(err) || database.IsUnknownCommitResult(err) {
			return err
		}
	}
	return fmt.Errorf("transaction aborted after %d attempts: %w", maxTxnAttempts, err)
}

// commitWithRetry repeats a commit whose outcome the server could not confirm.
func commitWithRetry(sc mongo.SessionContext) error {
	var err error
	for attempt := 1; attempt <= maxTxnAttempts; attempt++ {
		err = sc.CommitTransaction(sc)
		if err == nil || !database.IsUnknownCommitResult(err) {
			return err
		}
	}
	return err
}

func (repo *MongoInventoryRepo) Reserve(ctx context.Context, res *models.Reservation) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := repo.seedNights(ctx, res); err != nil {
		return err
	}

	return repo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		for _, night := range res.Nights {
			filter := bson.M{
				"roomTypeId": res.RoomTypeID,
				"night":      night,
				"$expr": bson.M{
					"$lte": bson.A{bson.M{"$add": bson.A{"$reserved", res.Quantity}}, "$total"},
				},
			}
			update := bson.M{"$inc": bson.M{"reserved": res.Quantity}}

			out, err := repo.nightsColl.UpdateOne(sc, filter, update)
			if err != nil {
				return fmt.Errorf("reserve night %s failed: %w", night, err)
			}
			if out.MatchedCount == 0 {
				return fmt.Errorf("%w: room type %s night %s", ErrInsufficientCapacity, res.RoomTypeID, night)
			}
		}
		if _, err := repo.reservationsColl.InsertOne(sc, res); err != nil {
			return fmt.Errorf("insert reservation failed: %w", err)
		}
		return nil
	})
}

func (repo *MongoInventoryRepo) Release(ctx context.Context, token string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	released := false
	err := repo.withTransaction(ctx, func(sc mongo.SessionContext) error {
		released = false
		now := time.Now().UTC()

		var res models.Reservation
		err := repo.reservationsColl.FindOneAndUpdate(sc,
			bson.M{"token": token, "status": models.ReservationHeld},
			bson.M{"$set": bson.M{"status": models.ReservationReleased, "releasedAt": now}},
		).Decode(&res)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to mark reservation released: %w", err)
		}

		for _, night := range res.Nights {
			filter := bson.M{
				"roomTypeId": res.RoomTypeID,
				"night":      night,
				"reserved":   bson.M{"$gte": res.Quantity},
			}
			out, err := repo.nightsColl.UpdateOne(sc, filter, bson.M{"$inc": bson.M{"reserved": -res.Quantity}})
			if err != nil {
				return fmt.Errorf("release night %s failed: %w", night, err)
			}
			if out.MatchedCount == 0 {
				return fmt.Errorf("release night %s: reserved count below reservation quantity", night)
			}
		}
		released = true
		return nil
	})
	return released, err
}

func (repo *MongoInventoryRepo) Nights(ctx context.Context, roomTypeID string, nights []string) ([]models.RoomNight, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := repo.nightsColl.Find(ctx, bson.M{
		"roomTypeId": roomTypeID,
		"night":      bson.M{"$in": nights},
	})
	if err != nil {
		return nil, fmt.Errorf("error fetching room nights: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.RoomNight
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("error decoding room nights: %w", err)
	}
	return out, nil
}
