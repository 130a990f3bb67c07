package hotelRepo

import (
	"context"
	"fmt"
	"time"

	"hotelbook/database"
	"hotelbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoHotelRepo implements HotelRepository using MongoDB.
type MongoHotelRepo struct {
	coll *mongo.Collection
}

// NewMongoHotelRepo creates a new instance of HotelRepository using MongoDB.
func NewMongoHotelRepo(db *mongo.Database) HotelRepository {
	repo := &MongoHotelRepo{coll: db.Collection("hotels")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create hotel indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout, bounded by the parent.
func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

func (r *MongoHotelRepo) GetByID(ctx context.Context, id string) (*models.HotelListing, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var hotel models.HotelListing
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&hotel); err != nil {
		return nil, fmt.Errorf("error fetching hotel with id %s: %w", id, database.Translate(err))
	}
	return &hotel, nil
}

func (r *MongoHotelRepo) GetAll(ctx context.Context) ([]models.HotelListing, error) {
	ctx, cancel := newContext(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "lastUpdated", Value: -1}}).
		SetProjection(bson.M{"bookings": 0})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing hotels: %w", err)
	}
	defer cursor.Close(ctx)

	var hotels []models.HotelListing
	if err := cursor.All(ctx, &hotels); err != nil {
		return nil, fmt.Errorf("error decoding hotels: %w", err)
	}
	return hotels, nil
}

func (r *MongoHotelRepo) Create(ctx context.Context, hotel *models.HotelListing) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if hotel.LastUpdated.IsZero() {
		hotel.LastUpdated = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, hotel); err != nil {
		return fmt.Errorf("error inserting hotel: %w", database.Translate(err))
	}
	return nil
}

func (r *MongoHotelRepo) FindRoomType(ctx context.Context, roomTypeID string) (string, *models.RoomTypeInventory, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOne().SetProjection(bson.M{
		"id":          1,
		"roomTypes.$": 1,
	})
	var hotel models.HotelListing
	err := r.coll.FindOne(ctx, bson.M{"roomTypes.id": roomTypeID}, opts).Decode(&hotel)
	if err != nil {
		return "", nil, fmt.Errorf("error fetching room type %s: %w", roomTypeID, database.Translate(err))
	}
	if len(hotel.RoomTypes) == 0 {
		return "", nil, fmt.Errorf("room type %s: %w", roomTypeID, database.ErrNotFound)
	}
	return hotel.ID, &hotel.RoomTypes[0], nil
}

func (r *MongoHotelRepo) AppendBooking(ctx context.Context, hotelID string, summary models.BookingSummary) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":                 hotelID,
		"bookings.bookingId": bson.M{"$ne": summary.BookingID},
	}
	update := bson.M{
		"$push": bson.M{"bookings": summary},
		"$set":  bson.M{"lastUpdated": time.Now().UTC()},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to append booking to hotel %s: %w", hotelID, err)
	}
	if res.MatchedCount == 0 {
		// Either already projected or the hotel is gone; only the latter is an error.
		n, err := r.coll.CountDocuments(ctx, bson.M{"id": hotelID})
		if err != nil {
			return fmt.Errorf("failed to check hotel %s: %w", hotelID, err)
		}
		if n == 0 {
			return fmt.Errorf("hotel %s: %w", hotelID, database.ErrNotFound)
		}
	}
	return nil
}
