package hotel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"hotelbook/models"

	"github.com/go-redis/redis/v8"
)

// ListingCache keeps read-side copies of hotel listings.
type ListingCache interface {
	Get(ctx context.Context, hotelID string) (*models.HotelListing, bool, error)
	Set(ctx context.Context, listing *models.HotelListing) error
	Invalidate(ctx context.Context, hotelID string) error
}

type RedisListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisListingCache(client *redis.Client, ttl time.Duration) *RedisListingCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisListingCache{client: client, ttl: ttl}
}

const listingKeyPrefix = "hotel:listing:"

func listingKey(id string) string {
	return fmt.Sprintf("%s%s", listingKeyPrefix, id)
}

func (c *RedisListingCache) Get(ctx context.Context, hotelID string) (*models.HotelListing, bool, error) {
	val, err := c.client.Get(ctx, listingKey(hotelID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var listing models.HotelListing
	if err := json.Unmarshal(val, &listing); err != nil {
		// Corrupt entries are treated as misses and overwritten on the next Set.
		return nil, false, nil
	}
	return &listing, true, nil
}

func (c *RedisListingCache) Set(ctx context.Context, listing *models.HotelListing) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, listingKey(listing.ID), data, c.ttl).Err()
}

func (c *RedisListingCache) Invalidate(ctx context.Context, hotelID string) error {
	return c.client.Del(ctx, listingKey(hotelID)).Err()
}
