package hotel

import (
	"context"
	"errors"
	"fmt"

	"hotelbook/database"
	hotelRepo "hotelbook/database/repository/hotel"
	"hotelbook/models"

	"go.uber.org/zap"
)

var (
	// ErrHotelNotFound means no listing exists for the id.
	ErrHotelNotFound = errors.New("hotel not found")
	// ErrHotelNotBookable means the listing exists but is not approved for booking.
	ErrHotelNotBookable = errors.New("hotel is not accepting bookings")
)

// BookingSource is the canonical store of committed bookings.
type BookingSource interface {
	ListByUser(ctx context.Context, userID string) ([]models.BookingRecord, error)
}

// ListingService serves hotel listings and keeps their booking projection current.
type ListingService struct {
	repo     hotelRepo.HotelRepository
	bookings BookingSource
	cache    ListingCache
	logger   *zap.Logger
}

// NewListingService builds the service. cache may be nil, in which case every
// read goes to the repository.
func NewListingService(repo hotelRepo.HotelRepository, bookings BookingSource, cache ListingCache, logger *zap.Logger) *ListingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingService{repo: repo, bookings: bookings, cache: cache, logger: logger}
}

// GetListing returns the listing, served from cache when possible.
func (s *ListingService) GetListing(ctx context.Context, hotelID string) (*models.HotelListing, error) {
	if s.cache != nil {
		listing, ok, err := s.cache.Get(ctx, hotelID)
		if err != nil {
			s.logger.Warn("Listing cache read failed", zap.String("hotelId", hotelID), zap.Error(err))
		} else if ok {
			return listing, nil
		}
	}

	listing, err := s.repo.GetByID(ctx, hotelID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrHotelNotFound, hotelID)
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, listing); err != nil {
			s.logger.Warn("Listing cache write failed", zap.String("hotelId", hotelID), zap.Error(err))
		}
	}
	return listing, nil
}

// BookableListing returns the listing if guests may currently book it.
func (s *ListingService) BookableListing(ctx context.Context, hotelID string) (*models.HotelListing, error) {
	listing, err := s.GetListing(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	if !listing.Bookable() {
		return nil, fmt.Errorf("%w: %s is %s", ErrHotelNotBookable, hotelID, listing.Status)
	}
	return listing, nil
}

// FindRoomType resolves a room type to its hotel and inventory. It always reads
// the repository so totals are never stale.
func (s *ListingService) FindRoomType(ctx context.Context, roomTypeID string) (string, *models.RoomTypeInventory, error) {
	return s.repo.FindRoomType(ctx, roomTypeID)
}

// ProjectBooking copies a committed booking onto its listing and drops the
// cached view. Projecting the same booking twice keeps one copy.
func (s *ListingService) ProjectBooking(ctx context.Context, booking *models.BookingRecord) error {
	if err := s.repo.AppendBooking(ctx, booking.HotelID, booking.Summary()); err != nil {
		return fmt.Errorf("project booking %s onto hotel %s: %w", booking.ID, booking.HotelID, err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, booking.HotelID); err != nil {
			s.logger.Warn("Listing cache invalidation failed", zap.String("hotelId", booking.HotelID), zap.Error(err))
		}
	}
	return nil
}

// ListListings returns every listing, most recently updated first, without
// their bookings.
func (s *ListingService) ListListings(ctx context.Context) ([]models.HotelListing, error) {
	listings, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list hotels: %w", err)
	}
	for i := range listings {
		listings[i].Bookings = nil
	}
	return listings, nil
}

// CreateListing stores a new listing.
func (s *ListingService) CreateListing(ctx context.Context, listing *models.HotelListing) error {
	if listing.ID == "" || listing.Name == "" {
		return errors.New("listing id and name are required")
	}
	return s.repo.Create(ctx, listing)
}

// MyBookings groups the user's committed bookings by hotel, newest first. Each
// listing carries only the user's own bookings, read from the booking store
// rather than the listing projection.
func (s *ListingService) MyBookings(ctx context.Context, userID string) ([]models.HotelListing, error) {
	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings for user %s: %w", userID, err)
	}

	var out []models.HotelListing
	index := make(map[string]int)
	for i := range bookings {
		b := &bookings[i]
		pos, seen := index[b.HotelID]
		if !seen {
			listing, err := s.GetListing(ctx, b.HotelID)
			if errors.Is(err, ErrHotelNotFound) {
				s.logger.Warn("Booking references missing hotel",
					zap.String("bookingId", b.ID),
					zap.String("hotelId", b.HotelID))
				continue
			}
			if err != nil {
				return nil, err
			}
			own := *listing
			own.Bookings = nil
			out = append(out, own)
			pos = len(out) - 1
			index[b.HotelID] = pos
		}
		out[pos].Bookings = append(out[pos].Bookings, b.Summary())
	}
	return out, nil
}
