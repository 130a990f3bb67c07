package handlers

import (
	"context"
	"net/http"

	"hotelbook/models"
	"hotelbook/services/inventory"
	"hotelbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListingReader serves the read side of hotel listings.
type ListingReader interface {
	GetListing(ctx context.Context, hotelID string) (*models.HotelListing, error)
	ListListings(ctx context.Context) ([]models.HotelListing, error)
	MyBookings(ctx context.Context, userID string) ([]models.HotelListing, error)
}

type HotelHandler struct {
	Listings  ListingReader
	Inventory inventory.Ledger
}

// ListHotels returns all listings, most recently updated first.
func (h *HotelHandler) ListHotels(c *gin.Context) {
	hotels, err := h.Listings.ListListings(c.Request.Context())
	if err != nil {
		getLogger(c).Error("Failed to list hotels", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Error fetching hotels", err.Error())
		return
	}
	if hotels == nil {
		hotels = []models.HotelListing{}
	}
	c.JSON(http.StatusOK, hotels)
}

func (h *HotelHandler) GetHotel(c *gin.Context) {
	listing, err := h.Listings.GetListing(c.Request.Context(), c.Param("hotelId"))
	if err != nil {
		status, msg := errorStatus(err)
		utils.JSONError(c, status, msg, err.Error())
		return
	}
	// Guests see the listing, not other guests' bookings.
	public := *listing
	public.Bookings = nil
	c.JSON(http.StatusOK, public)
}

// Availability reports free units of a room type for each night of a stay.
func (h *HotelHandler) Availability(c *gin.Context) {
	ctx := c.Request.Context()
	hotelID := c.Param("hotelId")
	roomTypeID := c.Param("roomTypeId")

	checkIn, checkOut := c.Query("checkIn"), c.Query("checkOut")
	if checkIn == "" || checkOut == "" {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", "checkIn and checkOut are required")
		return
	}

	listing, err := h.Listings.GetListing(ctx, hotelID)
	if err != nil {
		status, msg := errorStatus(err)
		utils.JSONError(c, status, msg, err.Error())
		return
	}
	if _, ok := listing.RoomType(roomTypeID); !ok {
		utils.JSONError(c, http.StatusNotFound, "Not found", "room type not offered by this hotel")
		return
	}

	nights, err := h.Inventory.Availability(ctx, roomTypeID, checkIn, checkOut)
	if err != nil {
		status, msg := errorStatus(err)
		utils.JSONError(c, status, msg, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"hotelId":    hotelID,
		"roomTypeId": roomTypeID,
		"nights":     nights,
	})
}

// MyBookings lists the hotels the caller has booked with their own bookings.
func (h *HotelHandler) MyBookings(c *gin.Context) {
	hotels, err := h.Listings.MyBookings(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Unable to fetch bookings", err.Error())
		return
	}
	if hotels == nil {
		hotels = []models.HotelListing{}
	}
	c.JSON(http.StatusOK, hotels)
}
