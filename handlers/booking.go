package handlers

import (
	"errors"
	"net/http"

	"hotelbook/models"
	"hotelbook/services/booking"
	"hotelbook/services/hotel"
	"hotelbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	Bookings booking.Service
}

type paymentIntentRequest struct {
	TotalCost int64 `json:"totalCost" binding:"required"`
}

type commitBookingRequest struct {
	PaymentIntentID string         `json:"paymentIntentId" binding:"required"`
	Rooms           map[string]int `json:"rooms" binding:"required"`
	CheckIn         string         `json:"checkIn" binding:"required"`
	CheckOut        string         `json:"checkOut" binding:"required"`
	AdultCount      int            `json:"adultCount"`
	ChildCount      int            `json:"childCount"`
	TotalCost       int64          `json:"totalCost" binding:"required"`
}

// CreatePaymentIntent opens a payment for a stay.
func (h *BookingHandler) CreatePaymentIntent(c *gin.Context) {
	userID := c.GetString("userID")
	hotelID := c.Param("hotelId")

	var req paymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	intent, err := h.Bookings.CreatePaymentIntent(c.Request.Context(), hotelID, userID, req.TotalCost)
	if err != nil {
		status, msg := errorStatus(err)
		if errors.Is(err, hotel.ErrHotelNotFound) {
			status, msg = http.StatusBadRequest, "Hotel not found"
		}
		utils.JSONError(c, status, msg, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"paymentIntentId": intent.ID,
		"clientSecret":    intent.ClientSecret,
		"totalCost":       intent.Amount,
		"currency":        intent.Currency,
	})
}

// CommitBooking turns a completed payment into a booking.
func (h *BookingHandler) CommitBooking(c *gin.Context) {
	logger := getLogger(c)
	userID := c.GetString("userID")
	hotelID := c.Param("hotelId")

	var req commitBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input", err.Error())
		return
	}

	rooms := make([]models.RoomLine, 0, len(req.Rooms))
	for roomTypeID, qty := range req.Rooms {
		rooms = append(rooms, models.RoomLine{RoomTypeID: roomTypeID, Quantity: qty})
	}

	result, err := h.Bookings.Commit(c.Request.Context(), booking.CommitRequest{
		HotelID:         hotelID,
		UserID:          userID,
		PaymentIntentID: req.PaymentIntentID,
		Rooms:           rooms,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		AdultCount:      req.AdultCount,
		ChildCount:      req.ChildCount,
		TotalCost:       req.TotalCost,
	})
	if err != nil && !(errors.Is(err, booking.ErrRecordingIncomplete) && result != nil) {
		status, msg := errorStatus(err)
		logger.Info("Booking commit failed",
			zap.String("state", string(booking.StateOf(err))),
			zap.Int("status", status),
			zap.Error(err))
		utils.JSONError(c, status, msg, err.Error())
		return
	}

	resp := gin.H{
		"bookingId":     result.Booking.ID,
		"ticketNumber":  result.Booking.TicketNumber,
		"ledgerPending": result.LedgerPending,
		"booking":       result.Booking,
	}
	if result.Transaction != nil {
		resp["transactionId"] = result.Transaction.ID
	}
	c.JSON(http.StatusOK, resp)
}

// GetBooking returns one of the caller's bookings with its ledger entries.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID := c.GetString("userID")
	ctx := c.Request.Context()

	b, err := h.Bookings.GetBooking(ctx, c.Param("bookingId"))
	if err != nil {
		status, msg := errorStatus(err)
		utils.JSONError(c, status, msg, err.Error())
		return
	}
	if b.UserID != userID {
		utils.JSONError(c, http.StatusNotFound, "Not found", "")
		return
	}

	entries, err := h.Bookings.LedgerEntries(ctx, b.ID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load transactions", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b, "transactions": entries})
}
