package routes

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hotelbook/config"
	"hotelbook/handlers"
	"hotelbook/models"
	"hotelbook/services/booking"
	"hotelbook/services/inventory"
	"hotelbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	booking.Service
	lastUser string
}

func (s *stubService) CreatePaymentIntent(_ context.Context, hotelID, userID string, totalCost int64) (*models.PaymentIntent, error) {
	s.lastUser = userID
	return &models.PaymentIntent{ID: "pi_1", Amount: totalCost, Currency: "etb"}, nil
}

type stubListings struct{}

func (stubListings) GetListing(_ context.Context, id string) (*models.HotelListing, error) {
	return &models.HotelListing{ID: id, Status: models.HotelStatusApproved}, nil
}

func (stubListings) ListListings(context.Context) ([]models.HotelListing, error) {
	return []models.HotelListing{{ID: "h-1"}}, nil
}

func (stubListings) MyBookings(context.Context, string) ([]models.HotelListing, error) {
	return nil, nil
}

type stubLedger struct {
	inventory.Ledger
}

func newTestRouter(svc booking.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	config.AppConfig.JWTSecret = "routes-secret"
	config.AppConfig.MaxRequestsPerMin = 1000
	config.AppConfig.CORSOrigins = "https://app.example.com"

	r := gin.New()
	RegisterRoutes(r, handlers.NewHandlerBundle(svc, stubListings{}, stubLedger{}))
	return r
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := newTestRouter(&stubService{})

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodPost, "/api/hotels/h-1/bookings", bytes.NewBufferString(`{}`)),
		httptest.NewRequest(http.MethodPost, "/api/hotels/h-1/bookings/payment-intent", bytes.NewBufferString(`{}`)),
		httptest.NewRequest(http.MethodGet, "/api/my-bookings", nil),
		httptest.NewRequest(http.MethodGet, "/api/bookings/b-1", nil),
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, req.URL.Path)
	}
}

func TestUserIDComesFromToken(t *testing.T) {
	svc := &stubService{}
	r := newTestRouter(svc)
	token, err := utils.GenerateToken("u-verified", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/hotels/h-1/bookings/payment-intent",
		bytes.NewBufferString(`{"totalCost":1000,"userId":"u-spoofed"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-verified", svc.lastUser)
}

func TestPublicRoutes(t *testing.T) {
	r := newTestRouter(&stubService{})

	for _, path := range []string{"/health", "/api/hotels", "/api/hotels/h-1"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestCORSOrigins(t *testing.T) {
	config.AppConfig.CORSOrigins = " https://a.example.com, https://b.example.com ,"
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, corsOrigins())

	config.AppConfig.CORSOrigins = ""
	assert.Equal(t, []string{"*"}, corsOrigins())
}
