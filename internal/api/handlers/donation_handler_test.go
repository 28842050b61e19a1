package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/foodbridge/services/donation/config"
	"example.com/foodbridge/services/donation/internal/models"
	"example.com/foodbridge/services/donation/internal/repository"
	"example.com/foodbridge/services/donation/internal/service"
	"example.com/foodbridge/services/donation/internal/tracing"
)

type mockDonationRepo struct {
	mock.Mock
}

func (m *mockDonationRepo) Create(ctx context.Context, donation *models.Donation) error {
	args := m.Called(ctx, donation)
	return args.Error(0)
}

func (m *mockDonationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Donation), args.Error(1)
}

func (m *mockDonationRepo) FindAvailable(ctx context.Context) ([]models.Donation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Donation), args.Error(1)
}

func (m *mockDonationRepo) FindByDonor(ctx context.Context, donorID string) ([]models.Donation, error) {
	args := m.Called(ctx, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Donation), args.Error(1)
}

func (m *mockDonationRepo) ClaimAvailable(ctx context.Context, donationID uuid.UUID, order *models.Order) error {
	args := m.Called(ctx, donationID, order)
	return args.Error(0)
}

func (m *mockDonationRepo) CompleteClaimed(ctx context.Context, donationID uuid.UUID) error {
	args := m.Called(ctx, donationID)
	return args.Error(0)
}

func (m *mockDonationRepo) SetRating(ctx context.Context, donationID uuid.UUID, role models.RaterRole, value int) error {
	args := m.Called(ctx, donationID, role, value)
	return args.Error(0)
}

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *mockOrderRepo) FindByRecipient(ctx context.Context, recipientID string) ([]models.Order, error) {
	args := m.Called(ctx, recipientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func newTestRouter(t *testing.T, donations *mockDonationRepo, orders *mockOrderRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tracer, err := tracing.NewTracer(config.TracingConfig{})
	require.NoError(t, err)

	svc := service.NewDonationService(donations, orders, nil, nil, nil, nil, tracer)

	router := gin.New()
	NewDonationHandler(svc, tracer).RegisterRoutes(router)
	NewOrderHandler(svc, tracer).RegisterRoutes(router)
	return router
}

func performJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlePublishDonation(t *testing.T) {
	donations := new(mockDonationRepo)
	donations.On("Create", mock.Anything, mock.AnythingOfType("*models.Donation")).Return(nil)

	router := newTestRouter(t, donations, new(mockOrderRepo))

	rec := performJSON(router, http.MethodPost, "/api/donations", gin.H{
		"donorId":          "donor-1",
		"foodName":         "Bread",
		"category":         "Bakery",
		"quantity":         "12 loaves",
		"location":         "Shelter Kitchen",
		"latitude":         12.9716,
		"longitude":        77.5946,
		"donorPhoneNumber": "+911234567890",
		"donorEmail":       "donor@example.com",
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var donation models.Donation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &donation))
	require.Equal(t, models.DonationStatusAvailable, donation.Status)
	require.Equal(t, "Bread", donation.FoodName)
}

func TestHandlePublishDonationValidation(t *testing.T) {
	router := newTestRouter(t, new(mockDonationRepo), new(mockOrderRepo))

	rec := performJSON(router, http.MethodPost, "/api/donations", gin.H{
		"donorId": "donor-1",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "VALIDATION_ERROR", resp.Code)
}

func TestHandleClaimDonationConflict(t *testing.T) {
	donation := &models.Donation{
		ID:         uuid.New(),
		Status:     models.DonationStatusClaimed,
		FoodName:   "Bread",
		DonorEmail: "donor@example.com",
	}
	donations := new(mockDonationRepo)
	donations.On("GetByID", mock.Anything, donation.ID).Return(donation, nil)

	router := newTestRouter(t, donations, new(mockOrderRepo))

	rec := performJSON(router, http.MethodPost, "/api/orders", gin.H{
		"recipientId":    "recipient-1",
		"donationId":     donation.ID.String(),
		"recipientEmail": "recipient@example.com",
	})

	require.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "CONFLICT", resp.Code)
}

func TestHandleClaimDonationBadID(t *testing.T) {
	router := newTestRouter(t, new(mockDonationRepo), new(mockOrderRepo))

	rec := performJSON(router, http.MethodPost, "/api/orders", gin.H{
		"recipientId":    "recipient-1",
		"donationId":     "not-a-uuid",
		"recipientEmail": "recipient@example.com",
	})

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleCompleteDonationInvalidStatus(t *testing.T) {
	router := newTestRouter(t, new(mockDonationRepo), new(mockOrderRepo))

	rec := performJSON(router, http.MethodPatch, "/api/donations/status/"+uuid.NewString(), gin.H{
		"status": "expired",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSubmitRatingConflict(t *testing.T) {
	donation := &models.Donation{
		ID:          uuid.New(),
		Status:      models.DonationStatusCompleted,
		DonorRating: 5,
	}
	donations := new(mockDonationRepo)
	donations.On("SetRating", mock.Anything, donation.ID, models.RoleDonor, 3).
		Return(repository.ErrStaleStatus)
	donations.On("GetByID", mock.Anything, donation.ID).Return(donation, nil)

	router := newTestRouter(t, donations, new(mockOrderRepo))

	rec := performJSON(router, http.MethodPatch, "/api/ratings/"+donation.ID.String(), gin.H{
		"rating": 3,
		"role":   "donor",
	})

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleListAvailableDatabaseDown(t *testing.T) {
	donations := new(mockDonationRepo)
	donations.On("FindAvailable", mock.Anything).
		Return(nil, errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"))

	router := newTestRouter(t, donations, new(mockOrderRepo))

	rec := performJSON(router, http.MethodGet, "/api/donations", nil)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "SERVICE_UNAVAILABLE", resp.Code)
	require.NotContains(t, resp.Error, "127.0.0.1")
}

func TestHandleRecipientHistory(t *testing.T) {
	order := models.Order{
		ID:          uuid.New(),
		RecipientID: "recipient-1",
		DonationID:  uuid.New(),
	}
	donations := new(mockDonationRepo)
	orders := new(mockOrderRepo)

	orders.On("FindByRecipient", mock.Anything, "recipient-1").
		Return([]models.Order{order}, nil)
	donations.On("GetByID", mock.Anything, order.DonationID).
		Return(nil, repository.ErrNotFound)

	router := newTestRouter(t, donations, orders)

	rec := performJSON(router, http.MethodGet, "/api/orders/recipient/recipient-1", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var entries []service.RecipientOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	require.Equal(t, "Unknown/Missing Food", entries[0].FoodName)
}
