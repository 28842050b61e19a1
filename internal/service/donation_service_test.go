package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/foodbridge/services/donation/internal/messaging"
	"example.com/foodbridge/services/donation/internal/models"
	"example.com/foodbridge/services/donation/internal/repository"
)

// Mock repositories for testing

type MockDonationRepository struct {
	mock.Mock
}

func (m *MockDonationRepository) Create(ctx context.Context, donation *models.Donation) error {
	args := m.Called(ctx, donation)
	return args.Error(0)
}

func (m *MockDonationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Donation), args.Error(1)
}

func (m *MockDonationRepository) FindAvailable(ctx context.Context) ([]models.Donation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Donation), args.Error(1)
}

func (m *MockDonationRepository) FindByDonor(ctx context.Context, donorID string) ([]models.Donation, error) {
	args := m.Called(ctx, donorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Donation), args.Error(1)
}

func (m *MockDonationRepository) ClaimAvailable(ctx context.Context, donationID uuid.UUID, order *models.Order) error {
	args := m.Called(ctx, donationID, order)
	return args.Error(0)
}

func (m *MockDonationRepository) CompleteClaimed(ctx context.Context, donationID uuid.UUID) error {
	args := m.Called(ctx, donationID)
	return args.Error(0)
}

func (m *MockDonationRepository) SetRating(ctx context.Context, donationID uuid.UUID, role models.RaterRole, value int) error {
	args := m.Called(ctx, donationID, role, value)
	return args.Error(0)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByRecipient(ctx context.Context, recipientID string) ([]models.Order, error) {
	args := m.Called(ctx, recipientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

type MockServiceBus struct {
	mock.Mock
}

func (m *MockServiceBus) SendMessage(ctx context.Context, body interface{}) error {
	args := m.Called(ctx, body)
	return args.Error(0)
}

func (m *MockServiceBus) ProcessMessages(ctx context.Context, handler messaging.MessageHandler) error {
	args := m.Called(ctx, handler)
	return args.Error(0)
}

func (m *MockServiceBus) Close() error {
	args := m.Called()
	return args.Error(0)
}

func floatPtr(v float64) *float64 {
	return &v
}

func validPublishInput() PublishDonationInput {
	return PublishDonationInput{
		DonorID:          "donor-1",
		FoodName:         "Rice",
		Category:         "Grain",
		Quantity:         "5kg",
		Location:         "Community Hall, Main Street",
		Latitude:         floatPtr(12.9716),
		Longitude:        floatPtr(77.5946),
		DonorPhoneNumber: "+911234567890",
		DonorEmail:       "donor@example.com",
	}
}

func availableDonation() *models.Donation {
	input := validPublishInput()
	return &models.Donation{
		ID:               uuid.New(),
		DonorID:          input.DonorID,
		FoodName:         input.FoodName,
		Category:         input.Category,
		Quantity:         input.Quantity,
		Location:         input.Location,
		Latitude:         input.Latitude,
		Longitude:        input.Longitude,
		DonorPhoneNumber: input.DonorPhoneNumber,
		DonorEmail:       input.DonorEmail,
		Status:           models.DonationStatusAvailable,
	}
}

func emailTo(address string) interface{} {
	return mock.MatchedBy(func(body interface{}) bool {
		email, ok := body.(messaging.EmailMessage)
		return ok && email.To == address
	})
}

func TestPublishDonation(t *testing.T) {
	mockDonations := new(MockDonationRepository)
	mockBus := new(MockServiceBus)

	mockDonations.On("Create", mock.Anything, mock.AnythingOfType("*models.Donation")).Return(nil)
	mockBus.On("SendMessage", mock.Anything, emailTo("donor@example.com")).Return(nil)

	svc := NewDonationService(mockDonations, nil, nil, nil, mockBus, nil, nil)

	donation, err := svc.PublishDonation(context.Background(), validPublishInput())

	require.NoError(t, err)
	require.NotNil(t, donation)
	require.NotEqual(t, uuid.Nil, donation.ID)
	require.Equal(t, models.DonationStatusAvailable, donation.Status)
	require.Equal(t, 0, donation.DonorRating)
	require.Equal(t, 0, donation.RecipientRating)

	mockDonations.AssertExpectations(t)
	mockBus.AssertExpectations(t)
}

func TestPublishDonationMissingFields(t *testing.T) {
	mockDonations := new(MockDonationRepository)
	svc := NewDonationService(mockDonations, nil, nil, nil, nil, nil, nil)

	input := validPublishInput()
	input.FoodName = ""

	_, err := svc.PublishDonation(context.Background(), input)

	require.ErrorIs(t, err, ErrMissingFields)
	mockDonations.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPublishDonationMissingCoordinates(t *testing.T) {
	svc := NewDonationService(new(MockDonationRepository), nil, nil, nil, nil, nil, nil)

	input := validPublishInput()
	input.Latitude = nil

	_, err := svc.PublishDonation(context.Background(), input)

	require.ErrorIs(t, err, ErrMissingCoordinates)
}

func TestPublishDonationEmailFailureIsSwallowed(t *testing.T) {
	mockDonations := new(MockDonationRepository)
	mockBus := new(MockServiceBus)

	mockDonations.On("Create", mock.Anything, mock.AnythingOfType("*models.Donation")).Return(nil)
	mockBus.On("SendMessage", mock.Anything, mock.Anything).Return(context.DeadlineExceeded)

	svc := NewDonationService(mockDonations, nil, nil, nil, mockBus, nil, nil)

	donation, err := svc.PublishDonation(context.Background(), validPublishInput())

	require.NoError(t, err)
	require.NotNil(t, donation)
}

func TestClaimDonation(t *testing.T) {
	donation := availableDonation()
	mockDonations := new(MockDonationRepository)
	mockBus := new(MockServiceBus)

	mockDonations.On("GetByID", mock.Anything, donation.ID).Return(donation, nil)
	mockDonations.On("ClaimAvailable", mock.Anything, donation.ID, mock.AnythingOfType("*models.Order")).Return(nil)
	mockBus.On("SendMessage", mock.Anything, emailTo("recipient@example.com")).Return(nil)
	mockBus.On("SendMessage", mock.Anything, emailTo("donor@example.com")).Return(nil)

	svc := NewDonationService(mockDonations, nil, nil, nil, mockBus, nil, nil)

	order, err := svc.ClaimDonation(context.Background(), "recipient-1", donation.ID, "recipient@example.com")

	require.NoError(t, err)
	require.NotNil(t, order)
	require.Equal(t, donation.ID, order.DonationID)
	require.Equal(t, "recipient-1", order.RecipientID)
	require.Equal(t, "recipient@example.com", order.RecipientEmail)

	mockDonations.AssertExpectations(t)
	mockBus.AssertExpectations(t)
}

func TestClaimDonationNotFound(t *testing.T) {
	mockDonations := new(MockDonationRepository)
	donationID := uuid.New()

	mockDonations.On("GetByID", mock.Anything, donationID).Return(nil, repository.ErrNotFound)

	svc := NewDonationService(mockDonations, nil, nil, nil, nil, nil, nil)

	_, err := svc.ClaimDonation(context.Background(), "recipient-1", donationID, "recipient@example.com")

	require.ErrorIs(t, err, ErrDonationNotFound)
}

func TestClaimDonationAlreadyClaimed(t *testing.T) {
	donation := availableDonation()
	donation.Status = models.DonationStatusClaimed
	mockDonations := new(MockDonationRepository)

	mockDonations.On("GetByID", mock.Anything, donation.ID).Return(donation, nil)

	svc := NewDonationService(mockDonations, nil, nil, nil, nil, nil, nil)

	_, err := svc.ClaimDonation(context.Background(), "recipient-1", donation.ID, "recipient@example.com")

	require.ErrorIs(t, err, ErrNotAvailable)
	mockDonations.AssertNotCalled(t, "ClaimAvailable", mock.Anything, mock.Anything, mock.Anything)
}

// A claim that passes the initial read can still lose the conditional
// update to a concurrent claim; it must surface as a conflict.
func TestClaimDonationLosesRace(t *testing.T) {
	donation := availableDonation()
	mockDonations := new(MockDonationRepository)
	mockBus := new(MockServiceBus)

	mockDonations.On("GetByID", mock.Anything, donation.ID).Return(donation, nil)
	mockDonations.On("ClaimAvailable", mock.Anything, donation.ID, mock.Anything).Return(repository.ErrStaleStatus)

	svc := NewDonationService(mockDonations, nil, nil, nil, mockBus, nil, nil)

	_, err := svc.ClaimDonation(context.Background(), "recipient-1", donation.ID, "recipient@example.com")

	require.ErrorIs(t, err, ErrNotAvailable)
	mockBus.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything)
}

func TestCompleteDonation(t *testing.T) {
	donationID := uuid.New()
	mockDonations := new(MockDonationRepository)

	mockDonations.On("CompleteClaimed", mock.Anything, donationID).Return(nil)

	svc := NewDonationService(mockDonations, nil, nil, nil, nil, nil, nil)

	err := svc.CompleteDonation(context.Background(), donationID, "completed")

	require.NoError(t, err)
	mockDonations.AssertExpectations(t)
}

func TestCompleteDonationInvalidTarget(t *testing.T) {
	mockDonations := new(MockDonationRepository)
	svc := NewDonationService(mockDonations, nil, nil, nil, nil, nil, nil)

	err := svc.CompleteDonation(context.Background(), uuid.New(), "cancelled")

	require.ErrorIs(t, err, ErrInvalidStatus)
	mockDonations.AssertNotCalled(t, "CompleteClaimed", mock.Anything, mock.Anything)
}

func TestCompleteDonationNotClaimed(t *testing.T) {
	donation := availableDonation()
	donation.Status = models.DonationStatusCompleted
	mockDonations := new(MockDonationRepository)

	mockDonations.On("CompleteClaimed", mock.Anything, donation.ID).Return(repository.ErrStaleStatus)
	mockDonations.On("GetByID", mock.Anything, donation.ID).Return(donation, nil)

	svc := NewDonationService(mockDonations, nil, nil, nil, nil, nil, nil)

	err := svc.CompleteDonation(context.Background(), donation.ID, "completed")

	require.ErrorIs(t, err, ErrNotClaimed)
}

func TestCompleteDonationNotFound(t *testing.T) {
	donationID := uuid.New()
	mockDonations := new(MockDonationRepository)

	mockDonations.On("CompleteClaimed", mock.Anything, donationID).Return(repository.ErrStaleStatus)
	mockDonations.On("GetByID", mock.Anything, donationID).Return(nil, repository.ErrNotFound)

	svc := NewDonationService(mockDonations, nil, nil, nil, nil, nil, nil)

	err := svc.CompleteDonation(context.Background(), donationID, "completed")

	require.ErrorIs(t, err, ErrDonationNotFound)
}

func TestSubmitRating(t *testing.T) {
	donationID := uuid.New()
	mockDonations := new(MockDonationRepository)

	mockDonations.On("SetRating", mock.Anything, donationID, models.RoleDonor, 5).Return(nil)

	svc := NewDonationService(mockDonations, nil, nil, nil, nil, nil, nil)

	err := svc.SubmitRating(context.Background(), donationID, models.RoleDonor, 5)

	require.NoError(t, err)
	mockDonations.AssertExpectations(t)
}

func TestSubmitRatingValidation(t *testing.T) {
	svc := NewDonationService(new(MockDonationRepository), nil, nil, nil, nil, nil, nil)
	donationID := uuid.New()

	tests := []struct {
		name    string
		role    models.RaterRole
		value   int
		wantErr error
	}{
		{name: "zero rating", role: models.RoleDonor, value: 0, wantErr: ErrInvalidRating},
		{name: "rating above range", role: models.RoleRecipient, value: 6, wantErr: ErrInvalidRating},
		{name: "unknown role", role: models.RaterRole("admin"), value: 3, wantErr: ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.SubmitRating(context.Background(), donationID, tt.role, tt.value)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSubmitRatingWriteOnce(t *testing.T) {
	donation := availableDonation()
	donation.Status = models.DonationStatusCompleted
	donation.DonorRating = 5
	mockDonations := new(MockDonationRepository)

	mockDonations.On("SetRating", mock.Anything, donation.ID, models.RoleDonor, 2).Return(repository.ErrStaleStatus)
	mockDonations.On("GetByID", mock.Anything, donation.ID).Return(donation, nil)

	svc := NewDonationService(mockDonations, nil, nil, nil, nil, nil, nil)

	err := svc.SubmitRating(context.Background(), donation.ID, models.RoleDonor, 2)

	require.ErrorIs(t, err, ErrAlreadyRated)
}

func TestSubmitRatingNotCompleted(t *testing.T) {
	donation := availableDonation()
	donation.Status = models.DonationStatusClaimed
	mockDonations := new(MockDonationRepository)

	mockDonations.On("SetRating", mock.Anything, donation.ID, models.RoleRecipient, 4).Return(repository.ErrStaleStatus)
	mockDonations.On("GetByID", mock.Anything, donation.ID).Return(donation, nil)

	svc := NewDonationService(mockDonations, nil, nil, nil, nil, nil, nil)

	err := svc.SubmitRating(context.Background(), donation.ID, models.RoleRecipient, 4)

	require.ErrorIs(t, err, ErrNotCompleted)
}

// Infrastructure failures surface as the retriable dependency kind, never
// as an unclassified error.
func TestDatabaseOutageIsDependencyError(t *testing.T) {
	outage := errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

	t.Run("list available", func(t *testing.T) {
		mockDonations := new(MockDonationRepository)
		mockDonations.On("FindAvailable", mock.Anything).Return(nil, outage)

		svc := NewDonationService(mockDonations, nil, nil, nil, nil, nil, nil)

		_, err := svc.ListAvailable(context.Background())
		require.ErrorIs(t, err, ErrDependency)
	})

	t.Run("publish", func(t *testing.T) {
		mockDonations := new(MockDonationRepository)
		mockDonations.On("Create", mock.Anything, mock.Anything).Return(outage)

		svc := NewDonationService(mockDonations, nil, nil, nil, nil, nil, nil)

		_, err := svc.PublishDonation(context.Background(), validPublishInput())
		require.ErrorIs(t, err, ErrDependency)
	})

	t.Run("claim", func(t *testing.T) {
		donationID := uuid.New()
		mockDonations := new(MockDonationRepository)
		mockDonations.On("GetByID", mock.Anything, donationID).Return(nil, outage)

		svc := NewDonationService(mockDonations, nil, nil, nil, nil, nil, nil)

		_, err := svc.ClaimDonation(context.Background(), "recipient-1", donationID, "recipient@example.com")
		require.ErrorIs(t, err, ErrDependency)
	})
}

func TestListAvailable(t *testing.T) {
	first := availableDonation()
	second := availableDonation()
	mockDonations := new(MockDonationRepository)

	mockDonations.On("FindAvailable", mock.Anything).Return([]models.Donation{*first, *second}, nil)

	svc := NewDonationService(mockDonations, nil, nil, nil, nil, nil, nil)

	donations, err := svc.ListAvailable(context.Background())

	require.NoError(t, err)
	require.Len(t, donations, 2)
	require.Equal(t, first.ID, donations[0].ID)
}
