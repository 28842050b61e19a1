package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"example.com/foodbridge/services/donation/internal/cache"
	"example.com/foodbridge/services/donation/internal/messaging"
	"example.com/foodbridge/services/donation/internal/metrics"
	"example.com/foodbridge/services/donation/internal/models"
	"example.com/foodbridge/services/donation/internal/repository"
	"example.com/foodbridge/services/donation/internal/search"
	"example.com/foodbridge/services/donation/internal/tracing"
)

// availableCacheTTL bounds staleness of the cached listing; claims and new
// donations invalidate it eagerly anyway.
const availableCacheTTL = 30 * time.Second

// DonationService owns the donation lifecycle: publishing, the claim and
// completion transitions, ratings and the history views. All durable state
// lives in the database; the service itself is stateless between calls.
type DonationService struct {
	donations repository.DonationRepository
	orders    repository.OrderRepository
	cache     *cache.RedisCache
	search    *search.ElasticClient
	bus       messaging.ServiceBusClient
	metrics   *metrics.Metrics
	tracer    tracing.Tracer
}

// NewDonationService creates a new donation service. Cache, search, bus,
// metrics and tracer are optional; a nil value disables that concern.
func NewDonationService(
	donations repository.DonationRepository,
	orders repository.OrderRepository,
	redisCache *cache.RedisCache,
	elasticClient *search.ElasticClient,
	bus messaging.ServiceBusClient,
	metricsCollector *metrics.Metrics,
	tracer tracing.Tracer,
) *DonationService {
	return &DonationService{
		donations: donations,
		orders:    orders,
		cache:     redisCache,
		search:    elasticClient,
		bus:       bus,
		metrics:   metricsCollector,
		tracer:    tracer,
	}
}

// PublishDonationInput carries the fields a donor submits with a new item
type PublishDonationInput struct {
	DonorID          string
	FoodName         string
	Category         string
	Quantity         string
	Location         string
	Latitude         *float64
	Longitude        *float64
	DonorPhoneNumber string
	DonorEmail       string
}

func (in PublishDonationInput) validate() error {
	if in.FoodName == "" || in.Category == "" || in.Quantity == "" ||
		in.Location == "" || in.DonorPhoneNumber == "" || in.DonorEmail == "" {
		return ErrMissingFields
	}
	// Coordinates come from the geocoding step on the client; a donation
	// without both of them cannot be placed on the map.
	if in.Latitude == nil || in.Longitude == nil {
		return ErrMissingCoordinates
	}
	return nil
}

// PublishDonation creates a new donation in state "available" and queues a
// confirmation email to the donor. The email and the search indexing are
// both best-effort and never fail the publish.
func (s *DonationService) PublishDonation(ctx context.Context, input PublishDonationInput) (*models.Donation, error) {
	txn := s.startTransaction("publish-donation")
	defer s.endTransaction(txn)

	if err := input.validate(); err != nil {
		s.recordError("publish_donation", txn, err)
		return nil, err
	}

	donation := &models.Donation{
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

	if err := s.donations.Create(ctx, donation); err != nil {
		s.recordError("publish_donation", txn, err)
		return nil, dependencyError(err)
	}

	log.Info().
		Str("donation_id", donation.ID.String()).
		Str("food_name", donation.FoodName).
		Msg("Donation published")

	s.indexDonation(ctx, donation)
	s.invalidateAvailableCache(ctx)
	s.enqueueEmail(ctx, donationConfirmationEmail(donation))
	s.recordSuccess("publish_donation")
	s.incrementCounter("donations_published")

	return donation, nil
}

// ClaimDonation atomically moves an available donation to "claimed" and
// records the recipient's order. Exactly one of N concurrent claims on the
// same donation succeeds; the rest get ErrNotAvailable.
func (s *DonationService) ClaimDonation(ctx context.Context, recipientID string, donationID uuid.UUID, recipientEmail string) (*models.Order, error) {
	txn := s.startTransaction("claim-donation")
	defer s.endTransaction(txn)

	donation, err := s.donations.GetByID(ctx, donationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDonationNotFound
		}
		s.recordError("claim_donation", txn, err)
		return nil, dependencyError(err)
	}
	if donation.Status != models.DonationStatusAvailable {
		return nil, ErrNotAvailable
	}

	order := &models.Order{
		ID:             uuid.New(),
		RecipientID:    recipientID,
		DonationID:     donationID,
		RecipientEmail: recipientEmail,
	}

	// The conditional update inside ClaimAvailable is the authority; the
	// read above only classifies errors and feeds the notification text.
	if err := s.donations.ClaimAvailable(ctx, donationID, order); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, ErrNotAvailable
		}
		s.recordError("claim_donation", txn, err)
		return nil, dependencyError(err)
	}

	log.Info().
		Str("donation_id", donationID.String()).
		Str("recipient_id", recipientID).
		Msg("Donation claimed")

	s.updateIndexedStatus(ctx, donationID, models.DonationStatusClaimed)
	s.invalidateAvailableCache(ctx)
	s.enqueueEmail(ctx, claimRecipientEmail(donation, recipientEmail))
	s.enqueueEmail(ctx, claimDonorEmail(donation, recipientEmail))
	s.recordSuccess("claim_donation")
	s.incrementCounter("donations_claimed")

	return order, nil
}

// CompleteDonation marks a claimed donation as picked up. The only legal
// target status is "completed".
func (s *DonationService) CompleteDonation(ctx context.Context, donationID uuid.UUID, targetStatus string) error {
	txn := s.startTransaction("complete-donation")
	defer s.endTransaction(txn)

	if targetStatus != string(models.DonationStatusCompleted) {
		return ErrInvalidStatus
	}

	if err := s.donations.CompleteClaimed(ctx, donationID); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return s.classifyCompleteConflict(ctx, donationID)
		}
		s.recordError("complete_donation", txn, err)
		return dependencyError(err)
	}

	log.Info().Str("donation_id", donationID.String()).Msg("Donation marked as completed")

	s.updateIndexedStatus(ctx, donationID, models.DonationStatusCompleted)
	s.recordSuccess("complete_donation")
	s.incrementCounter("donations_completed")

	return nil
}

// classifyCompleteConflict decides whether a failed completion was a missing
// donation or a wrong current status
func (s *DonationService) classifyCompleteConflict(ctx context.Context, donationID uuid.UUID) error {
	if _, err := s.donations.GetByID(ctx, donationID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDonationNotFound
		}
		return dependencyError(err)
	}
	return ErrNotClaimed
}

// SubmitRating records one role's 1-5 feedback on a completed donation.
// Each slot is write-once: a second submission for the same role conflicts.
func (s *DonationService) SubmitRating(ctx context.Context, donationID uuid.UUID, role models.RaterRole, value int) error {
	txn := s.startTransaction("submit-rating")
	defer s.endTransaction(txn)

	if !role.Valid() {
		return ErrInvalidRole
	}
	if value < 1 || value > 5 {
		return ErrInvalidRating
	}

	if err := s.donations.SetRating(ctx, donationID, role, value); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return s.classifyRatingConflict(ctx, donationID, role)
		}
		s.recordError("submit_rating", txn, err)
		return dependencyError(err)
	}

	log.Info().
		Str("donation_id", donationID.String()).
		Str("role", string(role)).
		Int("rating", value).
		Msg("Rating submitted")

	s.recordSuccess("submit_rating")
	s.incrementCounter("ratings_submitted")

	return nil
}

func (s *DonationService) classifyRatingConflict(ctx context.Context, donationID uuid.UUID, role models.RaterRole) error {
	donation, err := s.donations.GetByID(ctx, donationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDonationNotFound
		}
		return dependencyError(err)
	}
	if donation.Status != models.DonationStatusCompleted {
		return ErrNotCompleted
	}
	return ErrAlreadyRated
}

// ListAvailable returns every donation still open for claiming, newest
// first, served from cache when possible
func (s *DonationService) ListAvailable(ctx context.Context) ([]models.Donation, error) {
	txn := s.startTransaction("list-available")
	defer s.endTransaction(txn)

	if s.cache != nil {
		var cached []models.Donation
		if err := s.cache.Get(ctx, cache.AvailableDonationsKey(), &cached); err == nil {
			return cached, nil
		}
	}

	donations, err := s.donations.FindAvailable(ctx)
	if err != nil {
		s.recordError("list_available", txn, err)
		return nil, dependencyError(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.AvailableDonationsKey(), donations, availableCacheTTL); err != nil {
			log.Warn().Err(err).Msg("Failed to cache available donations")
		}
	}

	return donations, nil
}

// WarmAvailableCache refreshes the cached listing; the worker runs this on
// a schedule so cold caches stay rare
func (s *DonationService) WarmAvailableCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	donations, err := s.donations.FindAvailable(ctx)
	if err != nil {
		return err
	}

	return s.cache.Set(ctx, cache.AvailableDonationsKey(), donations, availableCacheTTL)
}

// SearchDonations finds available donations matching the query text
func (s *DonationService) SearchDonations(ctx context.Context, query string) ([]search.DonationDocument, error) {
	txn := s.startTransaction("search-donations")
	defer s.endTransaction(txn)

	if s.search == nil {
		return []search.DonationDocument{}, nil
	}

	documents, err := s.search.SearchDonations(ctx, query)
	if err != nil {
		s.recordError("search_donations", txn, err)
		return nil, dependencyError(err)
	}

	return documents, nil
}

func (s *DonationService) indexDonation(ctx context.Context, donation *models.Donation) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexDonation(ctx, donation); err != nil {
		log.Warn().Err(err).Str("donation_id", donation.ID.String()).Msg("Failed to index donation")
	}
}

func (s *DonationService) updateIndexedStatus(ctx context.Context, donationID uuid.UUID, status models.DonationStatus) {
	if s.search == nil {
		return
	}
	if err := s.search.UpdateDonationStatus(ctx, donationID.String(), status); err != nil {
		log.Warn().Err(err).Str("donation_id", donationID.String()).Msg("Failed to update indexed status")
	}
}

func (s *DonationService) invalidateAvailableCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.AvailableDonationsKey()); err != nil {
		log.Warn().Err(err).Msg("Failed to invalidate available-donations cache")
	}
}

func (s *DonationService) startTransaction(name string) *newrelic.Transaction {
	if s.tracer == nil {
		return nil
	}
	return s.tracer.StartTransaction(name)
}

func (s *DonationService) endTransaction(txn *newrelic.Transaction) {
	if s.tracer == nil {
		return
	}
	s.tracer.EndTransaction(txn)
}

func (s *DonationService) recordError(operation string, txn *newrelic.Transaction, err error) {
	if s.tracer != nil {
		s.tracer.RecordError(txn, err)
	}
	if s.metrics != nil {
		s.metrics.RecordError(operation)
	}
}

func (s *DonationService) recordSuccess(operation string) {
	if s.metrics != nil {
		s.metrics.RecordSuccess(operation)
	}
}

func (s *DonationService) incrementCounter(name string) {
	if s.metrics != nil {
		s.metrics.IncrementCounter(name)
	}
}
