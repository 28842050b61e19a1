package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"example.com/foodbridge/services/donation/internal/models"
)

// DonationRepository defines the interface for donation data access
type DonationRepository interface {
	Create(ctx context.Context, donation *models.Donation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Donation, error)
	FindAvailable(ctx context.Context) ([]models.Donation, error)
	FindByDonor(ctx context.Context, donorID string) ([]models.Donation, error)
	ClaimAvailable(ctx context.Context, donationID uuid.UUID, order *models.Order) error
	CompleteClaimed(ctx context.Context, donationID uuid.UUID) error
	SetRating(ctx context.Context, donationID uuid.UUID, role models.RaterRole, value int) error
}

// donationRepository implements DonationRepository
type donationRepository struct {
	db *gorm.DB
}

// NewDonationRepository creates a new donation repository
func NewDonationRepository(db *gorm.DB) DonationRepository {
	return &donationRepository{db: db}
}

// Create inserts a new donation
func (r *donationRepository) Create(ctx context.Context, donation *models.Donation) error {
	if err := r.db.WithContext(ctx).Create(donation).Error; err != nil {
		return errors.Wrap(err, "failed to create donation")
	}
	return nil
}

// GetByID gets a donation by ID
func (r *donationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	var donation models.Donation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&donation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get donation")
	}
	return &donation, nil
}

// FindAvailable returns all available donations, newest first
func (r *donationRepository) FindAvailable(ctx context.Context) ([]models.Donation, error) {
	var donations []models.Donation
	err := r.db.WithContext(ctx).
		Where("status = ?", models.DonationStatusAvailable).
		Order("created_at DESC").
		Find(&donations).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list available donations")
	}
	return donations, nil
}

// FindByDonor returns all donations authored by the donor, newest first
func (r *donationRepository) FindByDonor(ctx context.Context, donorID string) ([]models.Donation, error) {
	var donations []models.Donation
	err := r.db.WithContext(ctx).
		Where("donor_id = ?", donorID).
		Order("created_at DESC").
		Find(&donations).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list donor donations")
	}
	return donations, nil
}

// ClaimAvailable flips the donation to claimed and records the order in one
// transaction. The status flip is conditional on the stored status still
// being "available" at apply time, so concurrent claims cannot both win.
func (r *donationRepository) ClaimAvailable(ctx context.Context, donationID uuid.UUID, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Donation{}).
			Where("id = ? AND status = ?", donationID, models.DonationStatusAvailable).
			Update("status", models.DonationStatusClaimed)
		if res.Error != nil {
			return errors.Wrap(res.Error, "failed to mark donation claimed")
		}
		if res.RowsAffected == 0 {
			return ErrStaleStatus
		}

		if err := tx.Create(order).Error; err != nil {
			return errors.Wrap(err, "failed to create order")
		}
		return nil
	})
}

// CompleteClaimed flips the donation from claimed to completed. Any other
// current status leaves the row untouched and returns ErrStaleStatus.
func (r *donationRepository) CompleteClaimed(ctx context.Context, donationID uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.Donation{}).
		Where("id = ? AND status = ?", donationID, models.DonationStatusClaimed).
		Update("status", models.DonationStatusCompleted)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to mark donation completed")
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

// SetRating writes one rating slot. The update requires the donation to be
// completed and the slot to still be empty, making each slot write-once.
func (r *donationRepository) SetRating(ctx context.Context, donationID uuid.UUID, role models.RaterRole, value int) error {
	column := "donor_rating"
	if role == models.RoleRecipient {
		column = "recipient_rating"
	}

	res := r.db.WithContext(ctx).Model(&models.Donation{}).
		Where("id = ? AND status = ?", donationID, models.DonationStatusCompleted).
		Where(column+" = 0").
		Update(column, value)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to set rating")
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}
