package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// DonationStatus is the lifecycle state of a donation. Transitions are
// monotonic: available -> claimed -> completed.
type DonationStatus string

const (
	DonationStatusAvailable DonationStatus = "available"
	DonationStatusClaimed   DonationStatus = "claimed"
	DonationStatusCompleted DonationStatus = "completed"

	// DonationStatusUnknown is never stored; recipient history reports it
	// when an order references a donation that no longer exists.
	DonationStatusUnknown DonationStatus = "unknown"
)

// RaterRole identifies which side of a pickup is submitting a rating.
type RaterRole string

const (
	RoleDonor     RaterRole = "donor"
	RoleRecipient RaterRole = "recipient"
)

// Valid reports whether the role is one of the two known roles.
func (r RaterRole) Valid() bool {
	return r == RoleDonor || r == RoleRecipient
}

// User maps an identity-provider subject to its chosen role. The subject is
// issued by the external identity provider and trusted as given.
type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
	Role      RaterRole `gorm:"type:varchar(16);not null" json:"role"`
}

// Donation represents one unit of donated food with its pickup metadata.
// Rating fields are 0 until the corresponding role submits a value in 1..5.
type Donation struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt        time.Time      `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DonorID          string         `gorm:"not null;index" json:"donorId"`
	FoodName         string         `gorm:"not null" json:"foodName"`
	Category         string         `gorm:"not null" json:"category"`
	Quantity         string         `gorm:"not null" json:"quantity"`
	Location         string         `gorm:"not null" json:"location"`
	Latitude         *float64       `json:"latitude"`
	Longitude        *float64       `json:"longitude"`
	DonorPhoneNumber string         `gorm:"not null" json:"donorPhoneNumber"`
	DonorEmail       string         `gorm:"not null" json:"donorEmail"`
	Status           DonationStatus `gorm:"type:varchar(16);not null;default:'available';index" json:"status"`
	DonorRating      int            `gorm:"not null;default:0" json:"donorRating"`
	RecipientRating  int            `gorm:"not null;default:0" json:"recipientRating"`
	Orders           []Order        `gorm:"foreignKey:DonationID" json:"-"`
}

// Order records a recipient's claim on a donation. It is written once,
// together with the available -> claimed transition, and never mutated.
// The donation's current status is always read live, never copied here.
type Order struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
	RecipientID    string    `gorm:"not null;index" json:"recipientId"`
	DonationID     uuid.UUID `gorm:"type:uuid;not null" json:"donationId"`
	RecipientEmail string    `gorm:"not null" json:"recipientEmail"`
}

// SetupModels configures GORM models and runs migrations
func SetupModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&User{},
		&Donation{},
		&Order{},
	)
	if err != nil {
		return errors.Wrap(err, "failed to run auto migrations")
	}

	return nil
}
