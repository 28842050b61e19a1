package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"example.com/foodbridge/services/donation/internal/messaging"
	"example.com/foodbridge/services/donation/internal/models"
)

// enqueueEmail hands a notification to the queue. Failures are logged and
// swallowed: notification delivery never blocks or fails a transition.
func (s *DonationService) enqueueEmail(ctx context.Context, email messaging.EmailMessage) {
	if s.bus == nil {
		return
	}
	if err := s.bus.SendMessage(ctx, email); err != nil {
		log.Error().Err(err).Str("to", email.To).Str("subject", email.Subject).
			Msg("Failed to enqueue notification email")
		return
	}
	s.incrementCounter("notifications_enqueued")
}

func donationConfirmationEmail(donation *models.Donation) messaging.EmailMessage {
	return messaging.EmailMessage{
		To:      donation.DonorEmail,
		Subject: fmt.Sprintf("✅ Donation Confirmation: %s Placed Successfully!", donation.FoodName),
		Body: fmt.Sprintf(
			"<p>Thank you for your generous donation of <strong>%s</strong>. Your item is now available for claim.</p>",
			donation.FoodName,
		),
	}
}

func claimRecipientEmail(donation *models.Donation, recipientEmail string) messaging.EmailMessage {
	return messaging.EmailMessage{
		To:      recipientEmail,
		Subject: fmt.Sprintf("🍽️ CONFIRMED: You have claimed %s!", donation.FoodName),
		Body: fmt.Sprintf(
			"<p>You claimed <strong>%s</strong>. Contact the donor (%s) to arrange pickup at: <strong>%s</strong></p>",
			donation.FoodName, donation.DonorPhoneNumber, donation.Location,
		),
	}
}

func claimDonorEmail(donation *models.Donation, recipientEmail string) messaging.EmailMessage {
	return messaging.EmailMessage{
		To:      donation.DonorEmail,
		Subject: fmt.Sprintf("🎉 CLAIMED: Your donation of %s has been claimed!", donation.FoodName),
		Body: fmt.Sprintf(
			"<p>Your donation of <strong>%s</strong> has been successfully claimed by %s.</p>",
			donation.FoodName, recipientEmail,
		),
	}
}
