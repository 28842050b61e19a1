package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"example.com/foodbridge/services/donation/internal/models"
)

// historyLookupConcurrency caps parallel donation lookups per history query
const historyLookupConcurrency = 8

// Placeholder values reported when an order references a donation that no
// longer exists. A single broken reference must not abort the whole view.
const (
	placeholderFoodName = "Unknown/Missing Food"
	placeholderCategory = "Unknown Category"
	placeholderQuantity = "Unknown Quantity"
)

// RecipientOrder is one entry of a recipient's history: the immutable order
// joined live against its donation's current state.
type RecipientOrder struct {
	models.Order
	FoodName        string                `json:"foodName"`
	Category        string                `json:"category"`
	Quantity        string                `json:"quantity"`
	Status          models.DonationStatus `json:"status"`
	DonorRating     int                   `json:"donorRating"`
	RecipientRating int                   `json:"recipientRating"`
}

// DonorHistory returns every donation the donor published, regardless of
// status, newest first. Status and both rating slots ride on the rows.
func (s *DonationService) DonorHistory(ctx context.Context, donorID string) ([]models.Donation, error) {
	txn := s.startTransaction("donor-history")
	defer s.endTransaction(txn)

	donations, err := s.donations.FindByDonor(ctx, donorID)
	if err != nil {
		s.recordError("donor_history", txn, err)
		return nil, dependencyError(err)
	}

	return donations, nil
}

// RecipientHistory returns the recipient's orders, each joined against its
// donation. Lookups run concurrently; a missing or unreadable donation
// degrades that entry to placeholders instead of failing the batch.
func (s *DonationService) RecipientHistory(ctx context.Context, recipientID string) ([]RecipientOrder, error) {
	txn := s.startTransaction("recipient-history")
	defer s.endTransaction(txn)

	orders, err := s.orders.FindByRecipient(ctx, recipientID)
	if err != nil {
		s.recordError("recipient_history", txn, err)
		return nil, dependencyError(err)
	}

	entries := make([]RecipientOrder, len(orders))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(historyLookupConcurrency)

	for i, order := range orders {
		i, order := i, order
		g.Go(func() error {
			entries[i] = s.joinOrder(gctx, order)
			return nil
		})
	}

	// Join errors degrade to placeholders, so the group never fails
	_ = g.Wait()

	return entries, nil
}

func (s *DonationService) joinOrder(ctx context.Context, order models.Order) RecipientOrder {
	entry := RecipientOrder{
		Order:    order,
		FoodName: placeholderFoodName,
		Category: placeholderCategory,
		Quantity: placeholderQuantity,
		Status:   models.DonationStatusUnknown,
	}

	donation, err := s.donations.GetByID(ctx, order.DonationID)
	if err != nil {
		return entry
	}

	entry.FoodName = donation.FoodName
	entry.Category = donation.Category
	entry.Quantity = donation.Quantity
	entry.Status = donation.Status
	entry.DonorRating = donation.DonorRating
	entry.RecipientRating = donation.RecipientRating

	return entry
}
