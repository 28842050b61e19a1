package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"example.com/foodbridge/services/donation/internal/service"
	"example.com/foodbridge/services/donation/internal/tracing"
)

// OrderHandler handles claim and recipient-history HTTP requests
type OrderHandler struct {
	donationService *service.DonationService
	tracer          tracing.Tracer
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(donationService *service.DonationService, tracer tracing.Tracer) *OrderHandler {
	return &OrderHandler{
		donationService: donationService,
		tracer:          tracer,
	}
}

// ClaimDonationRequest represents a recipient's claim on a donation
type ClaimDonationRequest struct {
	RecipientID    string `json:"recipientId"`
	DonationID     string `json:"donationId"`
	RecipientEmail string `json:"recipientEmail"`
}

// HandleClaimDonation claims an available donation for a recipient
func (h *OrderHandler) HandleClaimDonation(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-claim-donation")
	defer h.tracer.EndTransaction(txn)

	var req ClaimDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "VALIDATION_ERROR"})
		return
	}

	donationID, err := uuid.Parse(req.DonationID)
	if err != nil {
		writeError(c, service.ErrDonationNotFound)
		return
	}

	h.tracer.AddAttribute(txn, "donation_id", req.DonationID)
	h.tracer.AddAttribute(txn, "recipient_id", req.RecipientID)

	order, err := h.donationService.ClaimDonation(c.Request.Context(), req.RecipientID, donationID, req.RecipientEmail)
	if err != nil {
		h.tracer.RecordError(txn, err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// HandleRecipientHistory returns the recipient's orders joined against
// their donations
func (h *OrderHandler) HandleRecipientHistory(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-recipient-history")
	defer h.tracer.EndTransaction(txn)

	recipientID := c.Param("recipientId")
	h.tracer.AddAttribute(txn, "recipient_id", recipientID)

	entries, err := h.donationService.RecipientHistory(c.Request.Context(), recipientID)
	if err != nil {
		h.tracer.RecordError(txn, err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}

// RegisterRoutes registers the handler's routes
func (h *OrderHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/orders", h.HandleClaimDonation)
	router.GET("/api/orders/recipient/:recipientId", h.HandleRecipientHistory)
}
