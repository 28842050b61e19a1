package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"example.com/foodbridge/services/donation/internal/models"
	"example.com/foodbridge/services/donation/internal/service"
	"example.com/foodbridge/services/donation/internal/tracing"
)

// DonationHandler handles donation lifecycle HTTP requests
type DonationHandler struct {
	donationService *service.DonationService
	tracer          tracing.Tracer
}

// NewDonationHandler creates a new donation handler
func NewDonationHandler(donationService *service.DonationService, tracer tracing.Tracer) *DonationHandler {
	return &DonationHandler{
		donationService: donationService,
		tracer:          tracer,
	}
}

// PublishDonationRequest represents an incoming donation payload
type PublishDonationRequest struct {
	DonorID          string   `json:"donorId"`
	FoodName         string   `json:"foodName"`
	Category         string   `json:"category"`
	Quantity         string   `json:"quantity"`
	Location         string   `json:"location"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	DonorPhoneNumber string   `json:"donorPhoneNumber"`
	DonorEmail       string   `json:"donorEmail"`
}

// UpdateStatusRequest carries the requested lifecycle target status
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// SubmitRatingRequest carries one role's rating for a donation
type SubmitRatingRequest struct {
	Rating int    `json:"rating"`
	Role   string `json:"role"`
}

// HandlePublishDonation creates a new donation
func (h *DonationHandler) HandlePublishDonation(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-publish-donation")
	defer h.tracer.EndTransaction(txn)

	var req PublishDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "VALIDATION_ERROR"})
		return
	}

	h.tracer.AddAttribute(txn, "donor_id", req.DonorID)
	h.tracer.AddAttribute(txn, "food_name", req.FoodName)

	donation, err := h.donationService.PublishDonation(c.Request.Context(), service.PublishDonationInput{
		DonorID:          req.DonorID,
		FoodName:         req.FoodName,
		Category:         req.Category,
		Quantity:         req.Quantity,
		Location:         req.Location,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		DonorPhoneNumber: req.DonorPhoneNumber,
		DonorEmail:       req.DonorEmail,
	})
	if err != nil {
		h.tracer.RecordError(txn, err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, donation)
}

// HandleListAvailable returns all donations open for claiming
func (h *DonationHandler) HandleListAvailable(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-list-available")
	defer h.tracer.EndTransaction(txn)

	donations, err := h.donationService.ListAvailable(c.Request.Context())
	if err != nil {
		h.tracer.RecordError(txn, err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, donations)
}

// HandleDonorHistory returns every donation authored by a donor
func (h *DonationHandler) HandleDonorHistory(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-donor-history")
	defer h.tracer.EndTransaction(txn)

	donorID := c.Param("donorId")
	h.tracer.AddAttribute(txn, "donor_id", donorID)

	donations, err := h.donationService.DonorHistory(c.Request.Context(), donorID)
	if err != nil {
		h.tracer.RecordError(txn, err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, donations)
}

// HandleCompleteDonation marks a claimed donation as picked up
func (h *DonationHandler) HandleCompleteDonation(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-complete-donation")
	defer h.tracer.EndTransaction(txn)

	donationID, err := uuid.Parse(c.Param("donationId"))
	if err != nil {
		writeError(c, service.ErrDonationNotFound)
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "VALIDATION_ERROR"})
		return
	}

	if err := h.donationService.CompleteDonation(c.Request.Context(), donationID, req.Status); err != nil {
		h.tracer.RecordError(txn, err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Donation marked as completed."})
}

// HandleSubmitRating records one role's rating for a completed donation
func (h *DonationHandler) HandleSubmitRating(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-submit-rating")
	defer h.tracer.EndTransaction(txn)

	donationID, err := uuid.Parse(c.Param("donationId"))
	if err != nil {
		writeError(c, service.ErrDonationNotFound)
		return
	}

	var req SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "VALIDATION_ERROR"})
		return
	}

	err = h.donationService.SubmitRating(c.Request.Context(), donationID, models.RaterRole(req.Role), req.Rating)
	if err != nil {
		h.tracer.RecordError(txn, err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rating submitted successfully."})
}

// HandleSearchDonations finds available donations matching a query string
func (h *DonationHandler) HandleSearchDonations(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-search-donations")
	defer h.tracer.EndTransaction(txn)

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "query parameter 'q' is required", Code: "VALIDATION_ERROR"})
		return
	}

	documents, err := h.donationService.SearchDonations(c.Request.Context(), query)
	if err != nil {
		h.tracer.RecordError(txn, err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, documents)
}

// RegisterRoutes registers the handler's routes
func (h *DonationHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/donations", h.HandlePublishDonation)
	router.GET("/api/donations", h.HandleListAvailable)
	router.GET("/api/donations/search", h.HandleSearchDonations)
	router.GET("/api/donations/donor/:donorId", h.HandleDonorHistory)
	router.PATCH("/api/donations/status/:donationId", h.HandleCompleteDonation)
	router.PATCH("/api/ratings/:donationId", h.HandleSubmitRating)
}
