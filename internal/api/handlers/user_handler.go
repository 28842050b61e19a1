package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"example.com/foodbridge/services/donation/internal/models"
	"example.com/foodbridge/services/donation/internal/service"
	"example.com/foodbridge/services/donation/internal/tracing"
)

// UserHandler handles user-role HTTP requests
type UserHandler struct {
	userService *service.UserService
	tracer      tracing.Tracer
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService, tracer tracing.Tracer) *UserHandler {
	return &UserHandler{
		userService: userService,
		tracer:      tracer,
	}
}

// SaveRoleRequest carries the role an identity subject picked at onboarding
type SaveRoleRequest struct {
	Sub  string `json:"sub"`
	Role string `json:"role"`
}

// HandleSaveRole records the role chosen for an identity subject
func (h *UserHandler) HandleSaveRole(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-save-role")
	defer h.tracer.EndTransaction(txn)

	var req SaveRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "VALIDATION_ERROR"})
		return
	}

	if err := h.userService.SaveRole(c.Request.Context(), req.Sub, models.RaterRole(req.Role)); err != nil {
		h.tracer.RecordError(txn, err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User role saved successfully."})
}

// HandleGetRole returns the role recorded for an identity subject
func (h *UserHandler) HandleGetRole(c *gin.Context) {
	txn := h.tracer.StartTransaction("api-get-role")
	defer h.tracer.EndTransaction(txn)

	sub := c.Param("sub")
	role, err := h.userService.GetRole(c.Request.Context(), sub)
	if err != nil {
		h.tracer.RecordError(txn, err)
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"role": role})
}

// RegisterRoutes registers the handler's routes
func (h *UserHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/users", h.HandleSaveRole)
	router.GET("/api/users/:sub", h.HandleGetRole)
}
