package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"pixelforge-backend-go/internal/core"
	"pixelforge-backend-go/internal/db"
	"pixelforge-backend-go/internal/models"
	"pixelforge-backend-go/internal/provider"
)

// GenerationHandler handles image-generation API endpoints.
type GenerationHandler struct {
	generationService core.GenerationService
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(gs core.GenerationService) *GenerationHandler {
	return &GenerationHandler{generationService: gs}
}

// mapGenerationErrorToStatus maps errors from core.GenerationService to HTTP
// status codes. Provider internals never reach the client; they were already
// logged where the failure happened.
func mapGenerationErrorToStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
	case errors.Is(err, core.ErrInsufficientEntitlement):
		c.JSON(http.StatusPaymentRequired, ErrorResponse{Error: "Insufficient credits", Details: "Purchase credits to continue generating."})
	case errors.Is(err, db.ErrInsufficientBalance):
		c.JSON(http.StatusPaymentRequired, ErrorResponse{Error: "Insufficient credits", Details: "Purchase credits to continue generating."})
	case errors.Is(err, core.ErrProviderFailure):
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "Image provider error", Details: "The provider could not complete the request. No credits were charged."})
	case errors.Is(err, provider.ErrUnknownProvider), errors.Is(err, core.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Details: err.Error()})
	case errors.Is(err, core.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Account not found", Details: "Call /users/initialize after signing in."})
	default:
		log.Printf("Internal Server Error in GenerationHandler: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
	}
}

// Generate handles POST /api/v1/generations.
func (h *GenerationHandler) Generate(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}

	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	result, err := h.generationService.Generate(c.Request.Context(), userID, req)
	if err != nil {
		mapGenerationErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, GenerationResponse{
		Success:          true,
		Images:           result.Images,
		Provider:         result.Provider,
		Model:            result.Model,
		Basis:            result.Basis,
		RemainingBalance: result.RemainingBalance,
		RemainingFree:    result.RemainingFree,
	})
}
