package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"pixelforge-backend-go/internal/core"
	"pixelforge-backend-go/internal/db"
	"pixelforge-backend-go/internal/models"
)

// BillingHandler handles billing-related API endpoints.
type BillingHandler struct {
	billingService core.BillingService
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(bs core.BillingService) *BillingHandler {
	return &BillingHandler{billingService: bs}
}

// mapBillingErrorToStatus maps errors from core.BillingService to HTTP status
// codes and ErrorResponse bodies.
func mapBillingErrorToStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
	case errors.Is(err, core.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid credit amount", Details: err.Error()})
	case errors.Is(err, core.ErrPackNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Credit pack not found", Details: err.Error()})
	case errors.Is(err, core.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Account not found", Details: "Call /users/initialize after signing in."})
	case errors.Is(err, db.ErrInsufficientBalance):
		c.JSON(http.StatusPaymentRequired, ErrorResponse{Error: "Insufficient balance"})
	default:
		log.Printf("Internal Server Error in BillingHandler: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "An unexpected internal server error occurred."})
	}
}

// ListPacks handles GET /api/v1/billing/packs. Public: the pack catalog is
// what an anonymous visitor sees on the pricing page.
func (h *BillingHandler) ListPacks(c *gin.Context) {
	packs, err := h.billingService.ListPacks(c.Request.Context())
	if err != nil {
		mapBillingErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, PackListResponse{Packs: packs})
}

// ConfirmTopUp handles POST /api/v1/billing/topup. The hosted checkout (or
// demo simulation) completed before this is called; the handler applies the
// confirmed credits.
func (h *BillingHandler) ConfirmTopUp(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	result, err := h.billingService.ConfirmTopUp(c.Request.Context(), userID, req)
	if err != nil {
		mapBillingErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, TopUpResponse{
		Success:      true,
		CreditsAdded: result.CreditsAdded,
		NewBalance:   result.NewBalance,
	})
}
