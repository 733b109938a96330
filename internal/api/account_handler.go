package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"pixelforge-backend-go/internal/core"
)

// AccountHandler handles account-related API endpoints.
type AccountHandler struct {
	accountService core.AccountService
	ledgerService  core.LedgerService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(as core.AccountService, ls core.LedgerService) *AccountHandler {
	return &AccountHandler{accountService: as, ledgerService: ls}
}

// InitializeAccount handles POST /api/v1/users/initialize. Clients call it
// after a Firebase login/signup to ensure a backend account exists.
func (h *AccountHandler) InitializeAccount(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}
	email := c.GetString("userEmail")

	acct, created, err := h.accountService.GetOrCreate(c.Request.Context(), userID, email)
	if err != nil {
		log.Printf("InitializeAccount: GetOrCreate failed for userID %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to initialize account"})
		return
	}

	if created {
		c.JSON(http.StatusCreated, acct)
		return
	}
	c.JSON(http.StatusOK, acct)
}

// GetSnapshot handles GET /api/v1/users/me. The route uses optional
// authentication: anonymous callers receive a zero snapshot with
// authenticated=false instead of a 401.
func (h *AccountHandler) GetSnapshot(c *gin.Context) {
	userID := c.GetString("userID")
	email := c.GetString("userEmail")

	snapshot, err := h.accountService.Snapshot(c.Request.Context(), userID, email, userID != "")
	if err != nil {
		log.Printf("GetSnapshot: snapshot failed for userID %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve account snapshot"})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// GetLedgerHistory handles GET /api/v1/users/me/ledger.
func (h *AccountHandler) GetLedgerHistory(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: User ID not found in context"})
		return
	}

	entries, err := h.ledgerService.History(c.Request.Context(), userID, 50)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "Account not found"})
			return
		}
		log.Printf("GetLedgerHistory: failed for userID %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to retrieve ledger history"})
		return
	}
	c.JSON(http.StatusOK, LedgerHistoryResponse{Entries: entries})
}
