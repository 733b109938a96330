package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pixelforge-backend-go/internal/core"
	"pixelforge-backend-go/internal/middleware"
	"pixelforge-backend-go/internal/ratelimit"
)

// SetupRoutes configures all application routes. Global middleware (logging,
// recovery, CORS) is applied to the router before this is called, in main.
// The authenticator and rate limiter arrive fully constructed: whether they
// are the Firebase/redis or demo/memory variants was decided at startup.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	authn middleware.Authenticator,
	limiter *ratelimit.Limiter,
	accountService core.AccountService,
	ledgerService core.LedgerService,
	generationService core.GenerationService,
	billingService core.BillingService,
) {
	accountHandler := NewAccountHandler(accountService, ledgerService)
	generationHandler := NewGenerationHandler(generationService)
	billingHandler := NewBillingHandler(billingService)

	apiV1 := router.Group("/api/v1")
	{
		usersGroup := apiV1.Group("/users")
		{
			// Called after client-side Firebase login/signup to ensure the
			// backend account exists.
			usersGroup.POST("/initialize", authn.Required(), accountHandler.InitializeAccount)

			// The UI polls this for the header bar; anonymous callers get a
			// zero snapshot rather than a 401.
			usersGroup.GET("/me", authn.Optional(), accountHandler.GetSnapshot)

			usersGroup.GET("/me/ledger", authn.Required(), accountHandler.GetLedgerHistory)
		}

		// The rate limiter keys on the authenticated user, so it runs after
		// the authenticator.
		generationsGroup := apiV1.Group("/generations", authn.Required(), middleware.RateLimit(limiter))
		{
			generationsGroup.POST("", generationHandler.Generate)
		}

		billingGroup := apiV1.Group("/billing")
		{
			billingGroup.GET("/packs", billingHandler.ListPacks)
			billingGroup.POST("/topup", authn.Required(), billingHandler.ConfirmTopUp)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "pixelforge backend is healthy."})
	})

	logger.Info("API routes configured successfully under /api/v1 and /health.")
}
