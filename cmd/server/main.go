package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"pixelforge-backend-go/internal/api"
	"pixelforge-backend-go/internal/config"
	"pixelforge-backend-go/internal/core"
	"pixelforge-backend-go/internal/db"
	"pixelforge-backend-go/internal/middleware"
	"pixelforge-backend-go/internal/provider"
	"pixelforge-backend-go/internal/ratelimit"
)

func main() {
	// --- 1. Initialize Logger (Zap) ---
	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Zap logger initialized successfully.")

	// --- 2. Load Application Configuration ---
	// .env is optional; the environment itself wins.
	if err := godotenv.Load(); err == nil {
		zapLogger.Info(".env file loaded.")
	}
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded successfully.",
		zap.Bool("demoMode", appConfig.DemoMode), zap.Bool("authRequired", appConfig.AuthRequired))

	// --- 3. Select the backend strategy ---
	// Demo mode swaps every external collaborator for a local stand-in behind
	// the same interfaces; no per-request flag checks exist downstream.
	var (
		accountRepo    db.AccountRepository
		ledgerRepo     db.LedgerRepository
		packRepo       db.PackRepository
		generationRepo db.GenerationRepository
		authn          middleware.Authenticator
		registry       *provider.Registry
	)

	if appConfig.DemoMode {
		store := db.NewMemoryStore()
		store.SeedDefaultPacks()
		accountRepo = store.Accounts()
		ledgerRepo = store.Ledger()
		packRepo = store.Packs()
		generationRepo = store.Generations()
		authn = middleware.NewDemoAuthenticator()
		registry = provider.NewRegistry(
			provider.NewDemoProvider("openai"),
			provider.NewDemoProvider("gemini"),
		)
		zapLogger.Info("Demo mode enabled: in-memory store, demo identity, placeholder providers.")
	} else {
		initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelInitCtx()
		if err := db.InitFirestore(initCtx, appConfig); err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firestore and Firebase Admin SDK", zap.Error(err))
		}
		zapLogger.Info("Firebase Admin SDK (Firestore, Auth) initialized successfully.")

		firestoreClient := db.GetFirestoreClient()
		firebaseAuthClient := db.GetFirebaseAuthClient()
		if firestoreClient == nil || firebaseAuthClient == nil {
			zapLogger.Fatal("CRITICAL_ERROR: Firestore or Firebase Auth client is nil after initialization.")
		}

		accountRepo = db.NewFirestoreAccountRepository(firestoreClient)
		ledgerRepo = db.NewFirestoreLedgerRepository(firestoreClient)
		packRepo = db.NewFirestorePackRepository(firestoreClient)
		generationRepo = db.NewFirestoreGenerationRepository(firestoreClient)

		if appConfig.AuthRequired {
			authn = middleware.NewFirebaseAuthenticator(firebaseAuthClient)
		} else {
			authn = middleware.NewDemoAuthenticator()
			zapLogger.Warn("AUTH_REQUIRED is disabled: all requests run under the demo identity.")
		}

		var providers []provider.ImageProvider
		if appConfig.OpenAIAPIKey != "" {
			providers = append(providers, provider.NewOpenAIProvider(appConfig.OpenAIAPIKey, appConfig.ProviderTimeout()))
		}
		if appConfig.GeminiAPIKey != "" {
			providers = append(providers, provider.NewGeminiProvider(appConfig.GeminiAPIKey, appConfig.ProviderTimeout()))
		}
		registry = provider.NewRegistry(providers...)
		zapLogger.Info("Image providers configured", zap.Strings("providers", registry.Names()))
	}

	// --- 4. Rate limiter bucket store ---
	var bucketStore ratelimit.BucketStore = ratelimit.NewMemoryStore()
	if appConfig.RedisAddr != "" {
		redisStore, err := ratelimit.NewRedisStore(ratelimit.NewRedisStoreConfig{
			Address:  appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		})
		if err != nil {
			zapLogger.Fatal("CRITICAL_ERROR: Failed to connect to Redis for rate limiting", zap.Error(err))
		}
		defer redisStore.Close()
		bucketStore = redisStore
		zapLogger.Info("Rate limiter using shared redis bucket store", zap.String("addr", appConfig.RedisAddr))
	}
	limiter := ratelimit.New(bucketStore, appConfig.RateLimitMaxRequests, appConfig.RateLimitWindow())

	// --- 5. Initialize Services ---
	ledgerService := core.NewLedgerService(accountRepo, ledgerRepo, zapLogger)
	accountService := core.NewAccountService(accountRepo, generationRepo, ledgerService, appConfig.SignupGrantCredits, zapLogger)
	generationService := core.NewGenerationService(accountRepo, generationRepo, ledgerService, registry, core.GenerationConfig{
		FreeQuota:            appConfig.FreeGenerationQuota,
		CreditsPerGeneration: appConfig.CreditsPerGeneration,
		ProviderTimeout:      appConfig.ProviderTimeout(),
	}, zapLogger)
	billingService := core.NewBillingService(packRepo, accountRepo, ledgerService, zapLogger)
	zapLogger.Info("Core services initialized successfully.")

	// --- 6. Setup Gin HTTP Engine ---
	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()

	// --- 7. Apply Global Middleware (Order is important) ---
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	if appConfig.ClientURL != "" {
		router.Use(middleware.CORSMiddleware(appConfig))
		zapLogger.Info("CORS Middleware enabled", zap.String("clientURL", appConfig.ClientURL))
	} else {
		zapLogger.Warn("CORS Middleware SKIPPED: CLIENT_URL is not configured.")
	}

	// --- 8. Setup API Routes ---
	api.SetupRoutes(router, zapLogger, authn, limiter,
		accountService, ledgerService, generationService, billingService)

	// --- 9. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 10. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("Server forced to shutdown due to error during graceful shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting gracefully.")
}
