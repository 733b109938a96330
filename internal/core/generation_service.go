package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pixelforge-backend-go/internal/db"
	"pixelforge-backend-go/internal/models"
	"pixelforge-backend-go/internal/provider"
)

// GenerationConfig carries the entitlement policy knobs for the gateway.
type GenerationConfig struct {
	FreeQuota            int64
	CreditsPerGeneration int64
	ProviderTimeout      time.Duration
}

// generationService orchestrates one generation request:
// check entitlement, call the provider, then settle (debit the consumed
// entitlement and record usage). Entitlement is charged only after confirmed
// value delivery: a provider failure leaves every counter untouched.
type generationService struct {
	accounts    db.AccountRepository
	generations db.GenerationRepository
	ledger      LedgerService
	registry    *provider.Registry
	cfg         GenerationConfig
	logger      *zap.Logger
}

// NewGenerationService creates a new GenerationService instance.
func NewGenerationService(
	accounts db.AccountRepository,
	generations db.GenerationRepository,
	ledger LedgerService,
	registry *provider.Registry,
	cfg GenerationConfig,
	logger *zap.Logger,
) GenerationService {
	return &generationService{
		accounts:    accounts,
		generations: generations,
		ledger:      ledger,
		registry:    registry,
		cfg:         cfg,
		logger:      logger,
	}
}

// Generate runs the request through entitlement, provider call and
// settlement. The rate check happened in middleware before this is reached.
func (s *generationService) Generate(ctx context.Context, accountID string, req models.GenerateRequest) (*GenerationResult, error) {
	if accountID == "" {
		return nil, ErrUnauthenticated
	}
	if req.Mode == "" {
		req.Mode = provider.ModeTxt2Img
	}
	if req.Mode != provider.ModeTxt2Img && req.Mode != provider.ModeImg2Img {
		return nil, fmt.Errorf("%w: unsupported mode %q", ErrInvalidRequest, req.Mode)
	}
	if req.Mode == provider.ModeImg2Img && req.SourceImage == "" {
		return nil, fmt.Errorf("%w: img2img requires a source image", ErrInvalidRequest)
	}

	prov, err := s.registry.Get(req.Provider)
	if err != nil {
		return nil, err
	}

	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrAccountNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to load account '%s': %w", accountID, err)
	}

	ent := ResolveEntitlement(acct, s.cfg.FreeQuota, s.cfg.CreditsPerGeneration)
	if !ent.CanGenerate {
		return nil, ErrInsufficientEntitlement
	}

	// The provider call runs detached from the request's cancellation: if the
	// caller disconnects mid-flight, the call is still awaited so the debit
	// decision matches what the provider actually delivered. The provider
	// timeout bounds the wait.
	provCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ProviderTimeout)
	defer cancel()

	started := time.Now()
	result, err := prov.Generate(provCtx, provider.Request{
		Mode:        req.Mode,
		Prompt:      req.Prompt,
		Size:        req.Size,
		Quality:     req.Quality,
		Style:       req.Style,
		SourceImage: req.SourceImage,
	})
	if err != nil {
		// Refund by omission: nothing was debited, nothing to roll back.
		s.logger.Warn("Provider call failed",
			zap.String("provider", prov.Name()),
			zap.String("account_id", accountID),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %s", ErrProviderFailure, prov.Name())
	}

	return s.settle(context.WithoutCancel(ctx), acct, ent, prov.Name(), req.Mode, result)
}

// settle consumes exactly one unit of entitlement for a delivered result and
// records the usage. It runs on a cancellation-detached context: once the
// provider has delivered, the debit must land even if the caller is gone.
func (s *generationService) settle(ctx context.Context, acct *models.Account, ent Entitlement, providerName, mode string, result *provider.Result) (*GenerationResult, error) {
	res := &GenerationResult{
		Images:           result.Images,
		Provider:         providerName,
		Model:            result.Model,
		Basis:            ent.Basis,
		RemainingBalance: acct.Balance,
		RemainingFree:    ent.RemainingFree,
	}

	var debited int64
	switch ent.Basis {
	case models.BasisFreeQuota:
		newUsed, err := s.accounts.IncrementFreeUsed(ctx, acct.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to consume free generation for account '%s': %w", acct.ID, err)
		}
		remaining := s.cfg.FreeQuota - newUsed
		if remaining < 0 {
			remaining = 0
		}
		res.RemainingFree = remaining

	case models.BasisPaidCredits:
		newBalance, err := s.ledger.Adjust(ctx, acct.ID, -s.cfg.CreditsPerGeneration, models.ReasonGenerationDebit)
		if err != nil {
			if errors.Is(err, db.ErrInsufficientBalance) {
				// A concurrent debit won the race between the entitlement
				// check and settlement.
				return nil, ErrInsufficientEntitlement
			}
			return nil, err
		}
		debited = s.cfg.CreditsPerGeneration
		res.RemainingBalance = newBalance

	case models.BasisSubscription:
		// Covered by the subscription; no per-call debit.
	}

	rec := &models.GenerationRecord{
		AccountID: acct.ID,
		Provider:  providerName,
		Mode:      mode,
		Basis:     ent.Basis,
		Credits:   debited,
	}
	if err := s.generations.Create(ctx, rec); err != nil {
		// The artifact is delivered and the debit settled; a lost usage record
		// is an accounting gap, not a request failure.
		s.logger.Error("Failed to record generation",
			zap.String("account_id", acct.ID), zap.Error(err))
	}

	s.logger.Info("Generation settled",
		zap.String("account_id", acct.ID),
		zap.String("provider", providerName),
		zap.String("basis", string(ent.Basis)),
		zap.Int64("credits_debited", debited),
		zap.Int64("remaining_balance", res.RemainingBalance),
	)
	return res, nil
}
