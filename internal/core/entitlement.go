package core

import "pixelforge-backend-go/internal/models"

// Entitlement is the momentary right to perform one generation, derived from
// an account snapshot. Resolution is a pure function: every mutation
// (incrementing the free counter, debiting the balance) happens only after the
// gateway confirms a successful provider call.
type Entitlement struct {
	CanGenerate   bool
	RemainingFree int64
	Basis         models.GenerationBasis
}

// ResolveEntitlement derives the generate/deny decision from account state.
// The basis determines what a settling debit consumes: the free quota is used
// up before paid credits so that purchased credits are preserved, and paying
// subscribers with neither remain entitled without a per-call debit.
func ResolveEntitlement(acct *models.Account, freeQuota, creditsPerGeneration int64) Entitlement {
	remainingFree := freeQuota - acct.FreeGenerationsUsed
	if remainingFree < 0 {
		remainingFree = 0
	}

	ent := Entitlement{
		CanGenerate:   acct.HasPaid || acct.Balance > 0 || acct.FreeGenerationsUsed < freeQuota,
		RemainingFree: remainingFree,
	}

	switch {
	case remainingFree > 0:
		ent.Basis = models.BasisFreeQuota
	case acct.Balance >= creditsPerGeneration:
		ent.Basis = models.BasisPaidCredits
	case acct.HasPaid:
		ent.Basis = models.BasisSubscription
	default:
		// Balance > 0 but below the per-generation cost: entitled on paper,
		// but the debit would overdraw. Treat as not entitled up front rather
		// than failing after the provider call.
		if !acct.HasPaid && remainingFree == 0 {
			ent.CanGenerate = false
		}
	}

	return ent
}
