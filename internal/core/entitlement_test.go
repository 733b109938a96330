package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pixelforge-backend-go/internal/models"
)

func TestResolveEntitlementFreshFreeAccount(t *testing.T) {
	acct := &models.Account{ID: "u1"}

	ent := ResolveEntitlement(acct, 1, 1)
	assert.True(t, ent.CanGenerate)
	assert.Equal(t, int64(1), ent.RemainingFree)
	assert.Equal(t, models.BasisFreeQuota, ent.Basis)
}

func TestResolveEntitlementFreeQuotaConsumed(t *testing.T) {
	acct := &models.Account{ID: "u1", FreeGenerationsUsed: 1}

	ent := ResolveEntitlement(acct, 1, 1)
	assert.False(t, ent.CanGenerate)
	assert.Equal(t, int64(0), ent.RemainingFree)
}

func TestResolveEntitlementPaidCredits(t *testing.T) {
	acct := &models.Account{ID: "u1", Balance: 5, FreeGenerationsUsed: 1}

	ent := ResolveEntitlement(acct, 1, 1)
	assert.True(t, ent.CanGenerate)
	assert.Equal(t, models.BasisPaidCredits, ent.Basis)
}

func TestResolveEntitlementFreeQuotaBeforePaidCredits(t *testing.T) {
	// Free quota is consumed before purchased credits are touched.
	acct := &models.Account{ID: "u1", Balance: 5}

	ent := ResolveEntitlement(acct, 1, 1)
	assert.True(t, ent.CanGenerate)
	assert.Equal(t, models.BasisFreeQuota, ent.Basis)
}

func TestResolveEntitlementSubscriberWithoutCredits(t *testing.T) {
	acct := &models.Account{ID: "u1", HasPaid: true, FreeGenerationsUsed: 1}

	ent := ResolveEntitlement(acct, 1, 1)
	assert.True(t, ent.CanGenerate)
	assert.Equal(t, models.BasisSubscription, ent.Basis)
}

func TestResolveEntitlementBalanceBelowGenerationCost(t *testing.T) {
	// Entitled on the balance>0 policy alone, but the debit would overdraw;
	// resolution denies up front instead of failing after the provider call.
	acct := &models.Account{ID: "u1", Balance: 1, FreeGenerationsUsed: 1}

	ent := ResolveEntitlement(acct, 1, 2)
	assert.False(t, ent.CanGenerate)
}

func TestResolveEntitlementRemainingFreeNeverNegative(t *testing.T) {
	acct := &models.Account{ID: "u1", FreeGenerationsUsed: 7}

	ent := ResolveEntitlement(acct, 1, 1)
	assert.Equal(t, int64(0), ent.RemainingFree)
}

func TestResolveEntitlementIsPure(t *testing.T) {
	acct := &models.Account{ID: "u1", Balance: 3, FreeGenerationsUsed: 0}
	before := *acct

	ResolveEntitlement(acct, 1, 1)
	assert.Equal(t, before, *acct)
}
