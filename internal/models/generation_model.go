package models

import "time"

// GenerationBasis records which entitlement paid for a generation.
type GenerationBasis string

const (
	BasisFreeQuota    GenerationBasis = "free_quota"
	BasisPaidCredits  GenerationBasis = "paid_credits"
	BasisSubscription GenerationBasis = "subscription"
)

// GenerationRecord is a usage record written after a provider call succeeds
// and the matching debit settles. It backs the per-month usage counter shown
// in the account snapshot.
type GenerationRecord struct {
	ID        string          `json:"id" firestore:"-"`
	AccountID string          `json:"accountId" firestore:"accountId"`
	Provider  string          `json:"provider" firestore:"provider"`
	Mode      string          `json:"mode" firestore:"mode"`
	Basis     GenerationBasis `json:"basis" firestore:"basis"`
	Credits   int64           `json:"credits" firestore:"credits"` // credits debited, 0 for free-quota generations
	CreatedAt time.Time       `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}
