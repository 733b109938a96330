package models

import "time"

// LedgerReason is the business reason for a balance mutation.
type LedgerReason string

const (
	ReasonPurchase        LedgerReason = "purchase"
	ReasonDemoTopUp       LedgerReason = "demo_topup"
	ReasonGenerationDebit LedgerReason = "generation_debit"
	ReasonSignupGrant     LedgerReason = "signup_grant"
)

// LedgerEntry is one immutable record of a balance mutation. The entries for
// an account sum to its current balance, which makes the running total
// reconstructable after the fact.
type LedgerEntry struct {
	ID        string       `json:"id" firestore:"-"`
	AccountID string       `json:"accountId" firestore:"accountId"`
	Delta     int64        `json:"delta" firestore:"delta"`
	Reason    LedgerReason `json:"reason" firestore:"reason"`
	Balance   int64        `json:"balance" firestore:"balance"` // balance after this entry was applied
	PackID    string       `json:"packId,omitempty" firestore:"packId,omitempty"`
	CreatedAt time.Time    `json:"createdAt" firestore:"createdAt,serverTimestamp"`
}
