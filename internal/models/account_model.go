package models

import "time"

// SubscriptionStatus describes whether an account's paid subscription is live.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
)

// Account represents a user's credit state in the system.
// Invariants: Balance never goes below zero; FreeGenerationsUsed only ever grows.
type Account struct {
	ID                  string             `json:"id" firestore:"-"` // Firebase Auth UID, used as the document ID
	Email               string             `json:"email" firestore:"email"`
	Balance             int64              `json:"balance" firestore:"balance"`
	FreeGenerationsUsed int64              `json:"freeGenerationsUsed" firestore:"freeGenerationsUsed"`
	HasPaid             bool               `json:"hasPaid" firestore:"hasPaid"`
	SubscriptionStatus  SubscriptionStatus `json:"subscriptionStatus" firestore:"subscriptionStatus"`
	CreatedAt           time.Time          `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt           time.Time          `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}
