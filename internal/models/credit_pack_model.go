package models

// CreditPack is a purchasable bundle of credits. Packs are read-only to this
// service and immutable once a completed purchase references them.
type CreditPack struct {
	ID           string `json:"id" firestore:"-"`
	Name         string `json:"name" firestore:"name"`
	CreditAmount int64  `json:"creditAmount" firestore:"creditAmount"`
	Price        int64  `json:"price" firestore:"price"` // minor currency units (cents)
	Active       bool   `json:"active" firestore:"active"`
}
