package models

import "time"

// AuditLog is one immutable entry in the SKU audit trail. Entries are
// appended by every successful mutating operation and never updated.
type AuditLog struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	SKUID     string    `json:"skuId"`
	FromState *SKUState `json:"fromState,omitempty"`
	ToState   *SKUState `json:"toState,omitempty"`
	Details   *string   `json:"details,omitempty"`
}
