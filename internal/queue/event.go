// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// VisitCompletedEvent is published when a visit transitions from scheduled
// to completed. It carries enough detail for downstream consumers to log or
// notify without querying the primary database.
type VisitCompletedEvent struct {
	VisitID      uint64 `json:"visit_id"`
	UserID       uint64 `json:"user_id"`
	ProviderID   uint64 `json:"provider_id"`
	ProviderName string `json:"provider_name"`
	VisitDate    string `json:"visit_date"`
	VisitReason  string `json:"visit_reason"`
	CompletedAt  string `json:"completed_at"`
}
