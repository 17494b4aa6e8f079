package domain

import "time"

// AuditEvent is the immutable record of one accepted mutation. It is written
// in the same transaction as the buyer write it describes and never updated.
type AuditEvent struct {
	ID        int64     `json:"id"`
	BuyerID   int64     `json:"buyerId"`
	ActorID   int64     `json:"actorId"`
	Changes   ChangeSet `json:"changes"`
	ChangedAt time.Time `json:"changedAt"`

	// Actor display attributes, populated when listing history.
	ActorName  string `json:"actorName,omitempty"`
	ActorEmail string `json:"actorEmail,omitempty"`
}
