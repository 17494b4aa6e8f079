package outbound

import (
	"context"
	"errors"

	"github.com/leadvault/leadvault/domain"
)

var (
	ErrBuyerNotFound = errors.New("buyer not found")

	// ErrVersionMismatch is returned when the conditional update's expected
	// version token no longer matches the stored one.
	ErrVersionMismatch = errors.New("buyer version mismatch")
)

// BuyerRepository is the durable record store contract. Every write that
// carries a change-set must persist the buyer row and its audit event as one
// atomic unit: if either fails, neither is observably applied.
type BuyerRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Buyer, error)

	// Insert creates a buyer owned by ownerID and records the creation
	// audit event in the same transaction.
	Insert(ctx context.Context, fields domain.BuyerFields, ownerID int64, changes domain.ChangeSet) (*domain.Buyer, error)

	// ConditionalUpdate applies fields only if the stored version token
	// still equals expectedToken, stamps a new token, and records the audit
	// event, all as a single atomic operation. Returns ErrVersionMismatch
	// when another writer got there first.
	ConditionalUpdate(ctx context.Context, id int64, expectedToken string, fields domain.BuyerFields, actorID int64, changes domain.ChangeSet) (*domain.Buyer, error)

	// SetStatus updates only the status field, with its audit event, in one
	// transaction.
	SetStatus(ctx context.Context, id int64, status domain.Status, actorID int64, changes domain.ChangeSet) (*domain.Buyer, error)

	// Delete removes the buyer's audit events and then the buyer itself in
	// one transaction, so an audit row never outlives its buyer.
	Delete(ctx context.Context, id int64) error

	// ListRecentAudit returns up to limit audit events for the buyer,
	// newest first, annotated with actor display attributes.
	ListRecentAudit(ctx context.Context, buyerID int64, limit int) ([]domain.AuditEvent, error)
}
