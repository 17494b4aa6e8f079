package lead

import (
	"context"

	"github.com/leadvault/leadvault/application/port/inbound"
	"github.com/leadvault/leadvault/domain"
	"github.com/leadvault/leadvault/pkg/apperror"
)

// Create inserts a new lead owned by the actor and records a single audit
// event whose change-set carries the created sentinel with the full initial
// field values.
func (uc *UseCase) Create(ctx context.Context, actor inbound.Actor, in inbound.LeadInput) (*inbound.LeadDetail, error) {
	if in.Status == "" {
		in.Status = string(domain.StatusNew)
	}

	fields, err := normalizeInput(in)
	if err != nil {
		return nil, err
	}
	if fields.FullName == "" {
		return nil, apperror.NewInvalidInput("fullName is required")
	}

	buyer, err := uc.buyers.Insert(ctx, fields, actor.ID, domain.CreatedChangeSet(fields))
	if err != nil {
		uc.logger.Error(ctx, "failed to create lead", err, map[string]interface{}{
			"operation": "insert",
			"owner_id":  actor.ID,
		})
		return nil, apperror.NewInternal()
	}

	history, err := uc.recentHistory(ctx, buyer.ID)
	if err != nil {
		return nil, err
	}
	return &inbound.LeadDetail{Buyer: buyer, History: history}, nil
}
