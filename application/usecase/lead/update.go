package lead

import (
	"context"
	"errors"

	"github.com/leadvault/leadvault/application/port/inbound"
	"github.com/leadvault/leadvault/application/port/outbound"
	"github.com/leadvault/leadvault/domain"
	"github.com/leadvault/leadvault/pkg/apperror"
)

// Update applies a client-proposed mutation under optimistic concurrency:
// fetch, authorize, compare version tokens, normalize, diff, then write the
// buyer and its audit event atomically. An empty diff short-circuits with no
// write and no audit event.
func (uc *UseCase) Update(ctx context.Context, actor inbound.Actor, id int64, req inbound.UpdateLeadRequest) (*inbound.LeadDetail, error) {
	existing, err := uc.buyers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, outbound.ErrBuyerNotFound) {
			return nil, apperror.NewNotFound("lead not found")
		}
		uc.logger.Error(ctx, "failed to load lead", err, map[string]interface{}{
			"operation": "update",
			"lead_id":   id,
		})
		return nil, apperror.NewInternal()
	}

	// Ownership is checked before the version token so an unauthorized
	// caller cannot probe for the current token.
	if !actor.CanModify(existing.OwnerID) {
		return nil, apperror.NewForbidden("you do not have access to this lead")
	}

	if req.UpdatedAt != existing.VersionToken() {
		return nil, apperror.NewConflict("record changed since last read, please refresh and retry")
	}

	proposed, err := normalizeInput(req.LeadInput)
	if err != nil {
		return nil, err
	}

	changes := domain.Diff(existing.BuyerFields, proposed)
	if len(changes) == 0 {
		history, err := uc.recentHistory(ctx, id)
		if err != nil {
			return nil, err
		}
		return &inbound.LeadDetail{Buyer: existing, History: history}, nil
	}

	updated, err := uc.buyers.ConditionalUpdate(ctx, id, req.UpdatedAt, proposed, actor.ID, changes)
	if err != nil {
		switch {
		case errors.Is(err, outbound.ErrVersionMismatch):
			return nil, apperror.NewConflict("record changed since last read, please refresh and retry")
		case errors.Is(err, outbound.ErrBuyerNotFound):
			return nil, apperror.NewNotFound("lead not found")
		}
		uc.logger.Error(ctx, "failed to update lead", err, map[string]interface{}{
			"operation": "conditional_update",
			"lead_id":   id,
		})
		return nil, apperror.NewInternal()
	}

	history, err := uc.recentHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	return &inbound.LeadDetail{Buyer: updated, History: history}, nil
}

func (uc *UseCase) recentHistory(ctx context.Context, id int64) ([]domain.AuditEvent, error) {
	history, err := uc.buyers.ListRecentAudit(ctx, id, recentHistoryLimit)
	if err != nil {
		uc.logger.Error(ctx, "failed to list lead history", err, map[string]interface{}{
			"operation": "list_recent_audit",
			"lead_id":   id,
		})
		return nil, apperror.NewInternal()
	}
	return history, nil
}
