package lead

import (
	"context"
	"errors"

	"github.com/leadvault/leadvault/application/port/inbound"
	"github.com/leadvault/leadvault/application/port/outbound"
	"github.com/leadvault/leadvault/pkg/apperror"
)

// Delete removes a lead. Audit events are removed with it in one transaction,
// history rows first, so a history row never references a deleted lead.
func (uc *UseCase) Delete(ctx context.Context, actor inbound.Actor, id int64) error {
	existing, err := uc.buyers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, outbound.ErrBuyerNotFound) {
			return apperror.NewNotFound("lead not found")
		}
		uc.logger.Error(ctx, "failed to load lead", err, map[string]interface{}{
			"operation": "delete",
			"lead_id":   id,
		})
		return apperror.NewInternal()
	}

	if !actor.CanModify(existing.OwnerID) {
		return apperror.NewForbidden("you do not have access to this lead")
	}

	if err := uc.buyers.Delete(ctx, id); err != nil {
		if errors.Is(err, outbound.ErrBuyerNotFound) {
			return apperror.NewNotFound("lead not found")
		}
		uc.logger.Error(ctx, "failed to delete lead", err, map[string]interface{}{
			"operation": "delete",
			"lead_id":   id,
		})
		return apperror.NewInternal()
	}
	return nil
}
