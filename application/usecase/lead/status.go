package lead

import (
	"context"
	"errors"

	"github.com/leadvault/leadvault/application/port/inbound"
	"github.com/leadvault/leadvault/application/port/outbound"
	"github.com/leadvault/leadvault/domain"
	"github.com/leadvault/leadvault/pkg/apperror"
)

// SetStatus moves a lead through its pipeline stages. A status equal to the
// stored one is a no-op: no write, no audit event.
func (uc *UseCase) SetStatus(ctx context.Context, actor inbound.Actor, id int64, status string) (*domain.Buyer, error) {
	newStatus, err := domain.ParseStatus(status)
	if err != nil {
		return nil, apperror.NewInvalidInput(err.Error())
	}

	existing, err := uc.buyers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, outbound.ErrBuyerNotFound) {
			return nil, apperror.NewNotFound("lead not found")
		}
		uc.logger.Error(ctx, "failed to load lead", err, map[string]interface{}{
			"operation": "set_status",
			"lead_id":   id,
		})
		return nil, apperror.NewInternal()
	}

	if !actor.CanModify(existing.OwnerID) {
		return nil, apperror.NewForbidden("you do not have access to this lead")
	}

	if existing.Status == newStatus {
		return existing, nil
	}

	changes := domain.ChangeSet{
		"status": domain.FieldChange{Old: string(existing.Status), New: string(newStatus)},
	}
	updated, err := uc.buyers.SetStatus(ctx, id, newStatus, actor.ID, changes)
	if err != nil {
		if errors.Is(err, outbound.ErrBuyerNotFound) {
			return nil, apperror.NewNotFound("lead not found")
		}
		uc.logger.Error(ctx, "failed to set lead status", err, map[string]interface{}{
			"operation": "set_status",
			"lead_id":   id,
		})
		return nil, apperror.NewInternal()
	}
	return updated, nil
}
