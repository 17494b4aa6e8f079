package lead

import (
	"context"
	"errors"

	"github.com/leadvault/leadvault/application/port/inbound"
	"github.com/leadvault/leadvault/application/port/outbound"
	"github.com/leadvault/leadvault/pkg/apperror"
)

// Get returns the lead and its recent audit events. The buyer payload carries
// the current version token for a later conditional update.
func (uc *UseCase) Get(ctx context.Context, id int64) (*inbound.LeadDetail, error) {
	buyer, err := uc.buyers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, outbound.ErrBuyerNotFound) {
			return nil, apperror.NewNotFound("lead not found")
		}
		uc.logger.Error(ctx, "failed to load lead", err, map[string]interface{}{
			"operation": "get",
			"lead_id":   id,
		})
		return nil, apperror.NewInternal()
	}

	history, err := uc.recentHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	return &inbound.LeadDetail{Buyer: buyer, History: history}, nil
}
