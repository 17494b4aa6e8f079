package lead

import (
	"github.com/leadvault/leadvault/application/port/inbound"
	"github.com/leadvault/leadvault/application/port/outbound"
	"github.com/leadvault/leadvault/domain"
	"github.com/leadvault/leadvault/infrastructure/service/logger"
	"github.com/leadvault/leadvault/pkg/apperror"
)

// recentHistoryLimit is how many audit events accompany a lead response.
const recentHistoryLimit = 5

// UseCase implements the lead mutation pipelines over the injected stores.
type UseCase struct {
	buyers outbound.BuyerRepository
	logger logger.Logger
}

func NewUseCase(buyers outbound.BuyerRepository, log logger.Logger) *UseCase {
	return &UseCase{
		buyers: buyers,
		logger: log,
	}
}

var _ inbound.LeadUseCase = (*UseCase)(nil)

// normalizeInput maps display-form enumerations to canonical stored values
// and copies the allow-listed fields into a typed snapshot. Unknown values
// are rejected, never coerced to a default.
func normalizeInput(in inbound.LeadInput) (domain.BuyerFields, error) {
	var fields domain.BuyerFields

	city, err := domain.ParseCity(in.City)
	if err != nil {
		return fields, apperror.NewInvalidInput(err.Error())
	}
	propertyType, err := domain.ParsePropertyType(in.PropertyType)
	if err != nil {
		return fields, apperror.NewInvalidInput(err.Error())
	}
	bhk, err := domain.ParseBHK(in.BHK)
	if err != nil {
		return fields, apperror.NewInvalidInput(err.Error())
	}
	purpose, err := domain.ParsePurpose(in.Purpose)
	if err != nil {
		return fields, apperror.NewInvalidInput(err.Error())
	}
	timeline, err := domain.ParseTimeline(in.Timeline)
	if err != nil {
		return fields, apperror.NewInvalidInput(err.Error())
	}
	source, err := domain.ParseSource(in.Source)
	if err != nil {
		return fields, apperror.NewInvalidInput(err.Error())
	}
	status, err := domain.ParseStatus(in.Status)
	if err != nil {
		return fields, apperror.NewInvalidInput(err.Error())
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	return domain.BuyerFields{
		FullName:     in.FullName,
		Email:        in.Email,
		Phone:        in.Phone,
		City:         city,
		PropertyType: propertyType,
		BHK:          bhk,
		Purpose:      purpose,
		BudgetMin:    in.BudgetMin,
		BudgetMax:    in.BudgetMax,
		Timeline:     timeline,
		Source:       source,
		Status:       status,
		Notes:        in.Notes,
		Tags:         tags,
	}, nil
}
