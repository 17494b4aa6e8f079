package inbound

import (
	"context"

	"github.com/leadvault/leadvault/domain"
)

// Actor identifies the authenticated caller of a use case.
type Actor struct {
	ID   int64
	Role domain.Role
}

// CanModify reports whether the actor may mutate a buyer owned by ownerID:
// the owner itself, or the privileged role.
func (a Actor) CanModify(ownerID int64) bool {
	return a.Role.Privileged() || a.ID == ownerID
}

// LeadInput carries client-proposed field values. Enumerations may arrive in
// display form ("0-3m", "2") and are normalized before comparison and write.
type LeadInput struct {
	FullName     string   `json:"fullName"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	City         string   `json:"city"`
	PropertyType string   `json:"propertyType"`
	BHK          string   `json:"bhk"`
	Purpose      string   `json:"purpose"`
	BudgetMin    *int64   `json:"budgetMin"`
	BudgetMax    *int64   `json:"budgetMax"`
	Timeline     string   `json:"timeline"`
	Source       string   `json:"source"`
	Status       string   `json:"status"`
	Notes        string   `json:"notes"`
	Tags         []string `json:"tags"`
}

// UpdateLeadRequest adds the version token the caller observed when it last
// fetched the lead.
type UpdateLeadRequest struct {
	LeadInput
	UpdatedAt string `json:"updatedAt"`
}

// LeadDetail is the common success payload: the buyer plus its most recent
// audit events, newest first.
type LeadDetail struct {
	Buyer   *domain.Buyer       `json:"buyer"`
	History []domain.AuditEvent `json:"history"`
}

type LeadUseCase interface {
	Create(ctx context.Context, actor Actor, in LeadInput) (*LeadDetail, error)
	Get(ctx context.Context, id int64) (*LeadDetail, error)
	Update(ctx context.Context, actor Actor, id int64, req UpdateLeadRequest) (*LeadDetail, error)
	SetStatus(ctx context.Context, actor Actor, id int64, status string) (*domain.Buyer, error)
	Delete(ctx context.Context, actor Actor, id int64) error
}
