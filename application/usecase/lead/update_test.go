package lead

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/leadvault/leadvault/application/port/inbound"
	"github.com/leadvault/leadvault/application/port/outbound"
	"github.com/leadvault/leadvault/domain"
	"github.com/leadvault/leadvault/infrastructure/service/logger"
	"github.com/leadvault/leadvault/pkg/apperror"
)

type MockBuyerRepository struct {
	mock.Mock
}

func (m *MockBuyerRepository) FindByID(ctx context.Context, id int64) (*domain.Buyer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Buyer), args.Error(1)
}

func (m *MockBuyerRepository) Insert(ctx context.Context, fields domain.BuyerFields, ownerID int64, changes domain.ChangeSet) (*domain.Buyer, error) {
	args := m.Called(ctx, fields, ownerID, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Buyer), args.Error(1)
}

func (m *MockBuyerRepository) ConditionalUpdate(ctx context.Context, id int64, expectedToken string, fields domain.BuyerFields, actorID int64, changes domain.ChangeSet) (*domain.Buyer, error) {
	args := m.Called(ctx, id, expectedToken, fields, actorID, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Buyer), args.Error(1)
}

func (m *MockBuyerRepository) SetStatus(ctx context.Context, id int64, status domain.Status, actorID int64, changes domain.ChangeSet) (*domain.Buyer, error) {
	args := m.Called(ctx, id, status, actorID, changes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Buyer), args.Error(1)
}

func (m *MockBuyerRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBuyerRepository) ListRecentAudit(ctx context.Context, buyerID int64, limit int) ([]domain.AuditEvent, error) {
	args := m.Called(ctx, buyerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AuditEvent), args.Error(1)
}

var (
	ownerActor = inbound.Actor{ID: 7, Role: domain.RoleAgent}
	adminActor = inbound.Actor{ID: 1, Role: domain.RoleAdmin}
	otherActor = inbound.Actor{ID: 99, Role: domain.RoleAgent}
)

func storedBuyer() *domain.Buyer {
	budgetMin := int64(2500000)
	return &domain.Buyer{
		ID: 42,
		BuyerFields: domain.BuyerFields{
			FullName:     "Jane Sharma",
			Email:        "jane@example.com",
			Phone:        "9876543210",
			City:         domain.CityMohali,
			PropertyType: domain.PropertyApartment,
			BHK:          domain.BHKTwo,
			Purpose:      domain.PurposeBuy,
			BudgetMin:    &budgetMin,
			Timeline:     domain.TimelineZeroToThreeM,
			Source:       domain.SourceWebsite,
			Status:       domain.StatusNew,
			Notes:        "call back",
			Tags:         []string{"hot"},
		},
		OwnerID:   ownerActor.ID,
		CreatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.UTC),
	}
}

func updateRequestFor(buyer *domain.Buyer) inbound.UpdateLeadRequest {
	return inbound.UpdateLeadRequest{
		LeadInput: inbound.LeadInput{
			FullName:     buyer.FullName,
			Email:        buyer.Email,
			Phone:        buyer.Phone,
			City:         string(buyer.City),
			PropertyType: string(buyer.PropertyType),
			BHK:          string(buyer.BHK),
			Purpose:      string(buyer.Purpose),
			BudgetMin:    buyer.BudgetMin,
			BudgetMax:    buyer.BudgetMax,
			Timeline:     string(buyer.Timeline),
			Source:       string(buyer.Source),
			Status:       string(buyer.Status),
			Notes:        buyer.Notes,
			Tags:         append([]string{}, buyer.Tags...),
		},
		UpdatedAt: buyer.VersionToken(),
	}
}

func TestUpdate_Success(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBuyerRepository)
	uc := NewUseCase(repo, logger.NewNopLogger())

	existing := storedBuyer()
	req := updateRequestFor(existing)
	req.City = string(domain.CityChandigarh)

	updated := storedBuyer()
	updated.City = domain.CityChandigarh
	updated.UpdatedAt = existing.UpdatedAt.Add(time.Second)

	expectedChanges := domain.ChangeSet{
		"city": domain.FieldChange{Old: string(domain.CityMohali), New: string(domain.CityChandigarh)},
	}

	repo.On("FindByID", ctx, existing.ID).Return(existing, nil)
	repo.On("ConditionalUpdate", ctx, existing.ID, existing.VersionToken(), mock.AnythingOfType("domain.BuyerFields"), ownerActor.ID, expectedChanges).Return(updated, nil)
	repo.On("ListRecentAudit", ctx, existing.ID, 5).Return([]domain.AuditEvent{
		{BuyerID: existing.ID, ActorID: ownerActor.ID, Changes: expectedChanges},
	}, nil)

	detail, err := uc.Update(ctx, ownerActor, existing.ID, req)

	require.NoError(t, err)
	assert.Equal(t, domain.CityChandigarh, detail.Buyer.City)
	require.Len(t, detail.History, 1)
	assert.Equal(t, expectedChanges, detail.History[0].Changes)
	repo.AssertExpectations(t)
}

func TestUpdate_StaleTokenRejectedWithConflict(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBuyerRepository)
	uc := NewUseCase(repo, logger.NewNopLogger())

	existing := storedBuyer()
	req := updateRequestFor(existing)
	req.City = string(domain.CityChandigarh)
	// The caller observed the record before another writer advanced it.
	req.UpdatedAt = domain.FormatVersionToken(existing.UpdatedAt.Add(-time.Minute))

	repo.On("FindByID", ctx, existing.ID).Return(existing, nil)

	_, err := uc.Update(ctx, ownerActor, existing.ID, req)

	assert.True(t, apperror.IsKind(err, apperror.KindConflict), "expected Conflict, got %v", err)
	repo.AssertNotCalled(t, "ConditionalUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_StaleTokenRejectedEvenWhenNoop(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBuyerRepository)
	uc := NewUseCase(repo, logger.NewNopLogger())

	existing := storedBuyer()
	req := updateRequestFor(existing) // identical fields, empty diff
	req.UpdatedAt = domain.FormatVersionToken(existing.UpdatedAt.Add(-time.Minute))

	repo.On("FindByID", ctx, existing.ID).Return(existing, nil)

	_, err := uc.Update(ctx, ownerActor, existing.ID, req)

	assert.True(t, apperror.IsKind(err, apperror.KindConflict), "version gate applies regardless of diff, got %v", err)
}

func TestUpdate_ForbiddenPrecedesConcurrencyCheck(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBuyerRepository)
	uc := NewUseCase(repo, logger.NewNopLogger())

	existing := storedBuyer()
	req := updateRequestFor(existing)
	// A stale token must not leak Conflict to an unauthorized caller.
	req.UpdatedAt = domain.FormatVersionToken(existing.UpdatedAt.Add(-time.Minute))

	repo.On("FindByID", ctx, existing.ID).Return(existing, nil)

	_, err := uc.Update(ctx, otherActor, existing.ID, req)

	assert.True(t, apperror.IsKind(err, apperror.KindForbidden), "expected Forbidden, got %v", err)
}

func TestUpdate_AdminMayModifyOthersLead(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBuyerRepository)
	uc := NewUseCase(repo, logger.NewNopLogger())

	existing := storedBuyer()
	req := updateRequestFor(existing)
	req.Notes = "reassigned"

	updated := storedBuyer()
	updated.Notes = "reassigned"

	repo.On("FindByID", ctx, existing.ID).Return(existing, nil)
	repo.On("ConditionalUpdate", ctx, existing.ID, existing.VersionToken(), mock.AnythingOfType("domain.BuyerFields"), adminActor.ID, mock.AnythingOfType("domain.ChangeSet")).Return(updated, nil)
	repo.On("ListRecentAudit", ctx, existing.ID, 5).Return([]domain.AuditEvent{}, nil)

	_, err := uc.Update(ctx, adminActor, existing.ID, req)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdate_NoopSkipsWriteAndAudit(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBuyerRepository)
	uc := NewUseCase(repo, logger.NewNopLogger())

	existing := storedBuyer()
	req := updateRequestFor(existing) // byte-for-byte identical proposal

	repo.On("FindByID", ctx, existing.ID).Return(existing, nil)
	repo.On("ListRecentAudit", ctx, existing.ID, 5).Return([]domain.AuditEvent{}, nil)

	detail, err := uc.Update(ctx, ownerActor, existing.ID, req)

	require.NoError(t, err)
	assert.Equal(t, existing, detail.Buyer)
	repo.AssertNotCalled(t, "ConditionalUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_DisplayFormEnumIsNotAChange(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBuyerRepository)
	uc := NewUseCase(repo, logger.NewNopLogger())

	existing := storedBuyer()
	req := updateRequestFor(existing)
	// Display forms normalize to the stored canonical values.
	req.Timeline = "0-3m"
	req.BHK = "2"

	repo.On("FindByID", ctx, existing.ID).Return(existing, nil)
	repo.On("ListRecentAudit", ctx, existing.ID, 5).Return([]domain.AuditEvent{}, nil)

	_, err := uc.Update(ctx, ownerActor, existing.ID, req)

	require.NoError(t, err)
	repo.AssertNotCalled(t, "ConditionalUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_UnknownTimelineIsInvalidInput(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBuyerRepository)
	uc := NewUseCase(repo, logger.NewNopLogger())

	existing := storedBuyer()
	req := updateRequestFor(existing)
	req.Timeline = "someday"

	repo.On("FindByID", ctx, existing.ID).Return(existing, nil)

	_, err := uc.Update(ctx, ownerActor, existing.ID, req)

	assert.True(t, apperror.IsKind(err, apperror.KindInvalidInput), "expected InvalidInput, got %v", err)
	repo.AssertNotCalled(t, "ConditionalUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdate_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBuyerRepository)
	uc := NewUseCase(repo, logger.NewNopLogger())

	repo.On("FindByID", ctx, int64(404)).Return(nil, outbound.ErrBuyerNotFound)

	_, err := uc.Update(ctx, ownerActor, 404, inbound.UpdateLeadRequest{})

	assert.True(t, apperror.IsKind(err, apperror.KindNotFound), "expected NotFound, got %v", err)
}

func TestUpdate_RaceLostAtStoreIsConflict(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBuyerRepository)
	uc := NewUseCase(repo, logger.NewNopLogger())

	existing := storedBuyer()
	req := updateRequestFor(existing)
	req.Notes = "updated"

	// The in-memory token check passed but another writer won the
	// conditional update.
	repo.On("FindByID", ctx, existing.ID).Return(existing, nil)
	repo.On("ConditionalUpdate", ctx, existing.ID, existing.VersionToken(), mock.AnythingOfType("domain.BuyerFields"), ownerActor.ID, mock.AnythingOfType("domain.ChangeSet")).Return(nil, outbound.ErrVersionMismatch)

	_, err := uc.Update(ctx, ownerActor, existing.ID, req)

	assert.True(t, apperror.IsKind(err, apperror.KindConflict), "expected Conflict, got %v", err)
}

func TestUpdate_StoreFailureIsGenericInternal(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBuyerRepository)
	uc := NewUseCase(repo, logger.NewNopLogger())

	repo.On("FindByID", ctx, int64(42)).Return(nil, errors.New("connection reset"))

	_, err := uc.Update(ctx, ownerActor, 42, inbound.UpdateLeadRequest{})

	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInternal))
	assert.NotContains(t, err.Error(), "connection reset")
}
