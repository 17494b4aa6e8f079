package lead

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/leadvault/leadvault/application/port/inbound"
	"github.com/leadvault/leadvault/domain"
	"github.com/leadvault/leadvault/infrastructure/service/logger"
	"github.com/leadvault/leadvault/pkg/apperror"
)

func createInput() inbound.LeadInput {
	return inbound.LeadInput{
		FullName:     "Jane Sharma",
		Phone:        "9876543210",
		City:         string(domain.CityMohali),
		PropertyType: string(domain.PropertyApartment),
		BHK:          "2",
		Purpose:      string(domain.PurposeBuy),
		Timeline:     "0-3m",
		Source:       string(domain.SourceWebsite),
		Tags:         []string{"hot"},
	}
}

func TestCreate_RecordsCreatedSentinel(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBuyerRepository)
	uc := NewUseCase(repo, logger.NewNopLogger())

	inserted := storedBuyer()

	var capturedChanges domain.ChangeSet
	repo.On("Insert", ctx, mock.AnythingOfType("domain.BuyerFields"), ownerActor.ID, mock.AnythingOfType("domain.ChangeSet")).
		Run(func(args mock.Arguments) {
			capturedChanges = args.Get(3).(domain.ChangeSet)
		}).
		Return(inserted, nil)
	repo.On("ListRecentAudit", ctx, inserted.ID, 5).Return([]domain.AuditEvent{}, nil)

	detail, err := uc.Create(ctx, ownerActor, createInput())

	require.NoError(t, err)
	assert.Equal(t, inserted, detail.Buyer)
	require.Len(t, capturedChanges, 1)
	change, ok := capturedChanges[domain.CreatedSentinel]
	require.True(t, ok, "expected created sentinel entry")
	assert.Nil(t, change.Old)
	fields := change.New.(domain.BuyerFields)
	assert.Equal(t, "Jane Sharma", fields.FullName)
	assert.Equal(t, domain.TimelineZeroToThreeM, fields.Timeline)
	assert.Equal(t, domain.BHKTwo, fields.BHK)
}

func TestCreate_StatusDefaultsToNew(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBuyerRepository)
	uc := NewUseCase(repo, logger.NewNopLogger())

	var capturedFields domain.BuyerFields
	repo.On("Insert", ctx, mock.AnythingOfType("domain.BuyerFields"), ownerActor.ID, mock.AnythingOfType("domain.ChangeSet")).
		Run(func(args mock.Arguments) {
			capturedFields = args.Get(1).(domain.BuyerFields)
		}).
		Return(storedBuyer(), nil)
	repo.On("ListRecentAudit", ctx, mock.Anything, 5).Return([]domain.AuditEvent{}, nil)

	in := createInput()
	in.Status = ""

	_, err := uc.Create(ctx, ownerActor, in)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, capturedFields.Status)
}

func TestCreate_RequiresFullName(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBuyerRepository)
	uc := NewUseCase(repo, logger.NewNopLogger())

	in := createInput()
	in.FullName = ""

	_, err := uc.Create(ctx, ownerActor, in)

	assert.True(t, apperror.IsKind(err, apperror.KindInvalidInput), "expected InvalidInput, got %v", err)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_UnknownEnumRejected(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBuyerRepository)
	uc := NewUseCase(repo, logger.NewNopLogger())

	in := createInput()
	in.City = "Ludhiana"

	_, err := uc.Create(ctx, ownerActor, in)

	assert.True(t, apperror.IsKind(err, apperror.KindInvalidInput), "expected InvalidInput, got %v", err)
	repo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_NilTagsStoredAsEmptyList(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBuyerRepository)
	uc := NewUseCase(repo, logger.NewNopLogger())

	var capturedFields domain.BuyerFields
	repo.On("Insert", ctx, mock.AnythingOfType("domain.BuyerFields"), ownerActor.ID, mock.AnythingOfType("domain.ChangeSet")).
		Run(func(args mock.Arguments) {
			capturedFields = args.Get(1).(domain.BuyerFields)
		}).
		Return(storedBuyer(), nil)
	repo.On("ListRecentAudit", ctx, mock.Anything, 5).Return([]domain.AuditEvent{}, nil)

	in := createInput()
	in.Tags = nil

	_, err := uc.Create(ctx, ownerActor, in)

	require.NoError(t, err)
	assert.NotNil(t, capturedFields.Tags)
	assert.Empty(t, capturedFields.Tags)
}
