package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/inbox-reconciler/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMessagingProducer struct {
	mock.Mock
}

func (m *MockMessagingProducer) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagingProducer) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestRunServiceImpl_RequestRun(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx := context.Background()
	teamID := uuid.New()
	transactionIDs := []uuid.UUID{uuid.New(), uuid.New()}

	t.Run("PublishesKeyedByTeam", func(t *testing.T) {
		mockProducer := new(MockMessagingProducer)
		service := NewRunService(logger, mockProducer)

		var published *shared.RunRequest
		mockProducer.On("Publish", ctx, teamID.String(), mock.AnythingOfType("*shared.RunRequest")).
			Run(func(args mock.Arguments) {
				published = args.Get(2).(*shared.RunRequest)
			}).
			Return(nil).Once()

		err := service.RequestRun(ctx, teamID, transactionIDs, "corr-1")

		assert.NoError(t, err)
		require.NotNil(t, published)
		assert.Equal(t, teamID, published.TeamID)
		assert.Equal(t, transactionIDs, published.TransactionIDs)
		assert.Equal(t, "corr-1", published.CorrelationID)
		assert.False(t, published.Timestamp.IsZero())

		mockProducer.AssertExpectations(t)
	})

	t.Run("PublishFailurePropagates", func(t *testing.T) {
		mockProducer := new(MockMessagingProducer)
		service := NewRunService(logger, mockProducer)

		publishErr := errors.New("broker unavailable")
		mockProducer.On("Publish", ctx, teamID.String(), mock.AnythingOfType("*shared.RunRequest")).Return(publishErr).Once()

		err := service.RequestRun(ctx, teamID, transactionIDs, "")

		assert.ErrorIs(t, err, publishErr)
		mockProducer.AssertExpectations(t)
	})
}
