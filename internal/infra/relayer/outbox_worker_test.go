package relayer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	listingDomain "github.com/davicafu/listingsearch/internal/listing/domain"
	sharedDomain "github.com/davicafu/listingsearch/shared/domain"
	sharedEvents "github.com/davicafu/listingsearch/shared/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/listingsearch/tests/mocks"
)

func newWorker(repo *mocks.MockOutboxRepository, publisher *mocks.MockPublisher) *Worker {
	w := NewOutboxWorker(repo, publisher, listingDomain.NewEventRegistry(), time.Second, 10, zap.NewNop())
	w.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return w
}

func TestOutboxWorker_ProcessBatch_Success(t *testing.T) {
	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)

	eventID := uuid.New()
	testEvent := sharedDomain.OutboxEvent{
		ID:          eventID,
		AggregateID: "17",
		EventType:   listingDomain.ListingUpdated,
		Payload:     json.RawMessage(`{"id":17,"developer":"Acme","city":"Madrid","status":"ACTIVE"}`),
	}

	var published sharedEvents.IntegrationEvent
	repo.On("FetchPendingOutbox", mock.Anything, 10).Return([]sharedDomain.OutboxEvent{testEvent}, nil).Once()
	publisher.On("Publish", mock.Anything, mock.AnythingOfType("events.IntegrationEvent")).
		Run(func(args mock.Arguments) { published = args.Get(1).(sharedEvents.IntegrationEvent) }).
		Return(nil).Once()
	repo.On("MarkOutboxProcessed", mock.Anything, eventID).Return(nil).Once()

	newWorker(repo, publisher).ProcessBatch(context.Background())

	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)

	assert.Equal(t, listingDomain.ListingUpdated, published.Type)
	assert.Equal(t, "17", published.PartitionKey())
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), published.Timestamp)

	var ref sharedEvents.ListingRef
	require.NoError(t, json.Unmarshal(published.Data, &ref))
	assert.Equal(t, int64(17), ref.ID)
}

func TestOutboxWorker_ProcessBatch_PublisherFails(t *testing.T) {
	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)

	testEvent := sharedDomain.OutboxEvent{
		ID:        uuid.New(),
		EventType: listingDomain.ListingDeleted,
		Payload:   sharedEvents.ListingDeleted{ID: 3},
	}

	repo.On("FetchPendingOutbox", mock.Anything, 10).Return([]sharedDomain.OutboxEvent{testEvent}, nil).Once()
	publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("kafka is down")).Once()

	newWorker(repo, publisher).ProcessBatch(context.Background())

	publisher.AssertExpectations(t)
	repo.AssertNotCalled(t, "MarkOutboxProcessed", mock.Anything, mock.Anything)
}

func TestOutboxWorker_ProcessBatch_UnknownEventType(t *testing.T) {
	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)

	testEvent := sharedDomain.OutboxEvent{ID: uuid.New(), EventType: "listing.archived", Payload: json.RawMessage(`{}`)}
	repo.On("FetchPendingOutbox", mock.Anything, 10).Return([]sharedDomain.OutboxEvent{testEvent}, nil).Once()

	newWorker(repo, publisher).ProcessBatch(context.Background())

	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "MarkOutboxProcessed", mock.Anything, mock.Anything)
}

func TestOutboxWorker_ProcessBatch_InvalidPayload(t *testing.T) {
	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)

	testEvent := sharedDomain.OutboxEvent{ID: uuid.New(), EventType: listingDomain.ListingDeleted, Payload: json.RawMessage(`{"id":"abc"}`)}
	repo.On("FetchPendingOutbox", mock.Anything, 10).Return([]sharedDomain.OutboxEvent{testEvent}, nil).Once()

	newWorker(repo, publisher).ProcessBatch(context.Background())

	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestOutboxWorker_ProcessBatch_FetchFails(t *testing.T) {
	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)

	repo.On("FetchPendingOutbox", mock.Anything, 10).Return([]sharedDomain.OutboxEvent(nil), errors.New("db down")).Once()

	newWorker(repo, publisher).ProcessBatch(context.Background())

	repo.AssertExpectations(t)
	publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestOutboxWorker_Start_StopsOnCancel(t *testing.T) {
	repo := new(mocks.MockOutboxRepository)
	publisher := new(mocks.MockPublisher)
	repo.On("FetchPendingOutbox", mock.Anything, 10).Return([]sharedDomain.OutboxEvent{}, nil).Maybe()

	w := NewOutboxWorker(repo, publisher, listingDomain.NewEventRegistry(), 5*time.Millisecond, 10, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
