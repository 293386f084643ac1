package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	sharedEvents "github.com/davicafu/listingsearch/shared/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (h *recordingHandler) HandleMessage(ctx context.Context, key string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.payloads = append(h.payloads, payload)
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.payloads)
}

func TestInMemoryEventBus_DeliversToAllSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := NewInMemoryEventBus("listing")
	first, second := &recordingHandler{}, &recordingHandler{}
	Consume(ctx, bus.Subscribe(4), first)
	Consume(ctx, bus.Subscribe(4), second)

	evt := sharedEvents.IntegrationEvent{Type: "listing.updated", Key: "7", Data: json.RawMessage(`{"id":7}`)}
	require.NoError(t, bus.Publish(ctx, evt))

	assert.Eventually(t, func() bool { return first.count() == 1 && second.count() == 1 }, time.Second, 5*time.Millisecond)

	var got sharedEvents.IntegrationEvent
	require.NoError(t, json.Unmarshal(first.payloads[0], &got))
	assert.Equal(t, "listing.updated", got.Type)
	assert.Equal(t, "7", got.Key)
}

func TestInMemoryEventBus_NoSubscribers(t *testing.T) {
	bus := NewInMemoryEventBus("listing")
	assert.NoError(t, bus.Publish(context.Background(), map[string]int{"id": 1}))
	assert.Equal(t, "listing", bus.Topic())
}

func TestKafkaMessage_UsesPartitionKey(t *testing.T) {
	msg, err := KafkaMessage(sharedEvents.IntegrationEvent{Type: "listing.created", Key: "42", Data: json.RawMessage(`{}`)})
	require.NoError(t, err)
	assert.Equal(t, []byte("42"), msg.Key)
	assert.JSONEq(t, `{"type":"listing.created","key":"42","timestamp":"0001-01-01T00:00:00Z","data":{}}`, string(msg.Value))

	msg, err = KafkaMessage(map[string]string{"a": "b"})
	require.NoError(t, err)
	assert.Nil(t, msg.Key)
}
