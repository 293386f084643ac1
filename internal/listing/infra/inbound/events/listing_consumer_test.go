package events

import (
	"context"
	"encoding/json"
	"testing"

	listingDomain "github.com/davicafu/listingsearch/internal/listing/domain"
	sharedEvents "github.com/davicafu/listingsearch/shared/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/davicafu/listingsearch/tests/mocks"
)

func encode(t *testing.T, eventType string, data interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	payload, err := json.Marshal(sharedEvents.IntegrationEvent{Type: eventType, Data: raw})
	require.NoError(t, err)
	return payload
}

func TestListingConsumer_InvalidatesCache(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name      string
		eventType string
		data      interface{}
	}{
		{"updated", listingDomain.ListingUpdated, listingDomain.Listing{ID: 5, Developer: "Acme"}},
		{"deleted", listingDomain.ListingDeleted, sharedEvents.ListingDeleted{ID: 5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cache := mocks.NewDummyCache()
			key := listingDomain.ListingCacheKeyByID(5)
			require.NoError(t, cache.Set(ctx, key, listingDomain.Listing{ID: 5}, 60))

			NewListingConsumer(cache, zap.NewNop()).HandleMessage(ctx, "5", encode(t, tc.eventType, tc.data))

			assert.False(t, cache.Has(key))
		})
	}
}

func TestListingConsumer_IgnoresOtherMessages(t *testing.T) {
	ctx := context.Background()
	cache := mocks.NewDummyCache()
	key := listingDomain.ListingCacheKeyByID(9)
	require.NoError(t, cache.Set(ctx, key, listingDomain.Listing{ID: 9}, 60))

	consumer := NewListingConsumer(cache, zap.NewNop())
	consumer.HandleMessage(ctx, "9", encode(t, listingDomain.ListingCreated, listingDomain.Listing{ID: 9}))
	consumer.HandleMessage(ctx, "9", encode(t, "listing.archived", sharedEvents.ListingRef{ID: 9}))
	consumer.HandleMessage(ctx, "9", []byte("not json"))
	consumer.HandleMessage(ctx, "9", encode(t, listingDomain.ListingDeleted, "bad data"))

	assert.True(t, cache.Has(key))
}

func TestListingConsumer_NilCache(t *testing.T) {
	consumer := NewListingConsumer(nil, zap.NewNop())
	assert.NotPanics(t, func() {
		consumer.HandleMessage(context.Background(), "1", encode(t, listingDomain.ListingDeleted, sharedEvents.ListingDeleted{ID: 1}))
	})
}
