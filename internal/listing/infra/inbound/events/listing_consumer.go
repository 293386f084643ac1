package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	listingDomain "github.com/davicafu/listingsearch/internal/listing/domain"
	sharedEvents "github.com/davicafu/listingsearch/shared/events"
	sharedCache "github.com/davicafu/listingsearch/shared/platform/cache"
	sharedUtils "github.com/davicafu/listingsearch/shared/utils"
)

// ListingConsumer mantiene la caché de lectura coherente con los eventos del outbox.
// Otra réplica puede haber escrito el listing, así que se invalida en vez de sobrescribir.
type ListingConsumer struct {
	cache sharedCache.Cache
	log   *zap.Logger
}

func NewListingConsumer(cache sharedCache.Cache, logger *zap.Logger) *ListingConsumer {
	return &ListingConsumer{
		cache: cache,
		log:   logger,
	}
}

func (c *ListingConsumer) HandleMessage(ctx context.Context, key string, payload []byte) {
	var base sharedEvents.IntegrationEvent
	if err := json.Unmarshal(payload, &base); err != nil {
		c.log.Warn("Failed to unmarshal integration event", zap.String("key", key), zap.Error(err))
		return
	}

	switch base.Type {
	case listingDomain.ListingCreated:
		c.log.Debug("Listing created event received", zap.String("key", base.Key))

	case listingDomain.ListingUpdated:
		sharedUtils.UnmarshalAndHandle[sharedEvents.ListingRef](c.log, base.Data, func(evt sharedEvents.ListingRef) {
			c.invalidate(ctx, evt.ID, "Listing cache invalidated after update")
		})

	case listingDomain.ListingDeleted:
		sharedUtils.UnmarshalAndHandle[sharedEvents.ListingDeleted](c.log, base.Data, func(evt sharedEvents.ListingDeleted) {
			c.invalidate(ctx, evt.ID, "Listing cache invalidated after delete")
		})

	default:
		c.log.Warn("Unknown event type", zap.String("type", base.Type))
	}
}

func (c *ListingConsumer) invalidate(ctx context.Context, id int64, successMsg string) {
	if c.cache == nil {
		return
	}
	ctxCache, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	if err := c.cache.Delete(ctxCache, listingDomain.ListingCacheKeyByID(id)); err != nil {
		c.log.Warn("Failed to process listing event",
			zap.String("listing_id", strconv.FormatInt(id, 10)),
			zap.Error(err),
		)
		return
	}
	c.log.Info(successMsg, zap.String("listing_id", strconv.FormatInt(id, 10)))
}
