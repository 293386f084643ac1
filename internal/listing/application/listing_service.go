package application

import (
	"context"
	"errors"
	"strconv"
	"time"

	listingDomain "github.com/davicafu/listingsearch/internal/listing/domain"
	sharedDomain "github.com/davicafu/listingsearch/shared/domain"
	sharedEvents "github.com/davicafu/listingsearch/shared/events"
	sharedCache "github.com/davicafu/listingsearch/shared/platform/cache"
	sharedUtils "github.com/davicafu/listingsearch/shared/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const aggregateListing = "listing"

// ListingService define los casos de uso de escritura y lectura unitaria de Listing.
type ListingService struct {
	repo     listingDomain.ListingRepository
	cache    sharedCache.Cache
	cacheTTL int
	log      *zap.Logger
}

// NewListingService crea el servicio. cache puede ser nil; cacheTTL va en segundos.
func NewListingService(repo listingDomain.ListingRepository, cache sharedCache.Cache, cacheTTL int, log *zap.Logger) *ListingService {
	return &ListingService{
		repo:     repo,
		cache:    cache,
		cacheTTL: cacheTTL,
		log:      log,
	}
}

func newOutboxEvent(aggregateID, eventType string, payload interface{}) sharedDomain.OutboxEvent {
	return sharedDomain.OutboxEvent{
		ID:            uuid.New(),
		AggregateType: aggregateListing,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	}
}

// CreateListing valida, persiste junto con su evento de outbox y cachea el resultado.
func (s *ListingService) CreateListing(ctx context.Context, l *listingDomain.Listing) (*listingDomain.Listing, error) {
	l.ID = 0
	l.Normalize()
	if err := l.Validate(); err != nil {
		return nil, err
	}

	// El repositorio completa AggregateID al asignar el ID.
	evt := newOutboxEvent("", listingDomain.ListingCreated, l)
	if err := s.repo.Create(ctx, l, evt); err != nil {
		s.log.Error("Failed to create listing", zap.Error(err))
		return nil, err
	}

	sharedCache.AsyncCacheSet(s.cache, listingDomain.ListingCacheKeyByID(l.ID), l, s.cacheTTL, s.log)
	return l, nil
}

// UpdateListing reemplaza el registro completo.
func (s *ListingService) UpdateListing(ctx context.Context, l *listingDomain.Listing) error {
	l.Normalize()
	if err := l.Validate(); err != nil {
		return err
	}

	evt := newOutboxEvent(strconv.FormatInt(l.ID, 10), listingDomain.ListingUpdated, l)
	if err := s.repo.Update(ctx, l, evt); err != nil {
		if !errors.Is(err, listingDomain.ErrListingNotFound) {
			s.log.Error("Failed to update listing", zap.Int64("listing_id", l.ID), zap.Error(err))
		}
		return err
	}

	sharedCache.AsyncCacheSet(s.cache, listingDomain.ListingCacheKeyByID(l.ID), l, s.cacheTTL, s.log)
	return nil
}

func (s *ListingService) DeleteListing(ctx context.Context, id int64) error {
	evt := newOutboxEvent(strconv.FormatInt(id, 10), listingDomain.ListingDeleted, sharedEvents.ListingDeleted{ID: id})
	if err := s.repo.DeleteByID(ctx, id, evt); err != nil {
		return err
	}

	sharedCache.AsyncCacheDelete(s.cache, listingDomain.ListingCacheKeyByID(id), s.log)
	return nil
}

// GetListing usa cache-aside; los fallos de almacenamiento se reintentan, un not-found no.
func (s *ListingService) GetListing(ctx context.Context, id int64) (*listingDomain.Listing, error) {
	key := listingDomain.ListingCacheKeyByID(id)

	if cached, hit := sharedCache.Lookup[listingDomain.Listing](ctx, s.cache, key); hit {
		return cached, nil
	}

	var listing *listingDomain.Listing
	err := sharedUtils.Retry(ctx, 3, 100*time.Millisecond, func() error {
		var errRetry error
		listing, errRetry = s.repo.GetByID(ctx, id)
		if errors.Is(errRetry, listingDomain.ErrListingNotFound) {
			return sharedUtils.Permanent(errRetry)
		}
		return errRetry
	})
	if errors.Is(err, listingDomain.ErrListingNotFound) {
		s.log.Warn("Listing not found", zap.Int64("listing_id", id))
		return nil, err
	}
	if err != nil {
		s.log.Error("Failed to fetch listing", zap.Int64("listing_id", id), zap.Error(err))
		return nil, err
	}

	sharedCache.AsyncCacheSet(s.cache, key, listing, s.cacheTTL, s.log)
	return listing, nil
}
