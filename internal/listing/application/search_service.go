package application

import (
	"context"
	"strings"
	"time"

	"github.com/davicafu/listingsearch/internal/listing/application/search"
	listingDomain "github.com/davicafu/listingsearch/internal/listing/domain"
	sharedQuery "github.com/davicafu/listingsearch/shared/platform/query"
	"go.uber.org/zap"
)

// Searcher es el despachador de estrategias (search.Selector).
type Searcher interface {
	ExecuteSearch(ctx context.Context, strategy listingDomain.StrategyType, criteria listingDomain.SearchCriteria, req sharedQuery.PageRequest) (*listingDomain.ListingPage, error)
	ExecuteAutoSearch(ctx context.Context, criteria listingDomain.SearchCriteria, req sharedQuery.PageRequest) (*listingDomain.ListingPage, error)
}

type SearchService struct {
	searcher  Searcher
	analytics listingDomain.SearchAnalyticsRepository
	log       *zap.Logger
}

// NewSearchService crea el servicio; analytics puede ser nil.
func NewSearchService(searcher Searcher, analytics listingDomain.SearchAnalyticsRepository, log *zap.Logger) *SearchService {
	return &SearchService{
		searcher:  searcher,
		analytics: analytics,
		log:       log,
	}
}

// Search ejecuta la estrategia indicada por nombre. Un nombre vacío o AUTO
// delega la elección en los campos informados.
func (s *SearchService) Search(ctx context.Context, strategy string, criteria listingDomain.SearchCriteria, req sharedQuery.PageRequest) (*listingDomain.ListingPage, error) {
	start := time.Now()

	var (
		page     *listingDomain.ListingPage
		chosen   listingDomain.StrategyType
		err      error
		autoMode = isAuto(strategy)
	)

	if autoMode {
		chosen = search.Classify(criteria)
		page, err = s.searcher.ExecuteAutoSearch(ctx, criteria, req)
	} else {
		chosen, err = listingDomain.ParseStrategyType(strategy)
		if err != nil {
			return nil, err
		}
		page, err = s.searcher.ExecuteSearch(ctx, chosen, criteria, req)
	}

	elapsed := time.Since(start)
	if err != nil {
		s.log.Error("Listing search failed",
			zap.String("strategy", string(chosen)),
			zap.Bool("auto", autoMode),
			zap.Error(err))
		return nil, err
	}

	s.log.Info("Listing search executed",
		zap.String("strategy", string(chosen)),
		zap.Bool("auto", autoMode),
		zap.Any("criteria", criteria.Fields()),
		zap.Int("page", req.Page),
		zap.Int("size", req.Size),
		zap.Int64("total", page.TotalElements),
		zap.Duration("elapsed", elapsed))

	s.record(listingDomain.SearchRecord{
		Strategy:      chosen,
		Auto:          autoMode,
		Criteria:      criteria.Fields(),
		Page:          req.Page,
		Size:          req.Size,
		Sort:          sortStrings(req.Sort),
		TotalElements: page.TotalElements,
		Returned:      len(page.Content),
		Duration:      elapsed,
		ExecutedAt:    start.UTC(),
	})

	return page, nil
}

// record envía la búsqueda a analítica sin bloquear la respuesta.
func (s *SearchService) record(rec listingDomain.SearchRecord) {
	if s.analytics == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := s.analytics.LogSearch(ctx, rec); err != nil {
			s.log.Warn("Search analytics failed", zap.Error(err))
		}
	}()
}

func isAuto(strategy string) bool {
	s := strings.TrimSpace(strategy)
	return s == "" || strings.EqualFold(s, listingDomain.StrategyAuto)
}

func sortStrings(sorts []sharedQuery.Sort) []string {
	out := make([]string, 0, len(sorts))
	for _, s := range sorts {
		out = append(out, s.String())
	}
	return out
}
